package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	conversationDomain "github.com/teranga-stays/service-rental/internal/domain/conversation"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

// ConversationModel is the GORM model for the conversations table. There is
// deliberately no unique index on the participant triple.
type ConversationModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ListingID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_conversations_triple"`
	GuestID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_conversations_triple;index"`
	HostID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_conversations_triple;index"`
	LastMessageAt *time.Time `gorm:""`
	CreatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ConversationModel) TableName() string { return "conversations" }

// MessageModel is the GORM model for the messages table.
type MessageModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null"`
	Body           string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (MessageModel) TableName() string { return "messages" }

// GormConversationRepository implements ConversationRepository using GORM.
type GormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a new GormConversationRepository.
func NewGormConversationRepository(db *gorm.DB) *GormConversationRepository {
	return &GormConversationRepository{db: db}
}

func (r *GormConversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*conversationDomain.Conversation, error) {
	var model ConversationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Conversation", id.String())
		}
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	return toDomainConversation(&model), nil
}

// FindByParticipants returns the oldest thread for the triple, or nil.
func (r *GormConversationRepository) FindByParticipants(ctx context.Context, listingID, guestID, hostID uuid.UUID) (*conversationDomain.Conversation, error) {
	var models []ConversationModel
	if err := r.db.WithContext(ctx).
		Where("listing_id = ? AND guest_id = ? AND host_id = ?", listingID, guestID, hostID).
		Order("created_at ASC").
		Limit(1).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find conversation by participants: %w", err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	return toDomainConversation(&models[0]), nil
}

// FindByUserID lists threads where the user is guest or host, most recent activity first.
func (r *GormConversationRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*conversationDomain.Conversation, error) {
	var models []ConversationModel
	if err := r.db.WithContext(ctx).
		Where("guest_id = ? OR host_id = ?", userID, userID).
		Order("COALESCE(last_message_at, created_at) DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	out := make([]*conversationDomain.Conversation, len(models))
	for i := range models {
		out[i] = toDomainConversation(&models[i])
	}
	return out, nil
}

func (r *GormConversationRepository) Save(ctx context.Context, c *conversationDomain.Conversation) error {
	model := ConversationModel{
		ID:            c.ID(),
		ListingID:     c.ListingID(),
		GuestID:       c.GuestID(),
		HostID:        c.HostID(),
		LastMessageAt: c.LastMessageAt(),
		CreatedAt:     c.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// AddMessage inserts the message and bumps last_message_at in one transaction.
func (r *GormConversationRepository) AddMessage(ctx context.Context, c *conversationDomain.Conversation, m *conversationDomain.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := MessageModel{
			ID:             m.ID(),
			ConversationID: m.ConversationID(),
			SenderID:       m.SenderID(),
			Body:           m.Body(),
			CreatedAt:      m.CreatedAt(),
		}
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
		if err := tx.Model(&ConversationModel{}).
			Where("id = ?", c.ID()).
			Update("last_message_at", m.CreatedAt()).Error; err != nil {
			return fmt.Errorf("failed to touch conversation: %w", err)
		}
		return nil
	})
}

// ListMessages returns a page of messages in chronological order.
func (r *GormConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]*conversationDomain.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&MessageModel{}).Where("conversation_id = ?", conversationID)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	var models []MessageModel
	if err := query.Session(&gorm.Session{}).
		Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	out := make([]*conversationDomain.Message, len(models))
	for i, m := range models {
		out[i] = conversationDomain.ReconstructMessage(m.ID, m.ConversationID, m.SenderID, m.Body, m.CreatedAt)
	}
	return out, total, nil
}

func toDomainConversation(m *ConversationModel) *conversationDomain.Conversation {
	return conversationDomain.Reconstruct(m.ID, m.ListingID, m.GuestID, m.HostID, m.LastMessageAt, m.CreatedAt)
}
