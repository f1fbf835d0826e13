package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	conversationDomain "github.com/teranga-stays/service-rental/internal/domain/conversation"
	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

// SendMessageRequest is the request DTO for posting a message.
type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// ConversationDTO is the API representation of a conversation.
type ConversationDTO struct {
	ID            uuid.UUID  `json:"id"`
	ListingID     uuid.UUID  `json:"listing_id"`
	GuestID       uuid.UUID  `json:"guest_id"`
	HostID        uuid.UUID  `json:"host_id"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// MessageDTO is the API representation of a message.
type MessageDTO struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConversationService implements guest/host messaging.
type ConversationService struct {
	repo   conversationDomain.ConversationRepository
	logger *zap.Logger
}

// NewConversationService creates a new ConversationService.
func NewConversationService(repo conversationDomain.ConversationRepository, logger *zap.Logger) *ConversationService {
	return &ConversationService{repo: repo, logger: logger}
}

// EnsureConversation returns the existing thread for the triple or creates
// one. The store has no unique constraint on the triple, so the lookup comes first.
func (s *ConversationService) EnsureConversation(ctx context.Context, listingID, guestID, hostID uuid.UUID) (*ConversationDTO, error) {
	existing, err := s.repo.FindByParticipants(ctx, listingID, guestID, hostID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return toConversationDTO(existing), nil
	}

	c, err := conversationDomain.NewConversation(listingID, guestID, hostID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	s.logger.Info("conversation created",
		zap.String("conversation_id", c.ID().String()),
		zap.String("listing_id", listingID.String()),
	)
	return toConversationDTO(c), nil
}

// ListConversations returns the user's threads.
func (s *ConversationService) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationDTO, error) {
	convs, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dtos := make([]ConversationDTO, len(convs))
	for i, c := range convs {
		dtos[i] = *toConversationDTO(c)
	}
	return dtos, nil
}

// ListMessages returns a page of a thread's messages to a participant.
func (s *ConversationService) ListMessages(ctx context.Context, userID, conversationID uuid.UUID, page, limit int) (*domain.PaginatedResult[MessageDTO], error) {
	c, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	msgs, total, err := s.repo.ListMessages(ctx, c.ID(), page, limit)
	if err != nil {
		return nil, err
	}
	dtos := make([]MessageDTO, len(msgs))
	for i, m := range msgs {
		dtos[i] = toMessageDTO(m)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// SendMessage posts a message from a participant.
func (s *ConversationService) SendMessage(ctx context.Context, userID, conversationID uuid.UUID, req SendMessageRequest) (*MessageDTO, error) {
	c, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	msg, err := c.NewMessage(userID, req.Body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AddMessage(ctx, c, msg); err != nil {
		return nil, err
	}
	dto := toMessageDTO(msg)
	return &dto, nil
}

// participantConversation hides threads from non-participants.
func (s *ConversationService) participantConversation(ctx context.Context, userID, conversationID uuid.UUID) (*conversationDomain.Conversation, error) {
	c, err := s.repo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !c.HasParticipant(userID) {
		return nil, conversationDomain.ErrNotParticipant
	}
	return c, nil
}

func toConversationDTO(c *conversationDomain.Conversation) *ConversationDTO {
	return &ConversationDTO{
		ID:            c.ID(),
		ListingID:     c.ListingID(),
		GuestID:       c.GuestID(),
		HostID:        c.HostID(),
		LastMessageAt: c.LastMessageAt(),
		CreatedAt:     c.CreatedAt(),
	}
}

func toMessageDTO(m *conversationDomain.Message) MessageDTO {
	return MessageDTO{
		ID:             m.ID(),
		ConversationID: m.ConversationID(),
		SenderID:       m.SenderID(),
		Body:           m.Body(),
		CreatedAt:      m.CreatedAt(),
	}
}
