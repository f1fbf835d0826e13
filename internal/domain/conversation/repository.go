package conversation

import (
	"context"

	"github.com/google/uuid"
)

// ConversationRepository defines persistence operations for conversations and messages.
type ConversationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Conversation, error)

	// FindByParticipants returns the thread for the exact triple, or nil if none exists.
	FindByParticipants(ctx context.Context, listingID, guestID, hostID uuid.UUID) (*Conversation, error)

	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*Conversation, error)
	Save(ctx context.Context, conversation *Conversation) error

	// AddMessage stores the message and bumps the conversation's last_message_at.
	AddMessage(ctx context.Context, conversation *Conversation, message *Message) error

	ListMessages(ctx context.Context, conversationID uuid.UUID, page, limit int) ([]*Message, int64, error)
}
