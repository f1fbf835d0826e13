package conversation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/teranga-stays/service-rental/internal/platform/domain"
)

const MaxMessageLength = 2000

var ErrNotParticipant = domain.NewForbiddenError("you are not a participant in this conversation")

// Conversation is a 1:1 thread between a guest and a host about one listing.
type Conversation struct {
	id            uuid.UUID
	listingID     uuid.UUID
	guestID       uuid.UUID
	hostID        uuid.UUID
	lastMessageAt *time.Time
	createdAt     time.Time
}

// NewConversation creates a thread for the (listing, guest, host) triple.
func NewConversation(listingID, guestID, hostID uuid.UUID) (*Conversation, error) {
	if listingID == uuid.Nil || guestID == uuid.Nil || hostID == uuid.Nil {
		return nil, domain.NewValidationError("listing, guest and host are required")
	}
	if guestID == hostID {
		return nil, domain.NewValidationError("guest and host must differ")
	}
	return &Conversation{
		id:        uuid.New(),
		listingID: listingID,
		guestID:   guestID,
		hostID:    hostID,
		createdAt: time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Conversation from persistence data.
func Reconstruct(id, listingID, guestID, hostID uuid.UUID, lastMessageAt *time.Time, createdAt time.Time) *Conversation {
	return &Conversation{
		id:            id,
		listingID:     listingID,
		guestID:       guestID,
		hostID:        hostID,
		lastMessageAt: lastMessageAt,
		createdAt:     createdAt,
	}
}

func (c *Conversation) ID() uuid.UUID             { return c.id }
func (c *Conversation) ListingID() uuid.UUID      { return c.listingID }
func (c *Conversation) GuestID() uuid.UUID        { return c.guestID }
func (c *Conversation) HostID() uuid.UUID         { return c.hostID }
func (c *Conversation) LastMessageAt() *time.Time { return c.lastMessageAt }
func (c *Conversation) CreatedAt() time.Time      { return c.createdAt }

// HasParticipant reports whether userID is the guest or the host.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return userID == c.guestID || userID == c.hostID
}

// Message is one entry in a conversation.
type Message struct {
	id             uuid.UUID
	conversationID uuid.UUID
	senderID       uuid.UUID
	body           string
	createdAt      time.Time
}

// NewMessage validates and creates a message from a participant.
func (c *Conversation) NewMessage(senderID uuid.UUID, body string) (*Message, error) {
	if !c.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}
	body = strings.TrimSpace(body)
	n := utf8.RuneCountInString(body)
	if n == 0 || n > MaxMessageLength {
		return nil, domain.NewValidationError(fmt.Sprintf("message must be between 1 and %d characters", MaxMessageLength))
	}
	now := time.Now().UTC()
	c.lastMessageAt = &now
	return &Message{
		id:             uuid.New(),
		conversationID: c.id,
		senderID:       senderID,
		body:           body,
		createdAt:      now,
	}, nil
}

// ReconstructMessage rebuilds a Message from persistence data.
func ReconstructMessage(id, conversationID, senderID uuid.UUID, body string, createdAt time.Time) *Message {
	return &Message{
		id:             id,
		conversationID: conversationID,
		senderID:       senderID,
		body:           body,
		createdAt:      createdAt,
	}
}

func (m *Message) ID() uuid.UUID             { return m.id }
func (m *Message) ConversationID() uuid.UUID { return m.conversationID }
func (m *Message) SenderID() uuid.UUID       { return m.senderID }
func (m *Message) Body() string              { return m.body }
func (m *Message) CreatedAt() time.Time      { return m.createdAt }
