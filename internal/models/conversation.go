package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message payload types
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// Conversation is one participant's mirror of a two-user conversation.
// Exactly 0 or 2 mirror rows share a GroupID; each side gets an
// independently indexed, independently paginated inbox row with its own
// unread flag.
type Conversation struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID         string              `json:"owner_id" bson:"owner_id"`
	OtherID         string              `json:"other_id" bson:"other_id"`
	GroupID         string              `json:"group_id" bson:"group_id"`
	LastMessageID   *primitive.ObjectID `json:"last_message_id,omitempty" bson:"last_message_id,omitempty"`
	LastMessageTime time.Time           `json:"last_message_time" bson:"last_message_time"`
	Unread          bool                `json:"unread" bson:"unread"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
}

// Message is a single message in a conversation group. Immutable except for
// deletion.
type Message struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	GroupID       string              `json:"group_id" bson:"group_id"`
	SenderID      string              `json:"sender_id" bson:"sender_id"`
	Type          string              `json:"type" bson:"type"`
	Content       string              `json:"content,omitempty" bson:"content,omitempty"`
	AttachmentKey string              `json:"attachment_key,omitempty" bson:"attachment_key,omitempty"`
	ReplyTo       *primitive.ObjectID `json:"reply_to,omitempty" bson:"reply_to,omitempty"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
}

// GroupIDFor derives the conversation group identifier from the unordered
// user pair. Deterministic, so repeated conversation creation converges on
// the same group.
func GroupIDFor(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "_" + b
}

// CreateConversationRequest defines the request body for starting a conversation
type CreateConversationRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// SendMessageRequest defines the request body for sending a message
type SendMessageRequest struct {
	Type          string `json:"type" validate:"required,oneof=text image"`
	Content       string `json:"content,omitempty" validate:"omitempty,max=2000"`
	AttachmentKey string `json:"attachment_key,omitempty"`
	ReplyTo       string `json:"reply_to,omitempty"`
}
