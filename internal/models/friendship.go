package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendRequest represents a pending friend request between two users.
// At most one pending request exists for an unordered pair, in either
// direction.
type FriendRequest struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SenderID   string             `json:"sender_id" bson:"sender_id"`
	ReceiverID string             `json:"receiver_id" bson:"receiver_id"`
	Message    string             `json:"message" bson:"message"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// Friendship is one direction of an accepted friendship. Rows always exist
// in symmetric pairs: Friendship(A,B) iff Friendship(B,A).
type Friendship struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID   string             `json:"owner_id" bson:"owner_id"`
	FriendID  string             `json:"friend_id" bson:"friend_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// SendFriendRequestRequest defines the request body for sending a friend request
type SendFriendRequestRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Message    string `json:"message" validate:"required,min=1,max=300"`
}
