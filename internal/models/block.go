package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlockedUser is a directed block edge. Only the blocker can undo it, but
// exclusion checks consider both directions.
type BlockedUser struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	BlockerID string             `json:"blocker_id" bson:"blocker_id"`
	BlockedID string             `json:"blocked_id" bson:"blocked_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// BlockUserRequest defines the request body for blocking a user
type BlockUserRequest struct {
	UserID string `json:"user_id" validate:"required"`
}
