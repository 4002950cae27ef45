package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Letter is a long-form message between friends, optionally held back until
// DeliverAt by the scheduler collaborator.
type Letter struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SenderID       string             `json:"sender_id" bson:"sender_id"`
	ReceiverID     string             `json:"receiver_id" bson:"receiver_id"`
	Title          string             `json:"title" bson:"title"`
	Body           string             `json:"body" bson:"body"`
	DeliverAt      *time.Time         `json:"deliver_at,omitempty" bson:"deliver_at,omitempty"`
	ScheduleHandle string             `json:"-" bson:"schedule_handle,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// Gift is a small token sent between friends
type Gift struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SenderID   string             `json:"sender_id" bson:"sender_id"`
	ReceiverID string             `json:"receiver_id" bson:"receiver_id"`
	Kind       string             `json:"kind" bson:"kind"`
	Message    string             `json:"message,omitempty" bson:"message,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// SendLetterRequest defines the request body for sending a letter
type SendLetterRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Title      string `json:"title" validate:"required,min=1,max=120"`
	Body       string `json:"body" validate:"required,min=1,max=10000"`
	DeliverAt  string `json:"deliver_at,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// SendGiftRequest defines the request body for sending a gift
type SendGiftRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Kind       string `json:"kind" validate:"required,min=1,max=40"`
	Message    string `json:"message,omitempty" validate:"omitempty,max=300"`
}
