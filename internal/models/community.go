package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Community CRUD lives outside this service; the models exist here because
// the account-deletion sweep must clear every collection that references a
// user.

type Community struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID   string             `json:"owner_id" bson:"owner_id"`
	Title     string             `json:"title" bson:"title"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type CommunityMember struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	CommunityID primitive.ObjectID `json:"community_id" bson:"community_id"`
	UserID      string             `json:"user_id" bson:"user_id"`
	JoinedAt    time.Time          `json:"joined_at" bson:"joined_at"`
}

type Discussion struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	CommunityID primitive.ObjectID `json:"community_id" bson:"community_id"`
	OwnerID     string             `json:"owner_id" bson:"owner_id"`
	Title       string             `json:"title" bson:"title"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

type DiscussionReply struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	DiscussionID primitive.ObjectID `json:"discussion_id" bson:"discussion_id"`
	OwnerID      string             `json:"owner_id" bson:"owner_id"`
	Content      string             `json:"content" bson:"content"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}
