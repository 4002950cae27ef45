package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a profile post stored in MongoDB. CommentsCount and
// ReactionsCount are denormalized running counters maintained by every code
// path that inserts or removes comment/reaction rows.
type Post struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID        string             `json:"owner_id" bson:"owner_id"`
	Content        string             `json:"content" bson:"content"`
	ImageKeys      []string           `json:"image_keys,omitempty" bson:"image_keys,omitempty"`
	CommentsCount  int64              `json:"comments_count" bson:"comments_count"`
	ReactionsCount int64              `json:"reactions_count" bson:"reactions_count"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

// Comment represents a comment on a post
type Comment struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID    primitive.ObjectID `json:"post_id" bson:"post_id"`
	OwnerID   string             `json:"owner_id" bson:"owner_id"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Reaction represents a reaction on a post, one per user per post
type Reaction struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID    primitive.ObjectID `json:"post_id" bson:"post_id"`
	OwnerID   string             `json:"owner_id" bson:"owner_id"`
	Kind      string             `json:"kind" bson:"kind"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// CollectionItem is a post saved into the owner's collection
type CollectionItem struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID   string             `json:"owner_id" bson:"owner_id"`
	PostID    primitive.ObjectID `json:"post_id" bson:"post_id"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content   string   `json:"content" validate:"required,min=1,max=2000"`
	ImageKeys []string `json:"image_keys,omitempty" validate:"omitempty,max=4,dive,min=1"`
}

// CreateCommentRequest defines the request body for commenting on a post
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// CreateReactionRequest defines the request body for reacting to a post
type CreateReactionRequest struct {
	Kind string `json:"kind" validate:"required,oneof=like love laugh sad"`
}
