// Package content implements profile posts with comments, reactions and
// saved-post collections. Comment and reaction counters on the post row are
// adjusted in the same transaction as the row insert or delete.
package content

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/media"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/store"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/logger"
)

// Viewer reports whether two users are hidden from each other.
type Viewer interface {
	IsExcluded(ctx context.Context, a, b string) (bool, error)
}

// Service is the post and interaction engine.
type Service struct {
	txn     store.Runner
	content repositories.ContentRepository
	viewer  Viewer
	media   media.Store
	log     *logrus.Entry
}

func NewService(txn store.Runner, content repositories.ContentRepository, viewer Viewer, mediaStore media.Store) *Service {
	return &Service{
		txn:     txn,
		content: content,
		viewer:  viewer,
		media:   mediaStore,
		log:     logger.Component("content"),
	}
}

// CreatePost publishes a post on the owner's profile.
func (s *Service) CreatePost(ctx context.Context, ownerID string, req models.CreatePostRequest) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.Validation("post content is required")
	}

	post := &models.Post{
		OwnerID:   ownerID,
		Content:   content,
		ImageKeys: req.ImageKeys,
		CreatedAt: time.Now(),
	}
	if err := s.content.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost returns a post, hidden from users excluded from its owner.
func (s *Service) GetPost(ctx context.Context, postID, viewerID string) (*models.Post, error) {
	id, err := parsePostID(postID)
	if err != nil {
		return nil, err
	}
	post, err := s.content.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewerID != post.OwnerID {
		excluded, err := s.viewer.IsExcluded(ctx, viewerID, post.OwnerID)
		if err != nil {
			return nil, err
		}
		if excluded {
			return nil, apperrors.NotFound("post not found")
		}
	}
	return post, nil
}

// DeletePost removes a post and everything hanging off it: comments,
// reactions, saved-collection entries and image objects.
func (s *Service) DeletePost(ctx context.Context, postID, actorID string) error {
	id, err := parsePostID(postID)
	if err != nil {
		return err
	}

	var imageKeys []string
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		post, err := s.content.GetPost(ctx, id)
		if err != nil {
			return err
		}
		if post.OwnerID != actorID {
			return apperrors.Auth("only the owner can delete this post")
		}
		imageKeys = post.ImageKeys

		if _, err := s.content.DeleteCommentsByPost(ctx, id); err != nil {
			return err
		}
		if _, err := s.content.DeleteReactionsByPost(ctx, id); err != nil {
			return err
		}
		if err := s.content.DeleteCollectionsByPost(ctx, id); err != nil {
			return err
		}
		return s.content.DeletePost(ctx, id)
	})
	if err != nil {
		return err
	}

	for _, key := range imageKeys {
		if err := s.media.Delete(ctx, key); err != nil {
			s.log.WithField("key", key).WithError(err).Error("failed to dispose media object")
		}
	}
	return nil
}

// AddComment comments on a post and bumps its counter atomically.
func (s *Service) AddComment(ctx context.Context, postID, authorID string, req models.CreateCommentRequest) (*models.Comment, error) {
	id, err := parsePostID(postID)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.Validation("comment content is required")
	}

	comment := &models.Comment{
		PostID:    id,
		OwnerID:   authorID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		post, err := s.content.GetPost(ctx, id)
		if err != nil {
			return err
		}
		if authorID != post.OwnerID {
			excluded, err := s.viewer.IsExcluded(ctx, authorID, post.OwnerID)
			if err != nil {
				return err
			}
			if excluded {
				return apperrors.NotFound("post not found")
			}
		}
		if err := s.content.CreateComment(ctx, comment); err != nil {
			return err
		}
		return s.content.AdjustCommentsCount(ctx, id, 1)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. The comment author and the post owner may
// both delete it.
func (s *Service) DeleteComment(ctx context.Context, commentID, actorID string) error {
	id, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return apperrors.Validation("invalid comment ID")
	}

	return s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		comment, err := s.content.GetComment(ctx, id)
		if err != nil {
			return err
		}
		if comment.OwnerID != actorID {
			post, err := s.content.GetPost(ctx, comment.PostID)
			if err != nil {
				return err
			}
			if post.OwnerID != actorID {
				return apperrors.Auth("cannot delete this comment")
			}
		}
		if err := s.content.DeleteComment(ctx, id); err != nil {
			return err
		}
		return s.content.AdjustCommentsCount(ctx, comment.PostID, -1)
	})
}

// React adds the actor's reaction to a post. One reaction per user per post.
func (s *Service) React(ctx context.Context, postID, actorID string, req models.CreateReactionRequest) (*models.Reaction, error) {
	id, err := parsePostID(postID)
	if err != nil {
		return nil, err
	}

	reaction := &models.Reaction{
		PostID:    id,
		OwnerID:   actorID,
		Kind:      req.Kind,
		CreatedAt: time.Now(),
	}
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		post, err := s.content.GetPost(ctx, id)
		if err != nil {
			return err
		}
		if actorID != post.OwnerID {
			excluded, err := s.viewer.IsExcluded(ctx, actorID, post.OwnerID)
			if err != nil {
				return err
			}
			if excluded {
				return apperrors.NotFound("post not found")
			}
		}
		if err := s.content.CreateReaction(ctx, reaction); err != nil {
			return err
		}
		return s.content.AdjustReactionsCount(ctx, id, 1)
	})
	if err != nil {
		return nil, err
	}
	return reaction, nil
}

// RemoveReaction withdraws the actor's reaction. Removing a reaction that
// does not exist is a no-op.
func (s *Service) RemoveReaction(ctx context.Context, postID, actorID string) error {
	id, err := parsePostID(postID)
	if err != nil {
		return err
	}

	return s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		removed, err := s.content.DeleteReaction(ctx, id, actorID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
		return s.content.AdjustReactionsCount(ctx, id, -1)
	})
}

// SavePost adds a post to the actor's collection.
func (s *Service) SavePost(ctx context.Context, postID, actorID string) error {
	id, err := parsePostID(postID)
	if err != nil {
		return err
	}
	if _, err := s.content.GetPost(ctx, id); err != nil {
		return err
	}
	return s.content.AddToCollection(ctx, &models.CollectionItem{
		OwnerID:   actorID,
		PostID:    id,
		CreatedAt: time.Now(),
	})
}

// UnsavePost removes a post from the actor's collection.
func (s *Service) UnsavePost(ctx context.Context, postID, actorID string) error {
	id, err := parsePostID(postID)
	if err != nil {
		return err
	}
	return s.content.RemoveFromCollection(ctx, actorID, id)
}

func parsePostID(postID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("invalid post ID")
	}
	return id, nil
}
