package memory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

// ContentRepository is the in-memory ContentRepository.
type ContentRepository struct {
	store *Store
}

func NewContentRepository(store *Store) *ContentRepository {
	return &ContentRepository{store: store}
}

func (r *ContentRepository) CreatePost(ctx context.Context, post *models.Post) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	post.ID = primitive.NewObjectID()
	r.store.posts[post.ID] = *post
	return nil
}

func (r *ContentRepository) GetPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	p, ok := r.store.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	return &p, nil
}

func (r *ContentRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	delete(r.store.posts, id)
	return nil
}

func (r *ContentRepository) PostIDsByOwner(ctx context.Context, ownerID string) ([]primitive.ObjectID, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var out []primitive.ObjectID
	for id, p := range r.store.posts {
		if p.OwnerID == ownerID {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *ContentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	comment.ID = primitive.NewObjectID()
	r.store.comments[comment.ID] = *comment
	return nil
}

func (r *ContentRepository) GetComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	c, ok := r.store.comments[id]
	if !ok {
		return nil, apperrors.NotFound("comment not found")
	}
	return &c, nil
}

func (r *ContentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	delete(r.store.comments, id)
	return nil
}

func (r *ContentRepository) DeleteCommentsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var n int64
	for id, c := range r.store.comments {
		if c.PostID == postID {
			delete(r.store.comments, id)
			n++
		}
	}
	return n, nil
}

func (r *ContentRepository) DeleteCommentsByAuthorOnOwner(ctx context.Context, authorID, postOwnerID string) (map[primitive.ObjectID]int64, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	counts := make(map[primitive.ObjectID]int64)
	for id, c := range r.store.comments {
		if c.OwnerID != authorID {
			continue
		}
		post, ok := r.store.posts[c.PostID]
		if !ok || post.OwnerID != postOwnerID {
			continue
		}
		delete(r.store.comments, id)
		counts[c.PostID]++
	}
	return counts, nil
}

func (r *ContentRepository) DeleteCommentsByAuthor(ctx context.Context, authorID string) (map[primitive.ObjectID]int64, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	counts := make(map[primitive.ObjectID]int64)
	for id, c := range r.store.comments {
		if c.OwnerID == authorID {
			delete(r.store.comments, id)
			counts[c.PostID]++
		}
	}
	return counts, nil
}

func (r *ContentRepository) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for _, existing := range r.store.reactions {
		if existing.PostID == reaction.PostID && existing.OwnerID == reaction.OwnerID {
			return apperrors.Conflict("reaction already exists")
		}
	}
	reaction.ID = primitive.NewObjectID()
	r.store.reactions[reaction.ID] = *reaction
	return nil
}

func (r *ContentRepository) DeleteReaction(ctx context.Context, postID primitive.ObjectID, ownerID string) (bool, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for id, reaction := range r.store.reactions {
		if reaction.PostID == postID && reaction.OwnerID == ownerID {
			delete(r.store.reactions, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *ContentRepository) DeleteReactionsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var n int64
	for id, reaction := range r.store.reactions {
		if reaction.PostID == postID {
			delete(r.store.reactions, id)
			n++
		}
	}
	return n, nil
}

func (r *ContentRepository) DeleteReactionsByAuthorOnOwner(ctx context.Context, authorID, postOwnerID string) (map[primitive.ObjectID]int64, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	counts := make(map[primitive.ObjectID]int64)
	for id, reaction := range r.store.reactions {
		if reaction.OwnerID != authorID {
			continue
		}
		post, ok := r.store.posts[reaction.PostID]
		if !ok || post.OwnerID != postOwnerID {
			continue
		}
		delete(r.store.reactions, id)
		counts[reaction.PostID]++
	}
	return counts, nil
}

func (r *ContentRepository) DeleteReactionsByAuthor(ctx context.Context, authorID string) (map[primitive.ObjectID]int64, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	counts := make(map[primitive.ObjectID]int64)
	for id, reaction := range r.store.reactions {
		if reaction.OwnerID == authorID {
			delete(r.store.reactions, id)
			counts[reaction.PostID]++
		}
	}
	return counts, nil
}

func (r *ContentRepository) AdjustCommentsCount(ctx context.Context, postID primitive.ObjectID, delta int64) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	if p, ok := r.store.posts[postID]; ok {
		p.CommentsCount += delta
		if p.CommentsCount < 0 {
			p.CommentsCount = 0
		}
		r.store.posts[postID] = p
	}
	return nil
}

func (r *ContentRepository) AdjustReactionsCount(ctx context.Context, postID primitive.ObjectID, delta int64) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	if p, ok := r.store.posts[postID]; ok {
		p.ReactionsCount += delta
		if p.ReactionsCount < 0 {
			p.ReactionsCount = 0
		}
		r.store.posts[postID] = p
	}
	return nil
}

func (r *ContentRepository) AddToCollection(ctx context.Context, item *models.CollectionItem) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for _, existing := range r.store.collections {
		if existing.OwnerID == item.OwnerID && existing.PostID == item.PostID {
			return apperrors.Conflict("post is already saved")
		}
	}
	item.ID = primitive.NewObjectID()
	r.store.collections[item.ID] = *item
	return nil
}

func (r *ContentRepository) RemoveFromCollection(ctx context.Context, ownerID string, postID primitive.ObjectID) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for id, item := range r.store.collections {
		if item.OwnerID == ownerID && item.PostID == postID {
			delete(r.store.collections, id)
		}
	}
	return nil
}

func (r *ContentRepository) DeleteCollectionsByOwner(ctx context.Context, ownerID string) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for id, item := range r.store.collections {
		if item.OwnerID == ownerID {
			delete(r.store.collections, id)
		}
	}
	return nil
}

func (r *ContentRepository) DeleteCollectionsByPost(ctx context.Context, postID primitive.ObjectID) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for id, item := range r.store.collections {
		if item.PostID == postID {
			delete(r.store.collections, id)
		}
	}
	return nil
}
