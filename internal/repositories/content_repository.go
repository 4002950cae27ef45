package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/store"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

// ContentRepository defines the interface for posts, comments, reactions and
// collections. The per-post comment/reaction counters are denormalized, so
// every removal path reports how many rows each post lost.
type ContentRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	PostIDsByOwner(ctx context.Context, ownerID string) ([]primitive.ObjectID, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	DeleteCommentsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	// DeleteCommentsByAuthorOnOwner removes the author's comments from
	// every post owned by postOwner and reports rows removed per post.
	DeleteCommentsByAuthorOnOwner(ctx context.Context, authorID, postOwnerID string) (map[primitive.ObjectID]int64, error)
	DeleteCommentsByAuthor(ctx context.Context, authorID string) (map[primitive.ObjectID]int64, error)

	CreateReaction(ctx context.Context, reaction *models.Reaction) error
	DeleteReaction(ctx context.Context, postID primitive.ObjectID, ownerID string) (bool, error)
	DeleteReactionsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	DeleteReactionsByAuthorOnOwner(ctx context.Context, authorID, postOwnerID string) (map[primitive.ObjectID]int64, error)
	DeleteReactionsByAuthor(ctx context.Context, authorID string) (map[primitive.ObjectID]int64, error)

	// AdjustCommentsCount applies delta to the post's counter, clamped at
	// zero. Missing posts are ignored.
	AdjustCommentsCount(ctx context.Context, postID primitive.ObjectID, delta int64) error
	AdjustReactionsCount(ctx context.Context, postID primitive.ObjectID, delta int64) error

	AddToCollection(ctx context.Context, item *models.CollectionItem) error
	RemoveFromCollection(ctx context.Context, ownerID string, postID primitive.ObjectID) error
	DeleteCollectionsByOwner(ctx context.Context, ownerID string) error
	DeleteCollectionsByPost(ctx context.Context, postID primitive.ObjectID) error
}

// MongoContentRepository implements ContentRepository for MongoDB
type MongoContentRepository struct {
	posts       *mongo.Collection
	comments    *mongo.Collection
	reactions   *mongo.Collection
	collections *mongo.Collection
}

// NewMongoContentRepository creates a new MongoContentRepository
func NewMongoContentRepository(db *mongo.Database) *MongoContentRepository {
	return &MongoContentRepository{
		posts:       db.Collection(store.CollPosts),
		comments:    db.Collection(store.CollComments),
		reactions:   db.Collection(store.CollReactions),
		collections: db.Collection(store.CollCollections),
	}
}

func (r *MongoContentRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	_, err := r.posts.InsertOne(ctx, post)
	return err
}

func (r *MongoContentRepository) GetPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("post not found")
		}
		return nil, err
	}
	return &post, nil
}

func (r *MongoContentRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.posts.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoContentRepository) PostIDsByOwner(ctx context.Context, ownerID string) ([]primitive.ObjectID, error) {
	cursor, err := r.posts.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (r *MongoContentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	_, err := r.comments.InsertOne(ctx, comment)
	return err
}

func (r *MongoContentRepository) GetComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var comment models.Comment
	err := r.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("comment not found")
		}
		return nil, err
	}
	return &comment, nil
}

func (r *MongoContentRepository) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.comments.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoContentRepository) DeleteCommentsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.comments.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoContentRepository) DeleteCommentsByAuthorOnOwner(ctx context.Context, authorID, postOwnerID string) (map[primitive.ObjectID]int64, error) {
	postIDs, err := r.PostIDsByOwner(ctx, postOwnerID)
	if err != nil || len(postIDs) == 0 {
		return nil, err
	}
	return deleteGrouped(ctx, r.comments, bson.M{"owner_id": authorID, "post_id": bson.M{"$in": postIDs}})
}

func (r *MongoContentRepository) DeleteCommentsByAuthor(ctx context.Context, authorID string) (map[primitive.ObjectID]int64, error) {
	return deleteGrouped(ctx, r.comments, bson.M{"owner_id": authorID})
}

func (r *MongoContentRepository) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	reaction.ID = primitive.NewObjectID()
	_, err := r.reactions.InsertOne(ctx, reaction)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("post already has a reaction from this user")
	}
	return err
}

func (r *MongoContentRepository) DeleteReaction(ctx context.Context, postID primitive.ObjectID, ownerID string) (bool, error) {
	res, err := r.reactions.DeleteOne(ctx, bson.M{"post_id": postID, "owner_id": ownerID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoContentRepository) DeleteReactionsByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.reactions.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoContentRepository) DeleteReactionsByAuthorOnOwner(ctx context.Context, authorID, postOwnerID string) (map[primitive.ObjectID]int64, error) {
	postIDs, err := r.PostIDsByOwner(ctx, postOwnerID)
	if err != nil || len(postIDs) == 0 {
		return nil, err
	}
	return deleteGrouped(ctx, r.reactions, bson.M{"owner_id": authorID, "post_id": bson.M{"$in": postIDs}})
}

func (r *MongoContentRepository) DeleteReactionsByAuthor(ctx context.Context, authorID string) (map[primitive.ObjectID]int64, error) {
	return deleteGrouped(ctx, r.reactions, bson.M{"owner_id": authorID})
}

// deleteGrouped counts matching rows per post, deletes them, and returns the
// per-post counts so the caller can adjust the denormalized counters.
func deleteGrouped(ctx context.Context, coll *mongo.Collection, filter bson.M) (map[primitive.ObjectID]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$group", Value: bson.M{"_id": "$post_id", "n": bson.M{"$sum": 1}}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var grouped []struct {
		PostID primitive.ObjectID `bson:"_id"`
		N      int64              `bson:"n"`
	}
	if err = cursor.All(ctx, &grouped); err != nil {
		return nil, err
	}
	if len(grouped) == 0 {
		return nil, nil
	}

	if _, err = coll.DeleteMany(ctx, filter); err != nil {
		return nil, err
	}

	counts := make(map[primitive.ObjectID]int64, len(grouped))
	for _, g := range grouped {
		counts[g.PostID] = g.N
	}
	return counts, nil
}

func (r *MongoContentRepository) AdjustCommentsCount(ctx context.Context, postID primitive.ObjectID, delta int64) error {
	return adjustCounter(ctx, r.posts, postID, "comments_count", delta)
}

func (r *MongoContentRepository) AdjustReactionsCount(ctx context.Context, postID primitive.ObjectID, delta int64) error {
	return adjustCounter(ctx, r.posts, postID, "reactions_count", delta)
}

// adjustCounter applies delta with a pipeline update so the counter can
// never go below zero.
func adjustCounter(ctx context.Context, posts *mongo.Collection, postID primitive.ObjectID, field string, delta int64) error {
	update := bson.A{bson.M{"$set": bson.M{
		field: bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{"$" + field, delta}}}},
	}}}
	_, err := posts.UpdateOne(ctx, bson.M{"_id": postID}, update)
	return err
}

func (r *MongoContentRepository) AddToCollection(ctx context.Context, item *models.CollectionItem) error {
	item.ID = primitive.NewObjectID()
	_, err := r.collections.InsertOne(ctx, item)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("post already saved")
	}
	return err
}

func (r *MongoContentRepository) RemoveFromCollection(ctx context.Context, ownerID string, postID primitive.ObjectID) error {
	_, err := r.collections.DeleteOne(ctx, bson.M{"owner_id": ownerID, "post_id": postID})
	return err
}

func (r *MongoContentRepository) DeleteCollectionsByOwner(ctx context.Context, ownerID string) error {
	_, err := r.collections.DeleteMany(ctx, bson.M{"owner_id": ownerID})
	return err
}

func (r *MongoContentRepository) DeleteCollectionsByPost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := r.collections.DeleteMany(ctx, bson.M{"post_id": postID})
	return err
}
