package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/store"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

// RelationshipRepository defines the interface for friend requests,
// friendship pairs and block edges
type RelationshipRepository interface {
	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error)
	// PendingRequestBetween returns the pending request for the unordered
	// pair in either direction, or nil when none exists.
	PendingRequestBetween(ctx context.Context, a, b string) (*models.FriendRequest, error)
	DeleteRequest(ctx context.Context, id primitive.ObjectID) error
	DeleteRequestsBetween(ctx context.Context, a, b string) error
	ListPendingRequests(ctx context.Context, receiverID string) ([]models.FriendRequest, error)

	CreateFriendshipPair(ctx context.Context, a, b string, at time.Time) error
	// FriendshipDirections reports which directions of the pair exist.
	FriendshipDirections(ctx context.Context, a, b string) (ab, ba bool, err error)
	DeleteFriendshipPair(ctx context.Context, a, b string) error
	ListFriendIDs(ctx context.Context, ownerID string) ([]string, error)

	CreateBlock(ctx context.Context, block *models.BlockedUser) error
	BlockExists(ctx context.Context, blockerID, blockedID string) (bool, error)
	BlockedEitherDirection(ctx context.Context, a, b string) (bool, error)
	DeleteBlock(ctx context.Context, blockerID, blockedID string) (bool, error)
	ListBlocked(ctx context.Context, blockerID string) ([]models.BlockedUser, error)

	// DeleteAllForUser clears every request, friendship row and block edge
	// that references the user, in either role.
	DeleteAllForUser(ctx context.Context, userID string) error
}

// MongoRelationshipRepository implements RelationshipRepository for MongoDB
type MongoRelationshipRepository struct {
	requests    *mongo.Collection
	friendships *mongo.Collection
	blocks      *mongo.Collection
}

// NewMongoRelationshipRepository creates a new MongoRelationshipRepository
func NewMongoRelationshipRepository(db *mongo.Database) *MongoRelationshipRepository {
	return &MongoRelationshipRepository{
		requests:    db.Collection(store.CollFriendRequests),
		friendships: db.Collection(store.CollFriendships),
		blocks:      db.Collection(store.CollBlockedUsers),
	}
}

func pairFilter(aField, bField, a, b string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{aField: a, bField: b},
		bson.M{aField: b, bField: a},
	}}
}

func (r *MongoRelationshipRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	req.ID = primitive.NewObjectID()
	_, err := r.requests.InsertOne(ctx, req)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("a pending friend request already exists between these users")
	}
	return err
}

func (r *MongoRelationshipRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("friend request not found")
		}
		return nil, err
	}
	return &req, nil
}

func (r *MongoRelationshipRepository) PendingRequestBetween(ctx context.Context, a, b string) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.requests.FindOne(ctx, pairFilter("sender_id", "receiver_id", a, b)).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// DeleteRequest is idempotent; deleting a request that is already gone is
// not an error.
func (r *MongoRelationshipRepository) DeleteRequest(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.requests.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoRelationshipRepository) DeleteRequestsBetween(ctx context.Context, a, b string) error {
	_, err := r.requests.DeleteMany(ctx, pairFilter("sender_id", "receiver_id", a, b))
	return err
}

func (r *MongoRelationshipRepository) ListPendingRequests(ctx context.Context, receiverID string) ([]models.FriendRequest, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.requests.Find(ctx, bson.M{"receiver_id": receiverID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.FriendRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// CreateFriendshipPair inserts both directions of the symmetric pair.
func (r *MongoRelationshipRepository) CreateFriendshipPair(ctx context.Context, a, b string, at time.Time) error {
	docs := []interface{}{
		models.Friendship{ID: primitive.NewObjectID(), OwnerID: a, FriendID: b, CreatedAt: at},
		models.Friendship{ID: primitive.NewObjectID(), OwnerID: b, FriendID: a, CreatedAt: at},
	}
	_, err := r.friendships.InsertMany(ctx, docs)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("users are already friends")
	}
	return err
}

func (r *MongoRelationshipRepository) FriendshipDirections(ctx context.Context, a, b string) (bool, bool, error) {
	cursor, err := r.friendships.Find(ctx, pairFilter("owner_id", "friend_id", a, b))
	if err != nil {
		return false, false, err
	}
	defer cursor.Close(ctx)

	var rows []models.Friendship
	if err = cursor.All(ctx, &rows); err != nil {
		return false, false, err
	}

	var ab, ba bool
	for _, row := range rows {
		if row.OwnerID == a && row.FriendID == b {
			ab = true
		}
		if row.OwnerID == b && row.FriendID == a {
			ba = true
		}
	}
	return ab, ba, nil
}

func (r *MongoRelationshipRepository) DeleteFriendshipPair(ctx context.Context, a, b string) error {
	_, err := r.friendships.DeleteMany(ctx, pairFilter("owner_id", "friend_id", a, b))
	return err
}

// ListFriendIDs is the live "friends of X" index scan shared by discovery
// exclusion and feed scoping. Never cached.
func (r *MongoRelationshipRepository) ListFriendIDs(ctx context.Context, ownerID string) ([]string, error) {
	cursor, err := r.friendships.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []models.Friendship
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.FriendID)
	}
	return ids, nil
}

func (r *MongoRelationshipRepository) CreateBlock(ctx context.Context, block *models.BlockedUser) error {
	block.ID = primitive.NewObjectID()
	_, err := r.blocks.InsertOne(ctx, block)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("user is already blocked")
	}
	return err
}

func (r *MongoRelationshipRepository) BlockExists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	count, err := r.blocks.CountDocuments(ctx, bson.M{"blocker_id": blockerID, "blocked_id": blockedID})
	return count > 0, err
}

func (r *MongoRelationshipRepository) BlockedEitherDirection(ctx context.Context, a, b string) (bool, error) {
	count, err := r.blocks.CountDocuments(ctx, pairFilter("blocker_id", "blocked_id", a, b))
	return count > 0, err
}

func (r *MongoRelationshipRepository) DeleteBlock(ctx context.Context, blockerID, blockedID string) (bool, error) {
	res, err := r.blocks.DeleteOne(ctx, bson.M{"blocker_id": blockerID, "blocked_id": blockedID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRelationshipRepository) ListBlocked(ctx context.Context, blockerID string) ([]models.BlockedUser, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.blocks.Find(ctx, bson.M{"blocker_id": blockerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var blocks []models.BlockedUser
	if err = cursor.All(ctx, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *MongoRelationshipRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	if _, err := r.requests.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"sender_id": userID},
		bson.M{"receiver_id": userID},
	}}); err != nil {
		return err
	}
	if _, err := r.friendships.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"owner_id": userID},
		bson.M{"friend_id": userID},
	}}); err != nil {
		return err
	}
	_, err := r.blocks.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"blocker_id": userID},
		bson.M{"blocked_id": userID},
	}})
	return err
}
