package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/store"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

// UserRepository defines the interface for user and matching-profile data
// operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error

	UpsertMatchingProfile(ctx context.Context, profile *models.MatchingProfile) error
	GetMatchingProfile(ctx context.Context, userID string) (*models.MatchingProfile, error)
	TouchMatchingProfile(ctx context.Context, userID string, at time.Time) error
	DeleteMatchingProfile(ctx context.Context, userID string) error
	// ScanMatchingProfiles pages through the matching index for one age
	// group, recency-descending. gender narrows the scan when non-empty;
	// before/beforeID position the cursor (zero values mean first page).
	ScanMatchingProfiles(ctx context.Context, ageGroup, gender string, before time.Time, beforeID string, limit int64) ([]models.MatchingProfile, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	users    *mongo.Collection
	matching *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		users:    db.Collection(store.CollUsers),
		matching: db.Collection(store.CollMatchingProfiles),
	}
}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	_, err := r.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("user already exists")
	}
	return err
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := r.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

// DeleteUser removes the user row. Missing rows are treated as already
// deleted; the account sweep may run more than once.
func (r *MongoUserRepository) DeleteUser(ctx context.Context, id string) error {
	_, err := r.users.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoUserRepository) UpsertMatchingProfile(ctx context.Context, profile *models.MatchingProfile) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.matching.ReplaceOne(ctx, bson.M{"_id": profile.UserID}, profile, opts)
	return err
}

func (r *MongoUserRepository) GetMatchingProfile(ctx context.Context, userID string) (*models.MatchingProfile, error) {
	var profile models.MatchingProfile
	err := r.matching.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("matching profile not found")
		}
		return nil, err
	}
	return &profile, nil
}

func (r *MongoUserRepository) TouchMatchingProfile(ctx context.Context, userID string, at time.Time) error {
	_, err := r.matching.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"last_activity": at}})
	return err
}

func (r *MongoUserRepository) DeleteMatchingProfile(ctx context.Context, userID string) error {
	_, err := r.matching.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}

func (r *MongoUserRepository) ScanMatchingProfiles(ctx context.Context, ageGroup, gender string, before time.Time, beforeID string, limit int64) ([]models.MatchingProfile, error) {
	filter := bson.M{"age_group": ageGroup}
	if gender != "" {
		filter["gender"] = gender
	}
	if !before.IsZero() {
		filter["$or"] = bson.A{
			bson.M{"last_activity": bson.M{"$lt": before}},
			bson.M{"last_activity": before, "_id": bson.M{"$gt": beforeID}},
		}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "last_activity", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.matching.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.MatchingProfile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
