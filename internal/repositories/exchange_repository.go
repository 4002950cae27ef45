package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/store"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

// ExchangeRepository defines the interface for letters and gifts exchanged
// between users. Deletions return any scheduler handles still pending so the
// caller can cancel the delivery timers.
type ExchangeRepository interface {
	CreateLetter(ctx context.Context, letter *models.Letter) error
	GetLetter(ctx context.Context, id primitive.ObjectID) (*models.Letter, error)
	// SetLetterScheduleHandle records or clears (empty handle) the pending
	// delivery timer for a letter.
	SetLetterScheduleHandle(ctx context.Context, id primitive.ObjectID, handle string) error
	CreateGift(ctx context.Context, gift *models.Gift) error
	ListLettersReceived(ctx context.Context, receiverID string) ([]models.Letter, error)
	ListGiftsReceived(ctx context.Context, receiverID string) ([]models.Gift, error)
	DeleteLettersBetween(ctx context.Context, a, b string) ([]string, error)
	DeleteGiftsBetween(ctx context.Context, a, b string) error
	DeleteLettersByUser(ctx context.Context, userID string) ([]string, error)
	DeleteGiftsByUser(ctx context.Context, userID string) error
}

// MongoExchangeRepository implements ExchangeRepository for MongoDB
type MongoExchangeRepository struct {
	letters *mongo.Collection
	gifts   *mongo.Collection
}

// NewMongoExchangeRepository creates a new MongoExchangeRepository
func NewMongoExchangeRepository(db *mongo.Database) *MongoExchangeRepository {
	return &MongoExchangeRepository{
		letters: db.Collection(store.CollLetters),
		gifts:   db.Collection(store.CollGifts),
	}
}

func (r *MongoExchangeRepository) CreateLetter(ctx context.Context, letter *models.Letter) error {
	letter.ID = primitive.NewObjectID()
	_, err := r.letters.InsertOne(ctx, letter)
	return err
}

func (r *MongoExchangeRepository) GetLetter(ctx context.Context, id primitive.ObjectID) (*models.Letter, error) {
	var letter models.Letter
	err := r.letters.FindOne(ctx, bson.M{"_id": id}).Decode(&letter)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("letter not found")
		}
		return nil, err
	}
	return &letter, nil
}

func (r *MongoExchangeRepository) SetLetterScheduleHandle(ctx context.Context, id primitive.ObjectID, handle string) error {
	update := bson.M{"$set": bson.M{"schedule_handle": handle}}
	if handle == "" {
		update = bson.M{"$unset": bson.M{"schedule_handle": ""}}
	}
	_, err := r.letters.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *MongoExchangeRepository) CreateGift(ctx context.Context, gift *models.Gift) error {
	gift.ID = primitive.NewObjectID()
	_, err := r.gifts.InsertOne(ctx, gift)
	return err
}

func (r *MongoExchangeRepository) ListLettersReceived(ctx context.Context, receiverID string) ([]models.Letter, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.letters.Find(ctx, bson.M{"receiver_id": receiverID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var letters []models.Letter
	if err = cursor.All(ctx, &letters); err != nil {
		return nil, err
	}
	return letters, nil
}

func (r *MongoExchangeRepository) ListGiftsReceived(ctx context.Context, receiverID string) ([]models.Gift, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.gifts.Find(ctx, bson.M{"receiver_id": receiverID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var gifts []models.Gift
	if err = cursor.All(ctx, &gifts); err != nil {
		return nil, err
	}
	return gifts, nil
}

func (r *MongoExchangeRepository) DeleteLettersBetween(ctx context.Context, a, b string) ([]string, error) {
	filter := pairFilter("sender_id", "receiver_id", a, b)
	return r.deleteLetters(ctx, filter)
}

func (r *MongoExchangeRepository) DeleteGiftsBetween(ctx context.Context, a, b string) error {
	_, err := r.gifts.DeleteMany(ctx, pairFilter("sender_id", "receiver_id", a, b))
	return err
}

func (r *MongoExchangeRepository) DeleteLettersByUser(ctx context.Context, userID string) ([]string, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": userID},
		bson.M{"receiver_id": userID},
	}}
	return r.deleteLetters(ctx, filter)
}

func (r *MongoExchangeRepository) DeleteGiftsByUser(ctx context.Context, userID string) error {
	_, err := r.gifts.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"sender_id": userID},
		bson.M{"receiver_id": userID},
	}})
	return err
}

// deleteLetters collects pending schedule handles before deleting so the
// delivery timers can be cancelled.
func (r *MongoExchangeRepository) deleteLetters(ctx context.Context, filter bson.M) ([]string, error) {
	cursor, err := r.letters.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var letters []models.Letter
	if err = cursor.All(ctx, &letters); err != nil {
		return nil, err
	}

	var handles []string
	for _, l := range letters {
		if l.ScheduleHandle != "" {
			handles = append(handles, l.ScheduleHandle)
		}
	}

	if len(letters) > 0 {
		if _, err := r.letters.DeleteMany(ctx, filter); err != nil {
			return nil, err
		}
	}
	return handles, nil
}
