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

// ConversationRepository defines the interface for conversation mirrors and
// messages
type ConversationRepository interface {
	// GetMirror returns the owner's mirror row for the group, or nil when
	// none exists.
	GetMirror(ctx context.Context, ownerID, groupID string) (*models.Conversation, error)
	MirrorsByGroup(ctx context.Context, groupID string) ([]models.Conversation, error)
	CreateMirrorPair(ctx context.Context, a, b, groupID string, at time.Time) error
	DeleteMirrorPair(ctx context.Context, groupID string) error
	// AdvanceLastMessage moves both mirrors to the new message: the
	// sender's mirror clears unread, the other side sets it.
	AdvanceLastMessage(ctx context.Context, groupID, senderID string, messageID primitive.ObjectID, at time.Time) error
	// PatchLastMessage rewrites both mirrors' cached last-message pointer,
	// used after a deletion invalidated it. messageID may be nil.
	PatchLastMessage(ctx context.Context, groupID string, messageID *primitive.ObjectID, at time.Time) error
	SetUnread(ctx context.Context, ownerID, groupID string, unread bool) error
	ListMirrors(ctx context.Context, ownerID string, before time.Time, beforeID string, limit int64) ([]models.Conversation, error)
	GroupIDsForUser(ctx context.Context, ownerID string) ([]string, error)

	InsertMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	DeleteMessage(ctx context.Context, id primitive.ObjectID) error
	// LatestMessage returns the most recent remaining message in the
	// group, or nil when the group is empty.
	LatestMessage(ctx context.Context, groupID string) (*models.Message, error)
	ListMessages(ctx context.Context, groupID string, before time.Time, beforeID string, limit int64) ([]models.Message, error)
	AttachmentKeys(ctx context.Context, groupID string) ([]string, error)
	DeleteMessagesByGroup(ctx context.Context, groupID string) (int64, error)
}

// MongoConversationRepository implements ConversationRepository for MongoDB
type MongoConversationRepository struct {
	mirrors  *mongo.Collection
	messages *mongo.Collection
}

// NewMongoConversationRepository creates a new MongoConversationRepository
func NewMongoConversationRepository(db *mongo.Database) *MongoConversationRepository {
	return &MongoConversationRepository{
		mirrors:  db.Collection(store.CollConversations),
		messages: db.Collection(store.CollMessages),
	}
}

func (r *MongoConversationRepository) GetMirror(ctx context.Context, ownerID, groupID string) (*models.Conversation, error) {
	var mirror models.Conversation
	err := r.mirrors.FindOne(ctx, bson.M{"owner_id": ownerID, "group_id": groupID}).Decode(&mirror)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &mirror, nil
}

func (r *MongoConversationRepository) MirrorsByGroup(ctx context.Context, groupID string) ([]models.Conversation, error) {
	cursor, err := r.mirrors.Find(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var mirrors []models.Conversation
	if err = cursor.All(ctx, &mirrors); err != nil {
		return nil, err
	}
	return mirrors, nil
}

// CreateMirrorPair inserts both mirror rows in one call so no code path can
// leave a group with a single mirror.
func (r *MongoConversationRepository) CreateMirrorPair(ctx context.Context, a, b, groupID string, at time.Time) error {
	docs := []interface{}{
		models.Conversation{ID: primitive.NewObjectID(), OwnerID: a, OtherID: b, GroupID: groupID, LastMessageTime: at, CreatedAt: at},
		models.Conversation{ID: primitive.NewObjectID(), OwnerID: b, OtherID: a, GroupID: groupID, LastMessageTime: at, CreatedAt: at},
	}
	_, err := r.mirrors.InsertMany(ctx, docs)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Conflict("conversation already exists")
	}
	return err
}

func (r *MongoConversationRepository) DeleteMirrorPair(ctx context.Context, groupID string) error {
	_, err := r.mirrors.DeleteMany(ctx, bson.M{"group_id": groupID})
	return err
}

func (r *MongoConversationRepository) AdvanceLastMessage(ctx context.Context, groupID, senderID string, messageID primitive.ObjectID, at time.Time) error {
	_, err := r.mirrors.UpdateOne(ctx,
		bson.M{"group_id": groupID, "owner_id": senderID},
		bson.M{"$set": bson.M{"last_message_id": messageID, "last_message_time": at, "unread": false}})
	if err != nil {
		return err
	}
	_, err = r.mirrors.UpdateOne(ctx,
		bson.M{"group_id": groupID, "owner_id": bson.M{"$ne": senderID}},
		bson.M{"$set": bson.M{"last_message_id": messageID, "last_message_time": at, "unread": true}})
	return err
}

func (r *MongoConversationRepository) PatchLastMessage(ctx context.Context, groupID string, messageID *primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{"last_message_time": at}}
	if messageID != nil {
		update["$set"].(bson.M)["last_message_id"] = *messageID
	} else {
		update["$unset"] = bson.M{"last_message_id": ""}
	}
	_, err := r.mirrors.UpdateMany(ctx, bson.M{"group_id": groupID}, update)
	return err
}

func (r *MongoConversationRepository) SetUnread(ctx context.Context, ownerID, groupID string, unread bool) error {
	_, err := r.mirrors.UpdateOne(ctx,
		bson.M{"owner_id": ownerID, "group_id": groupID},
		bson.M{"$set": bson.M{"unread": unread}})
	return err
}

func (r *MongoConversationRepository) ListMirrors(ctx context.Context, ownerID string, before time.Time, beforeID string, limit int64) ([]models.Conversation, error) {
	filter := bson.M{"owner_id": ownerID}
	if !before.IsZero() {
		filter["$or"] = bson.A{
			bson.M{"last_message_time": bson.M{"$lt": before}},
			bson.M{"last_message_time": before, "group_id": bson.M{"$gt": beforeID}},
		}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "last_message_time", Value: -1}, {Key: "group_id", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.mirrors.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var mirrors []models.Conversation
	if err = cursor.All(ctx, &mirrors); err != nil {
		return nil, err
	}
	return mirrors, nil
}

func (r *MongoConversationRepository) GroupIDsForUser(ctx context.Context, ownerID string) ([]string, error) {
	cursor, err := r.mirrors.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var mirrors []models.Conversation
	if err = cursor.All(ctx, &mirrors); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(mirrors))
	for _, m := range mirrors {
		ids = append(ids, m.GroupID)
	}
	return ids, nil
}

func (r *MongoConversationRepository) InsertMessage(ctx context.Context, msg *models.Message) error {
	msg.ID = primitive.NewObjectID()
	_, err := r.messages.InsertOne(ctx, msg)
	return err
}

func (r *MongoConversationRepository) GetMessage(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	err := r.messages.FindOne(ctx, bson.M{"_id": id}).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("message not found")
		}
		return nil, err
	}
	return &msg, nil
}

func (r *MongoConversationRepository) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.messages.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoConversationRepository) LatestMessage(ctx context.Context, groupID string) (*models.Message, error) {
	findOptions := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	var msg models.Message
	err := r.messages.FindOne(ctx, bson.M{"group_id": groupID}, findOptions).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *MongoConversationRepository) ListMessages(ctx context.Context, groupID string, before time.Time, beforeID string, limit int64) ([]models.Message, error) {
	filter := bson.M{"group_id": groupID}
	if !before.IsZero() {
		oid, err := primitive.ObjectIDFromHex(beforeID)
		if err != nil {
			return nil, apperrors.Validation("invalid pagination token")
		}
		filter["$or"] = bson.A{
			bson.M{"created_at": bson.M{"$lt": before}},
			bson.M{"created_at": before, "_id": bson.M{"$lt": oid}},
		}
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.messages.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *MongoConversationRepository) AttachmentKeys(ctx context.Context, groupID string) ([]string, error) {
	cursor, err := r.messages.Find(ctx,
		bson.M{"group_id": groupID, "attachment_key": bson.M{"$exists": true, "$ne": ""}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(messages))
	for _, m := range messages {
		keys = append(keys, m.AttachmentKey)
	}
	return keys, nil
}

func (r *MongoConversationRepository) DeleteMessagesByGroup(ctx context.Context, groupID string) (int64, error) {
	res, err := r.messages.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
