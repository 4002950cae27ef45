package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/store"
)

// CommunityRepository covers the deletion surface of the community
// collections. Community CRUD itself lives in another service; the account
// sweep here only needs to clear what references a departing user.
type CommunityRepository interface {
	OwnedCommunityIDs(ctx context.Context, ownerID string) ([]primitive.ObjectID, error)
	DeleteCommunity(ctx context.Context, id primitive.ObjectID) error
	DeleteMembersByCommunity(ctx context.Context, communityID primitive.ObjectID) error
	DiscussionIDsByCommunity(ctx context.Context, communityID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteDiscussionsByCommunity(ctx context.Context, communityID primitive.ObjectID) error
	DeleteRepliesByDiscussions(ctx context.Context, discussionIDs []primitive.ObjectID) error
	DeleteMembershipsByUser(ctx context.Context, userID string) error
	// DeleteDiscussionsByAuthor removes discussions the user started in
	// other communities and returns their IDs so replies can be cleared.
	DeleteDiscussionsByAuthor(ctx context.Context, userID string) ([]primitive.ObjectID, error)
	DeleteRepliesByAuthor(ctx context.Context, userID string) error
}

// MongoCommunityRepository implements CommunityRepository for MongoDB
type MongoCommunityRepository struct {
	communities *mongo.Collection
	members     *mongo.Collection
	discussions *mongo.Collection
	replies     *mongo.Collection
}

// NewMongoCommunityRepository creates a new MongoCommunityRepository
func NewMongoCommunityRepository(db *mongo.Database) *MongoCommunityRepository {
	return &MongoCommunityRepository{
		communities: db.Collection(store.CollCommunities),
		members:     db.Collection(store.CollCommunityMembers),
		discussions: db.Collection(store.CollDiscussions),
		replies:     db.Collection(store.CollDiscussionReplies),
	}
}

func (r *MongoCommunityRepository) OwnedCommunityIDs(ctx context.Context, ownerID string) ([]primitive.ObjectID, error) {
	cursor, err := r.communities.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var communities []models.Community
	if err = cursor.All(ctx, &communities); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(communities))
	for _, c := range communities {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (r *MongoCommunityRepository) DeleteCommunity(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.communities.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoCommunityRepository) DeleteMembersByCommunity(ctx context.Context, communityID primitive.ObjectID) error {
	_, err := r.members.DeleteMany(ctx, bson.M{"community_id": communityID})
	return err
}

func (r *MongoCommunityRepository) DiscussionIDsByCommunity(ctx context.Context, communityID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.discussions.Find(ctx, bson.M{"community_id": communityID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var discussions []models.Discussion
	if err = cursor.All(ctx, &discussions); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(discussions))
	for _, d := range discussions {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (r *MongoCommunityRepository) DeleteDiscussionsByCommunity(ctx context.Context, communityID primitive.ObjectID) error {
	_, err := r.discussions.DeleteMany(ctx, bson.M{"community_id": communityID})
	return err
}

func (r *MongoCommunityRepository) DeleteRepliesByDiscussions(ctx context.Context, discussionIDs []primitive.ObjectID) error {
	if len(discussionIDs) == 0 {
		return nil
	}
	_, err := r.replies.DeleteMany(ctx, bson.M{"discussion_id": bson.M{"$in": discussionIDs}})
	return err
}

func (r *MongoCommunityRepository) DeleteMembershipsByUser(ctx context.Context, userID string) error {
	_, err := r.members.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

func (r *MongoCommunityRepository) DeleteDiscussionsByAuthor(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	cursor, err := r.discussions.Find(ctx, bson.M{"owner_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var discussions []models.Discussion
	if err = cursor.All(ctx, &discussions); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(discussions))
	for _, d := range discussions {
		ids = append(ids, d.ID)
	}
	if len(ids) > 0 {
		if _, err := r.discussions.DeleteMany(ctx, bson.M{"owner_id": userID}); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (r *MongoCommunityRepository) DeleteRepliesByAuthor(ctx context.Context, userID string) error {
	_, err := r.replies.DeleteMany(ctx, bson.M{"owner_id": userID})
	return err
}
