package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the engine
const (
	CollUsers             = "users"
	CollMatchingProfiles  = "matching_profiles"
	CollFriendRequests    = "friend_requests"
	CollFriendships       = "friendships"
	CollBlockedUsers      = "blocked_users"
	CollConversations     = "conversations"
	CollMessages          = "messages"
	CollPosts             = "posts"
	CollComments          = "comments"
	CollReactions         = "reactions"
	CollCollections       = "collections"
	CollCommunities       = "communities"
	CollCommunityMembers  = "community_members"
	CollDiscussions       = "discussions"
	CollDiscussionReplies = "discussion_replies"
	CollLetters           = "letters"
	CollGifts             = "gifts"
)

// Runner executes a function inside a single serializable transaction.
// Engine services never take locks of their own; every multi-document
// mutation goes through here.
type Runner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store wraps the Mongo client and database the engine operates on.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewStore(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

func (s *Store) Database() *mongo.Database { return s.db }

// WithTransaction runs fn inside a Mongo session transaction. The session
// context propagates through the regular context, so repositories stay
// unaware of sessions.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the secondary indexes every live scan relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		CollMatchingProfiles: {
			{Keys: bson.D{{Key: "age_group", Value: 1}, {Key: "last_activity", Value: -1}}},
			{Keys: bson.D{{Key: "age_group", Value: 1}, {Key: "gender", Value: 1}, {Key: "last_activity", Value: -1}}},
		},
		CollFriendRequests: {
			// Unique per direction only. At-most-one-pending per unordered
			// pair is enforced by the PendingRequestBetween check inside the
			// SendRequest transaction, not by this index.
			{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "receiver_id", Value: 1}}},
		},
		CollFriendships: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "friend_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollBlockedUsers: {
			{Keys: bson.D{{Key: "blocker_id", Value: 1}, {Key: "blocked_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "blocked_id", Value: 1}}},
		},
		CollConversations: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "group_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "last_message_time", Value: -1}}},
			{Keys: bson.D{{Key: "group_id", Value: 1}}},
		},
		CollMessages: {
			{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollPosts: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		CollComments: {
			{Keys: bson.D{{Key: "post_id", Value: 1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		},
		CollReactions: {
			{Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "owner_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		},
		CollCollections: {
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "post_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		CollCommunityMembers: {
			{Keys: bson.D{{Key: "community_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		CollDiscussions: {
			{Keys: bson.D{{Key: "community_id", Value: 1}}},
		},
		CollDiscussionReplies: {
			{Keys: bson.D{{Key: "discussion_id", Value: 1}}},
			{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		},
		CollLetters: {
			{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "sender_id", Value: 1}}},
		},
		CollGifts: {
			{Keys: bson.D{{Key: "receiver_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "sender_id", Value: 1}}},
		},
	}

	for coll, models := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
