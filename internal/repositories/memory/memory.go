// Package memory provides in-memory implementations of the repository
// interfaces for service tests. A single mutex stands in for transaction
// isolation: WithTransaction holds it for the whole callback, so the
// interleavings the services rely on hold the same way they do under
// MongoDB sessions.
package memory

import (
	"context"
	"sync"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the shared in-memory state backing every repository.
type Store struct {
	mu sync.Mutex

	users    map[string]models.User
	matching map[string]models.MatchingProfile

	requests    map[primitive.ObjectID]models.FriendRequest
	friendships map[[2]string]models.Friendship
	blocks      map[[2]string]models.BlockedUser

	mirrors  map[[2]string]models.Conversation
	messages map[primitive.ObjectID]models.Message

	posts       map[primitive.ObjectID]models.Post
	comments    map[primitive.ObjectID]models.Comment
	reactions   map[primitive.ObjectID]models.Reaction
	collections map[primitive.ObjectID]models.CollectionItem

	communities map[primitive.ObjectID]models.Community
	members     map[primitive.ObjectID]models.CommunityMember
	discussions map[primitive.ObjectID]models.Discussion
	replies     map[primitive.ObjectID]models.DiscussionReply

	letters map[primitive.ObjectID]models.Letter
	gifts   map[primitive.ObjectID]models.Gift
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:       make(map[string]models.User),
		matching:    make(map[string]models.MatchingProfile),
		requests:    make(map[primitive.ObjectID]models.FriendRequest),
		friendships: make(map[[2]string]models.Friendship),
		blocks:      make(map[[2]string]models.BlockedUser),
		mirrors:     make(map[[2]string]models.Conversation),
		messages:    make(map[primitive.ObjectID]models.Message),
		posts:       make(map[primitive.ObjectID]models.Post),
		comments:    make(map[primitive.ObjectID]models.Comment),
		reactions:   make(map[primitive.ObjectID]models.Reaction),
		collections: make(map[primitive.ObjectID]models.CollectionItem),
		communities: make(map[primitive.ObjectID]models.Community),
		members:     make(map[primitive.ObjectID]models.CommunityMember),
		discussions: make(map[primitive.ObjectID]models.Discussion),
		replies:     make(map[primitive.ObjectID]models.DiscussionReply),
		letters:     make(map[primitive.ObjectID]models.Letter),
		gifts:       make(map[primitive.ObjectID]models.Gift),
	}
}

// WithTransaction serializes the callback against all other store access,
// satisfying store.Runner. There is no rollback; tests that exercise
// failure paths assert on the observable state instead.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(context.WithValue(ctx, txnKey{}, true))
}

// Repository methods run both inside and outside transactions, so locking
// is re-entrant via a context marker: enter takes the store mutex unless
// the context shows WithTransaction already holds it.
type txnKey struct{}

func (s *Store) enter(ctx context.Context) (context.Context, func()) {
	if ctx.Value(txnKey{}) != nil {
		return ctx, func() {}
	}
	s.mu.Lock()
	return context.WithValue(ctx, txnKey{}, true), s.mu.Unlock
}
