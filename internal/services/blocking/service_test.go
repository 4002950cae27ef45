package blocking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories/memory"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/scheduler"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

type recordedEvent struct {
	Recipient string
	Actor     string
	Kind      string
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
	purged []string
}

func (f *fakeEmitter) Emit(_ context.Context, recipientID, actorID, eventType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Recipient: recipientID, Actor: actorID, Kind: eventType})
}

func (f *fakeEmitter) PurgeRecipient(_ context.Context, recipientID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged = append(f.purged, recipientID)
	return nil
}

type fakeScheduler struct {
	mu        sync.Mutex
	cancelled []string
}

func (f *fakeScheduler) Schedule(time.Time, scheduler.Payload) (string, error) { return "handle", nil }

func (f *fakeScheduler) Cancel(handle string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, handle)
}

type recordingMedia struct {
	mu      sync.Mutex
	deleted []string
}

func (m *recordingMedia) Resolve(_ context.Context, key string) (string, error) {
	return "https://cdn.example.com/" + key, nil
}

func (m *recordingMedia) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, key)
	return nil
}

type fakeCredentials struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeCredentials) DeleteUser(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, uid)
	return nil
}

type testEnv struct {
	store         *memory.Store
	users         *memory.UserRepository
	relations     *memory.RelationshipRepository
	conversations *memory.ConversationRepository
	content       *memory.ContentRepository
	communities   *memory.CommunityRepository
	exchanges     *memory.ExchangeRepository
	emitter       *fakeEmitter
	sched         *fakeScheduler
	media         *recordingMedia
	credentials   *fakeCredentials
	svc           *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := memory.NewStore()
	env := &testEnv{
		store:         st,
		users:         memory.NewUserRepository(st),
		relations:     memory.NewRelationshipRepository(st),
		conversations: memory.NewConversationRepository(st),
		content:       memory.NewContentRepository(st),
		communities:   memory.NewCommunityRepository(st),
		exchanges:     memory.NewExchangeRepository(st),
		emitter:       &fakeEmitter{},
		sched:         &fakeScheduler{},
		media:         &recordingMedia{},
		credentials:   &fakeCredentials{},
	}
	env.svc = NewService(st, env.users, env.relations, env.conversations,
		env.content, env.communities, env.exchanges, env.emitter, env.media, env.sched, env.credentials)
	return env
}

func (e *testEnv) addUser(t *testing.T, id string) {
	t.Helper()
	u := &models.User{
		ID:               id,
		Name:             "User " + id,
		Gender:           models.GenderOther,
		BirthDate:        time.Now().AddDate(-25, 0, -1),
		Country:          "FR",
		SpokenLanguage:   "fr",
		LearningLanguage: "en",
		AvatarKey:        "avatars/" + id,
		CreatedAt:        time.Now(),
	}
	require.NoError(t, e.users.CreateUser(context.Background(), u))
	require.NoError(t, e.users.UpsertMatchingProfile(context.Background(), models.MatchingProfileFor(u, time.Now())))
}

// seedPair wires two users with a friendship, a conversation with messages,
// cross-posted comments and reactions, and exchanged letters and gifts.
func (e *testEnv) seedPair(t *testing.T, a, b string) (postID primitive.ObjectID, groupID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, e.relations.CreateFriendshipPair(ctx, a, b, now))

	groupID = models.GroupIDFor(a, b)
	require.NoError(t, e.conversations.CreateMirrorPair(ctx, a, b, groupID, now))
	msg := &models.Message{GroupID: groupID, SenderID: a, Type: models.MessageTypeText, Content: "hello", CreatedAt: now}
	require.NoError(t, e.conversations.InsertMessage(ctx, msg))
	img := &models.Message{GroupID: groupID, SenderID: b, Type: models.MessageTypeImage, AttachmentKey: "msg/" + groupID, CreatedAt: now}
	require.NoError(t, e.conversations.InsertMessage(ctx, img))

	post := &models.Post{OwnerID: a, Content: "a post", CreatedAt: now}
	require.NoError(t, e.content.CreatePost(ctx, post))
	postID = post.ID
	require.NoError(t, e.content.CreateComment(ctx, &models.Comment{PostID: postID, OwnerID: b, Content: "nice", CreatedAt: now}))
	require.NoError(t, e.content.AdjustCommentsCount(ctx, postID, 1))
	require.NoError(t, e.content.CreateReaction(ctx, &models.Reaction{PostID: postID, OwnerID: b, Kind: "like", CreatedAt: now}))
	require.NoError(t, e.content.AdjustReactionsCount(ctx, postID, 1))

	letter := &models.Letter{SenderID: a, ReceiverID: b, Title: "t", Body: "b", CreatedAt: now}
	require.NoError(t, e.exchanges.CreateLetter(ctx, letter))
	require.NoError(t, e.exchanges.SetLetterScheduleHandle(ctx, letter.ID, "pending-"+groupID))
	require.NoError(t, e.exchanges.CreateGift(ctx, &models.Gift{SenderID: b, ReceiverID: a, Kind: "flower", CreatedAt: now}))
	return postID, groupID
}

func TestBlockUser(t *testing.T) {
	ctx := context.Background()

	t.Run("severs every shared structure", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "alice")
		env.addUser(t, "bob")
		postID, groupID := env.seedPair(t, "alice", "bob")

		require.NoError(t, env.svc.BlockUser(ctx, "alice", "bob"))

		ab, ba, err := env.relations.FriendshipDirections(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.False(t, ab, "friendship direction alice->bob must be gone")
		assert.False(t, ba, "friendship direction bob->alice must be gone")

		mirrors, err := env.conversations.MirrorsByGroup(ctx, groupID)
		require.NoError(t, err)
		assert.Empty(t, mirrors)
		n, err := env.conversations.DeleteMessagesByGroup(ctx, groupID)
		require.NoError(t, err)
		assert.Zero(t, n, "no messages may survive the sweep")

		post, err := env.content.GetPost(ctx, postID)
		require.NoError(t, err)
		assert.Zero(t, post.CommentsCount)
		assert.Zero(t, post.ReactionsCount)

		letters, err := env.exchanges.ListLettersReceived(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, letters)
		gifts, err := env.exchanges.ListGiftsReceived(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, gifts)

		assert.Contains(t, env.sched.cancelled, "pending-"+groupID)
		assert.Contains(t, env.media.deleted, "msg/"+groupID)

		excluded, err := env.svc.IsExcluded(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.True(t, excluded)
		excluded, err = env.svc.IsExcluded(ctx, "bob", "alice")
		require.NoError(t, err)
		assert.True(t, excluded)
	})

	t.Run("rejects self-block, double block and unknown target", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "alice")
		env.addUser(t, "bob")

		err := env.svc.BlockUser(ctx, "alice", "alice")
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

		err = env.svc.BlockUser(ctx, "alice", "ghost")
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

		require.NoError(t, env.svc.BlockUser(ctx, "alice", "bob"))
		err = env.svc.BlockUser(ctx, "alice", "bob")
		assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
	})

	t.Run("blocking is idempotent on already-severed pairs", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "alice")
		env.addUser(t, "bob")

		// No shared state at all: the sweep must still succeed.
		require.NoError(t, env.svc.BlockUser(ctx, "alice", "bob"))

		blocked, err := env.relations.BlockExists(ctx, "alice", "bob")
		require.NoError(t, err)
		assert.True(t, blocked)
	})

	t.Run("notifies the blocked user", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "alice")
		env.addUser(t, "bob")

		require.NoError(t, env.svc.BlockUser(ctx, "alice", "bob"))
		require.NotEmpty(t, env.emitter.events)
		event := env.emitter.events[len(env.emitter.events)-1]
		assert.Equal(t, models.NotificationUserBlocked, event.Kind)
		assert.Equal(t, "bob", event.Recipient)
	})
}

func TestUnblockUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "alice")
	env.addUser(t, "bob")
	env.seedPair(t, "alice", "bob")

	require.NoError(t, env.svc.BlockUser(ctx, "alice", "bob"))
	require.NoError(t, env.svc.UnblockUser(ctx, "alice", "bob"))

	// The block edge is gone but severed relations stay severed.
	excluded, err := env.svc.IsExcluded(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, excluded)
	ab, ba, err := env.relations.FriendshipDirections(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, ab)
	assert.False(t, ba)

	err = env.svc.UnblockUser(ctx, "alice", "bob")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestIsExcluded(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "alice")
	env.addUser(t, "bob")

	excluded, err := env.svc.IsExcluded(ctx, "alice", "alice")
	require.NoError(t, err)
	assert.True(t, excluded, "a user is always excluded from themselves")

	excluded, err = env.svc.IsExcluded(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, excluded)

	require.NoError(t, env.relations.CreateFriendshipPair(ctx, "alice", "bob", time.Now()))
	excluded, err = env.svc.IsExcluded(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, excluded, "friends are excluded from discovery")
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("clears every collection that references the user", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "alice")
		env.addUser(t, "bob")
		postID, groupID := env.seedPair(t, "alice", "bob")

		// Alice also owns a post bob commented on; bob owns one alice
		// reacted to.
		now := time.Now()
		bobPost := &models.Post{OwnerID: "bob", Content: "bob post", CreatedAt: now}
		require.NoError(t, env.content.CreatePost(ctx, bobPost))
		require.NoError(t, env.content.CreateReaction(ctx, &models.Reaction{PostID: bobPost.ID, OwnerID: "alice", Kind: "love", CreatedAt: now}))
		require.NoError(t, env.content.AdjustReactionsCount(ctx, bobPost.ID, 1))

		require.NoError(t, env.svc.DeleteAccount(ctx, "alice"))

		_, err := env.users.GetUserByID(ctx, "alice")
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
		_, err = env.users.GetMatchingProfile(ctx, "alice")
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

		_, err = env.content.GetPost(ctx, postID)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound), "alice's post must be deleted")

		survivor, err := env.content.GetPost(ctx, bobPost.ID)
		require.NoError(t, err)
		assert.Zero(t, survivor.ReactionsCount, "bob's counter must reflect alice's removed reaction")

		mirrors, err := env.conversations.MirrorsByGroup(ctx, groupID)
		require.NoError(t, err)
		assert.Empty(t, mirrors)

		friendIDs, err := env.relations.ListFriendIDs(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, friendIDs)

		letters, err := env.exchanges.ListLettersReceived(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, letters)

		assert.Contains(t, env.emitter.purged, "alice")
		assert.Contains(t, env.credentials.deleted, "alice")
		assert.Contains(t, env.media.deleted, "avatars/alice")
		assert.Contains(t, env.sched.cancelled, "pending-"+groupID)
	})

	t.Run("cascades owned communities and forum activity", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "alice")
		env.addUser(t, "bob")

		now := time.Now()
		commID := primitive.NewObjectID()
		discID := primitive.NewObjectID()
		env.store.SeedCommunity(models.Community{ID: commID, OwnerID: "alice", Title: "langs", CreatedAt: now})
		env.store.SeedCommunityMember(models.CommunityMember{ID: primitive.NewObjectID(), CommunityID: commID, UserID: "bob", JoinedAt: now})
		env.store.SeedDiscussion(models.Discussion{ID: discID, CommunityID: commID, OwnerID: "bob", Title: "hi", CreatedAt: now})
		env.store.SeedDiscussionReply(models.DiscussionReply{ID: primitive.NewObjectID(), DiscussionID: discID, OwnerID: "alice", Content: "hey", CreatedAt: now})

		require.NoError(t, env.svc.DeleteAccount(ctx, "alice"))

		owned, err := env.communities.OwnedCommunityIDs(ctx, "alice")
		require.NoError(t, err)
		assert.Empty(t, owned)
		discussions, err := env.communities.DiscussionIDsByCommunity(ctx, commID)
		require.NoError(t, err)
		assert.Empty(t, discussions)
	})

	t.Run("deleting an unknown account fails cleanly", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.svc.DeleteAccount(ctx, "ghost")
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})

	t.Run("a failing post lookup aborts the sweep", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "alice")
		require.NoError(t, env.content.CreatePost(ctx, &models.Post{
			OwnerID: "alice", Content: "orphaned", ImageKeys: []string{"posts/a"}, CreatedAt: time.Now(),
		}))

		svc := NewService(env.store, env.users, env.relations, env.conversations,
			&faultyContent{ContentRepository: env.content}, env.communities, env.exchanges,
			env.emitter, env.media, env.sched, env.credentials)

		err := svc.DeleteAccount(ctx, "alice")
		assert.True(t, apperrors.Is(err, apperrors.CodeInternal))
		assert.Empty(t, env.media.deleted, "no media disposal after an aborted sweep")
	})
}

// faultyContent simulates a store failure on post lookups.
type faultyContent struct {
	*memory.ContentRepository
}

func (f *faultyContent) GetPost(context.Context, primitive.ObjectID) (*models.Post, error) {
	return nil, apperrors.Internal("post lookup failed", errors.New("backend unavailable"))
}
