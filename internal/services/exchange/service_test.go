package exchange

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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
}

func (f *fakeEmitter) Emit(_ context.Context, recipientID, actorID, eventType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Recipient: recipientID, Actor: actorID, Kind: eventType})
}

func (f *fakeEmitter) PurgeRecipient(context.Context, string) error { return nil }

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []scheduler.Payload
	cancelled []string
}

func (f *fakeScheduler) Schedule(_ time.Time, p scheduler.Payload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, p)
	return uuid.NewString(), nil
}

func (f *fakeScheduler) Cancel(handle string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, handle)
}

type testEnv struct {
	users     *memory.UserRepository
	relations *memory.RelationshipRepository
	exchanges *memory.ExchangeRepository
	emitter   *fakeEmitter
	sched     *fakeScheduler
	svc       *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memory.NewStore()
	env := &testEnv{
		users:     memory.NewUserRepository(st),
		relations: memory.NewRelationshipRepository(st),
		exchanges: memory.NewExchangeRepository(st),
		emitter:   &fakeEmitter{},
		sched:     &fakeScheduler{},
	}
	env.svc = NewService(st, env.users, env.relations, env.exchanges, env.emitter, env.sched)
	return env
}

func (e *testEnv) addUser(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, e.users.CreateUser(context.Background(), &models.User{
		ID: id, Name: id, Gender: models.GenderOther,
		BirthDate: time.Now().AddDate(-25, 0, 0), CreatedAt: time.Now(),
	}))
}

func (e *testEnv) befriend(t *testing.T, a, b string) {
	t.Helper()
	e.addUser(t, a)
	e.addUser(t, b)
	require.NoError(t, e.relations.CreateFriendshipPair(context.Background(), a, b, time.Now()))
}

func TestSendLetter(t *testing.T) {
	ctx := context.Background()

	t.Run("immediate letters notify the receiver", func(t *testing.T) {
		env := newTestEnv(t)
		env.befriend(t, "alice", "bob")

		letter, err := env.svc.SendLetter(ctx, "alice", models.SendLetterRequest{
			ReceiverID: "bob", Title: "greetings", Body: "dear bob",
		})
		require.NoError(t, err)
		assert.Nil(t, letter.DeliverAt)

		require.Len(t, env.emitter.events, 1)
		assert.Equal(t, recordedEvent{Recipient: "bob", Actor: "alice", Kind: models.NotificationNewLetter}, env.emitter.events[0])
		assert.Empty(t, env.sched.scheduled)
	})

	t.Run("future letters schedule instead of notifying", func(t *testing.T) {
		env := newTestEnv(t)
		env.befriend(t, "alice", "bob")

		deliverAt := time.Now().Add(24 * time.Hour)
		letter, err := env.svc.SendLetter(ctx, "alice", models.SendLetterRequest{
			ReceiverID: "bob", Title: "later", Body: "open tomorrow",
			DeliverAt: deliverAt.Format(time.RFC3339),
		})
		require.NoError(t, err)
		require.NotNil(t, letter.DeliverAt)
		assert.NotEmpty(t, letter.ScheduleHandle)
		assert.Empty(t, env.emitter.events)

		require.Len(t, env.sched.scheduled, 1)
		assert.Equal(t, PayloadKindLetter, env.sched.scheduled[0].Kind)
		assert.Equal(t, letter.ID.Hex(), env.sched.scheduled[0].ID)

		stored, err := env.exchanges.GetLetter(ctx, letter.ID)
		require.NoError(t, err)
		assert.Equal(t, letter.ScheduleHandle, stored.ScheduleHandle)
	})

	t.Run("past delivery times degrade to immediate", func(t *testing.T) {
		env := newTestEnv(t)
		env.befriend(t, "alice", "bob")

		letter, err := env.svc.SendLetter(ctx, "alice", models.SendLetterRequest{
			ReceiverID: "bob", Title: "late", Body: "already due",
			DeliverAt: time.Now().Add(-time.Hour).Format(time.RFC3339),
		})
		require.NoError(t, err)
		assert.Nil(t, letter.DeliverAt)
		require.Len(t, env.emitter.events, 1)
	})

	t.Run("rejects non-friends, blocks and self", func(t *testing.T) {
		env := newTestEnv(t)
		env.addUser(t, "alice")
		env.addUser(t, "bob")

		req := models.SendLetterRequest{ReceiverID: "bob", Title: "t", Body: "b"}

		_, err := env.svc.SendLetter(ctx, "alice", req)
		assert.True(t, apperrors.Is(err, apperrors.CodeState))

		req.ReceiverID = "alice"
		_, err = env.svc.SendLetter(ctx, "alice", req)
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

		req.ReceiverID = "nobody"
		_, err = env.svc.SendLetter(ctx, "alice", req)
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

		env.befriend(t, "carol", "dave")
		require.NoError(t, env.relations.CreateBlock(ctx, &models.BlockedUser{
			BlockerID: "dave", BlockedID: "carol", CreatedAt: time.Now(),
		}))
		req.ReceiverID = "dave"
		_, err = env.svc.SendLetter(ctx, "carol", req)
		assert.True(t, apperrors.Is(err, apperrors.CodeAuth))

		_, err = env.svc.SendLetter(ctx, "alice", models.SendLetterRequest{
			ReceiverID: "bob", Title: "t", Body: "b", DeliverAt: "tomorrow",
		})
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	})
}

func TestDeliverLetter(t *testing.T) {
	ctx := context.Background()

	t.Run("fires the receiver notification and clears the handle", func(t *testing.T) {
		env := newTestEnv(t)
		env.befriend(t, "alice", "bob")

		letter, err := env.svc.SendLetter(ctx, "alice", models.SendLetterRequest{
			ReceiverID: "bob", Title: "later", Body: "open tomorrow",
			DeliverAt: time.Now().Add(time.Hour).Format(time.RFC3339),
		})
		require.NoError(t, err)
		require.Empty(t, env.emitter.events)

		env.svc.DeliverLetter(ctx, letter.ID.Hex())

		require.Len(t, env.emitter.events, 1)
		assert.Equal(t, recordedEvent{Recipient: "bob", Actor: "alice", Kind: models.NotificationNewLetter}, env.emitter.events[0])

		stored, err := env.exchanges.GetLetter(ctx, letter.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.ScheduleHandle)
	})

	t.Run("tolerates letters swept since scheduling", func(t *testing.T) {
		env := newTestEnv(t)
		env.befriend(t, "alice", "bob")

		letter, err := env.svc.SendLetter(ctx, "alice", models.SendLetterRequest{
			ReceiverID: "bob", Title: "later", Body: "open tomorrow",
			DeliverAt: time.Now().Add(time.Hour).Format(time.RFC3339),
		})
		require.NoError(t, err)
		_, err = env.exchanges.DeleteLettersBetween(ctx, "alice", "bob")
		require.NoError(t, err)

		env.svc.DeliverLetter(ctx, letter.ID.Hex())
		assert.Empty(t, env.emitter.events)

		env.svc.DeliverLetter(ctx, "not-an-object-id")
		assert.Empty(t, env.emitter.events)
	})
}

func TestListLetters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.befriend(t, "alice", "bob")

	_, err := env.svc.SendLetter(ctx, "alice", models.SendLetterRequest{
		ReceiverID: "bob", Title: "now", Body: "read me",
	})
	require.NoError(t, err)
	_, err = env.svc.SendLetter(ctx, "alice", models.SendLetterRequest{
		ReceiverID: "bob", Title: "later", Body: "not yet",
		DeliverAt: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	letters, err := env.svc.ListLetters(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, letters, 1, "undelivered letters stay hidden")
	assert.Equal(t, "now", letters[0].Title)

	letters, err = env.svc.ListLetters(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, letters, "letters list by receiver, not sender")
}

func TestSendGift(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.befriend(t, "alice", "bob")

	gift, err := env.svc.SendGift(ctx, "alice", models.SendGiftRequest{
		ReceiverID: "bob", Kind: "postcard", Message: "from berlin",
	})
	require.NoError(t, err)
	assert.Equal(t, "postcard", gift.Kind)

	require.Len(t, env.emitter.events, 1)
	assert.Equal(t, recordedEvent{Recipient: "bob", Actor: "alice", Kind: models.NotificationNewGift}, env.emitter.events[0])

	gifts, err := env.svc.ListGifts(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, gifts, 1)
	assert.Equal(t, gift.ID, gifts[0].ID)

	_, err = env.svc.SendGift(ctx, "bob", models.SendGiftRequest{ReceiverID: "bob", Kind: "postcard"})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}
