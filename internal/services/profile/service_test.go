package profile

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories/memory"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

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

type testEnv struct {
	users *memory.UserRepository
	media *recordingMedia
	svc   *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memory.NewStore()
	env := &testEnv{
		users: memory.NewUserRepository(st),
		media: &recordingMedia{},
	}
	env.svc = NewService(st, env.users, env.media)
	return env
}

func signupRequest(age int) models.CreateUserRequest {
	birth := time.Now().AddDate(-age, 0, -1)
	return models.CreateUserRequest{
		Name:             "Alice",
		Gender:           models.GenderFemale,
		BirthDate:        birth.Format("2006-01-02"),
		Country:          "DE",
		SpokenLanguage:   "de",
		LearningLanguage: "en",
		AvatarKey:        "avatars/alice",
		About:            "hello",
	}
}

func TestCreateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the user and seeds the matching row", func(t *testing.T) {
		env := newTestEnv(t)

		user, err := env.svc.CreateProfile(ctx, "alice", signupRequest(25))
		require.NoError(t, err)
		assert.Equal(t, "alice", user.ID)

		mp, err := env.users.GetMatchingProfile(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, models.AgeGroupAdult, mp.AgeGroup)
		assert.Equal(t, models.GenderFemale, mp.Gender)
		assert.Equal(t, "DE", mp.Country)
		assert.False(t, mp.LastActivity.IsZero())
	})

	t.Run("rejects users under thirteen", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.CreateProfile(ctx, "kid", signupRequest(12))
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

		_, err = env.users.GetUserByID(ctx, "kid")
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})

	t.Run("rejects malformed birth dates", func(t *testing.T) {
		env := newTestEnv(t)

		req := signupRequest(25)
		req.BirthDate = "25-12-1999"
		_, err := env.svc.CreateProfile(ctx, "alice", req)
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	})

	t.Run("rejects duplicate signups", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.CreateProfile(ctx, "alice", signupRequest(25))
		require.NoError(t, err)
		_, err = env.svc.CreateProfile(ctx, "alice", signupRequest(25))
		assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
	})

	t.Run("fourteen year olds land in the teen group", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.svc.CreateProfile(ctx, "timmy", signupRequest(14))
		require.NoError(t, err)

		mp, err := env.users.GetMatchingProfile(ctx, "timmy")
		require.NoError(t, err)
		assert.Equal(t, models.AgeGroupTeen, mp.AgeGroup)
	})
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.svc.CreateProfile(ctx, "alice", signupRequest(25))
	require.NoError(t, err)

	resp, err := env.svc.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.ID)
	assert.Equal(t, 25, resp.Age)
	assert.Equal(t, "https://cdn.example.com/avatars/alice", resp.AvatarURL)

	_, err = env.svc.GetProfile(ctx, "nobody")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("rewrites the matching row alongside the user", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.CreateProfile(ctx, "alice", signupRequest(25))
		require.NoError(t, err)

		pref := true
		updated, err := env.svc.UpdateProfile(ctx, "alice", models.UpdateUserRequest{
			Country:          "FR",
			LearningLanguage: "fr",
			GenderPreference: &pref,
		})
		require.NoError(t, err)
		assert.Equal(t, "FR", updated.Country)
		assert.Equal(t, "fr", updated.LearningLanguage)
		assert.True(t, updated.GenderPreference)
		assert.Equal(t, "Alice", updated.Name, "untouched fields survive")

		mp, err := env.users.GetMatchingProfile(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "FR", mp.Country)
		assert.Equal(t, "fr", mp.LearningLanguage)
		assert.True(t, mp.GenderPreference)
	})

	t.Run("disposes the replaced avatar", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.CreateProfile(ctx, "alice", signupRequest(25))
		require.NoError(t, err)

		_, err = env.svc.UpdateProfile(ctx, "alice", models.UpdateUserRequest{AvatarKey: "avatars/alice-v2"})
		require.NoError(t, err)
		assert.Equal(t, []string{"avatars/alice"}, env.media.deleted)

		// Re-submitting the current key is a no-op, not a self-delete.
		_, err = env.svc.UpdateProfile(ctx, "alice", models.UpdateUserRequest{AvatarKey: "avatars/alice-v2"})
		require.NoError(t, err)
		assert.Len(t, env.media.deleted, 1)
	})

	t.Run("unknown user", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.svc.UpdateProfile(ctx, "nobody", models.UpdateUserRequest{Name: "anyone"})
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})
}

func TestTouch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.svc.CreateProfile(ctx, "alice", signupRequest(25))
	require.NoError(t, err)

	before, err := env.users.GetMatchingProfile(ctx, "alice")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	require.NoError(t, env.svc.Touch(ctx, "alice"))

	after, err := env.users.GetMatchingProfile(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, after.LastActivity.After(before.LastActivity))
}
