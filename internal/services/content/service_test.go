package content

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories/memory"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

type fakeViewer struct {
	pairs map[[2]string]bool
}

func (f *fakeViewer) exclude(a, b string) {
	if f.pairs == nil {
		f.pairs = make(map[[2]string]bool)
	}
	f.pairs[[2]string{a, b}] = true
}

func (f *fakeViewer) IsExcluded(_ context.Context, a, b string) (bool, error) {
	return f.pairs[[2]string{a, b}] || f.pairs[[2]string{b, a}], nil
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

type testEnv struct {
	content *memory.ContentRepository
	viewer  *fakeViewer
	media   *recordingMedia
	svc     *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memory.NewStore()
	env := &testEnv{
		content: memory.NewContentRepository(st),
		viewer:  &fakeViewer{},
		media:   &recordingMedia{},
	}
	env.svc = NewService(st, env.content, env.viewer, env.media)
	return env
}

func (e *testEnv) addPost(t *testing.T, ownerID, content string, imageKeys ...string) *models.Post {
	t.Helper()
	post, err := e.svc.CreatePost(context.Background(), ownerID, models.CreatePostRequest{
		Content: content, ImageKeys: imageKeys,
	})
	require.NoError(t, err)
	return post
}

func TestCreateAndGetPost(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.CreatePost(ctx, "alice", models.CreatePostRequest{Content: "   "})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	post := env.addPost(t, "alice", "hello world")

	got, err := env.svc.GetPost(ctx, post.ID.Hex(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Content)

	_, err = env.svc.GetPost(ctx, "not-hex", "bob")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	// Excluded viewers see the post as missing, not forbidden.
	env.viewer.exclude("alice", "bob")
	_, err = env.svc.GetPost(ctx, post.ID.Hex(), "bob")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	// The owner is never excluded from their own post.
	got, err = env.svc.GetPost(ctx, post.ID.Hex(), "alice")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
}

func TestComments(t *testing.T) {
	ctx := context.Background()

	t.Run("counter follows inserts and deletes", func(t *testing.T) {
		env := newTestEnv(t)
		post := env.addPost(t, "alice", "discuss")

		c1, err := env.svc.AddComment(ctx, post.ID.Hex(), "bob", models.CreateCommentRequest{Content: "first"})
		require.NoError(t, err)
		_, err = env.svc.AddComment(ctx, post.ID.Hex(), "carol", models.CreateCommentRequest{Content: "second"})
		require.NoError(t, err)

		got, err := env.content.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, got.CommentsCount)

		require.NoError(t, env.svc.DeleteComment(ctx, c1.ID.Hex(), "bob"))
		got, err = env.content.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, got.CommentsCount)
	})

	t.Run("author and post owner may delete, nobody else", func(t *testing.T) {
		env := newTestEnv(t)
		post := env.addPost(t, "alice", "discuss")

		c, err := env.svc.AddComment(ctx, post.ID.Hex(), "bob", models.CreateCommentRequest{Content: "mine"})
		require.NoError(t, err)

		err = env.svc.DeleteComment(ctx, c.ID.Hex(), "carol")
		assert.True(t, apperrors.Is(err, apperrors.CodeAuth))

		require.NoError(t, env.svc.DeleteComment(ctx, c.ID.Hex(), "alice"))

		c, err = env.svc.AddComment(ctx, post.ID.Hex(), "bob", models.CreateCommentRequest{Content: "again"})
		require.NoError(t, err)
		require.NoError(t, env.svc.DeleteComment(ctx, c.ID.Hex(), "bob"))
	})

	t.Run("excluded users cannot comment", func(t *testing.T) {
		env := newTestEnv(t)
		post := env.addPost(t, "alice", "discuss")
		env.viewer.exclude("alice", "bob")

		_, err := env.svc.AddComment(ctx, post.ID.Hex(), "bob", models.CreateCommentRequest{Content: "hi"})
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})

	t.Run("blank comments rejected", func(t *testing.T) {
		env := newTestEnv(t)
		post := env.addPost(t, "alice", "discuss")

		_, err := env.svc.AddComment(ctx, post.ID.Hex(), "bob", models.CreateCommentRequest{Content: " "})
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	})
}

func TestReactions(t *testing.T) {
	ctx := context.Background()

	t.Run("one reaction per user per post", func(t *testing.T) {
		env := newTestEnv(t)
		post := env.addPost(t, "alice", "react to this")

		_, err := env.svc.React(ctx, post.ID.Hex(), "bob", models.CreateReactionRequest{Kind: "like"})
		require.NoError(t, err)

		_, err = env.svc.React(ctx, post.ID.Hex(), "bob", models.CreateReactionRequest{Kind: "love"})
		assert.True(t, apperrors.Is(err, apperrors.CodeConflict))

		got, err := env.content.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, got.ReactionsCount, "a rejected duplicate must not bump the counter")
	})

	t.Run("removing is idempotent and clamps at zero", func(t *testing.T) {
		env := newTestEnv(t)
		post := env.addPost(t, "alice", "react to this")

		_, err := env.svc.React(ctx, post.ID.Hex(), "bob", models.CreateReactionRequest{Kind: "like"})
		require.NoError(t, err)

		require.NoError(t, env.svc.RemoveReaction(ctx, post.ID.Hex(), "bob"))
		require.NoError(t, env.svc.RemoveReaction(ctx, post.ID.Hex(), "bob"))

		got, err := env.content.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, got.ReactionsCount)
	})

	t.Run("excluded users cannot react", func(t *testing.T) {
		env := newTestEnv(t)
		post := env.addPost(t, "alice", "react to this")
		env.viewer.exclude("alice", "bob")

		_, err := env.svc.React(ctx, post.ID.Hex(), "bob", models.CreateReactionRequest{Kind: "like"})
		assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	post := env.addPost(t, "alice", "with pictures", "posts/a", "posts/b")

	_, err := env.svc.AddComment(ctx, post.ID.Hex(), "bob", models.CreateCommentRequest{Content: "nice"})
	require.NoError(t, err)
	_, err = env.svc.React(ctx, post.ID.Hex(), "bob", models.CreateReactionRequest{Kind: "like"})
	require.NoError(t, err)
	require.NoError(t, env.svc.SavePost(ctx, post.ID.Hex(), "bob"))

	err = env.svc.DeletePost(ctx, post.ID.Hex(), "bob")
	assert.True(t, apperrors.Is(err, apperrors.CodeAuth))

	require.NoError(t, env.svc.DeletePost(ctx, post.ID.Hex(), "alice"))

	_, err = env.content.GetPost(ctx, post.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.ElementsMatch(t, []string{"posts/a", "posts/b"}, env.media.deleted)
}

func TestCollections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	post := env.addPost(t, "alice", "worth keeping")

	require.NoError(t, env.svc.SavePost(ctx, post.ID.Hex(), "bob"))

	err := env.svc.SavePost(ctx, post.ID.Hex(), "bob")
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))

	require.NoError(t, env.svc.UnsavePost(ctx, post.ID.Hex(), "bob"))
	require.NoError(t, env.svc.SavePost(ctx, post.ID.Hex(), "bob"))

	err = env.svc.SavePost(ctx, "ffffffffffffffffffffffff", "bob")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}
