package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories"
)

func newTestEmitter(t *testing.T) (*OutboxEmitter, repositories.NotificationRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))
	t.Cleanup(func() {
		db.Exec("DELETE FROM notifications")
	})

	repo := repositories.NewPostgresNotificationRepository(db)
	return NewOutboxEmitter(repo, nil), repo
}

func TestEmitPersistsNotification(t *testing.T) {
	ctx := context.Background()
	emitter, repo := newTestEmitter(t)

	emitter.Emit(ctx, "bob", "alice", models.NotificationFriendRequest)

	rows, total, err := repo.GetByRecipientID("bob", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationFriendRequest, rows[0].Type)
	assert.Equal(t, "alice", rows[0].ActorID)
	assert.False(t, rows[0].IsRead)
}

func TestEmitSuppressesSelfAndEmptyRecipient(t *testing.T) {
	ctx := context.Background()
	emitter, repo := newTestEmitter(t)

	emitter.Emit(ctx, "alice", "alice", models.NotificationNewMessage)
	emitter.Emit(ctx, "", "alice", models.NotificationNewMessage)

	_, total, err := repo.GetByRecipientID("alice", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUnreadCountAndMarkAsRead(t *testing.T) {
	ctx := context.Background()
	emitter, repo := newTestEmitter(t)

	emitter.Emit(ctx, "bob", "alice", models.NotificationNewLetter)
	emitter.Emit(ctx, "bob", "carol", models.NotificationNewGift)

	count, err := repo.GetUnreadCount("bob")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	rows, _, err := repo.GetByRecipientID("bob", 1, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, repo.MarkAsRead(rows[0].ID))
	count, err = repo.GetUnreadCount("bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, repo.MarkAllAsRead("bob"))
	count, err = repo.GetUnreadCount("bob")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPurgeRecipient(t *testing.T) {
	ctx := context.Background()
	emitter, repo := newTestEmitter(t)

	emitter.Emit(ctx, "bob", "alice", models.NotificationNewMessage)
	emitter.Emit(ctx, "carol", "alice", models.NotificationNewMessage)

	require.NoError(t, emitter.PurgeRecipient(ctx, "bob"))

	_, total, err := repo.GetByRecipientID("bob", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = repo.GetByRecipientID("carol", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
