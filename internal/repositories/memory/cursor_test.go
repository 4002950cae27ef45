package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/pagination"
)

// Cursor tokens carry millisecond timestamps while rows carry nanosecond
// ones. Rows landing inside the page boundary's millisecond must resolve
// through the ID tie-break, exactly as they do against the real store.

func TestListMessagesSameMillisecondBoundary(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	repo := NewConversationRepository(st)

	base := time.Now().Truncate(time.Millisecond)
	var msgs []*models.Message
	for i := 0; i < 3; i++ {
		m := &models.Message{
			GroupID:   "g",
			SenderID:  "alice",
			Type:      models.MessageTypeText,
			Content:   "m",
			CreatedAt: base.Add(time.Duration(i) * 100 * time.Microsecond),
		}
		require.NoError(t, repo.InsertMessage(ctx, m))
		msgs = append(msgs, m)
	}

	page1, err := repo.ListMessages(ctx, "g", time.Time{}, "", 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, msgs[2].ID, page1[0].ID)
	assert.Equal(t, msgs[1].ID, page1[1].ID)

	cursor := pagination.From(page1[1].CreatedAt, page1[1].ID.Hex())
	page2, err := repo.ListMessages(ctx, "g", cursor.Before(), cursor.ID, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, msgs[0].ID, page2[0].ID)
}

func TestListMirrorsSameMillisecondBoundary(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	repo := NewConversationRepository(st)

	base := time.Now().Truncate(time.Millisecond)
	for i, groupID := range []string{"g1", "g2", "g3"} {
		at := base.Add(time.Duration(i) * 100 * time.Microsecond)
		require.NoError(t, repo.CreateMirrorPair(ctx, "alice", "friend-"+groupID, groupID, at))
	}

	page1, err := repo.ListMirrors(ctx, "alice", time.Time{}, "", 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "g1", page1[0].GroupID)
	assert.Equal(t, "g2", page1[1].GroupID)

	cursor := pagination.From(page1[1].LastMessageTime, page1[1].GroupID)
	page2, err := repo.ListMirrors(ctx, "alice", cursor.Before(), cursor.ID, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "g3", page2[0].GroupID)
}

func TestScanMatchingProfilesSameMillisecondBoundary(t *testing.T) {
	ctx := context.Background()
	st := NewStore()
	repo := NewUserRepository(st)

	base := time.Now().Truncate(time.Millisecond)
	for i, userID := range []string{"u1", "u2", "u3"} {
		require.NoError(t, repo.UpsertMatchingProfile(ctx, &models.MatchingProfile{
			UserID:       userID,
			AgeGroup:     models.AgeGroupAdult,
			Gender:       models.GenderOther,
			LastActivity: base.Add(time.Duration(i) * 100 * time.Microsecond),
		}))
	}

	page1, err := repo.ScanMatchingProfiles(ctx, models.AgeGroupAdult, "", time.Time{}, "", 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.Equal(t, "u1", page1[0].UserID)
	assert.Equal(t, "u2", page1[1].UserID)

	cursor := pagination.From(page1[1].LastActivity, page1[1].UserID)
	page2, err := repo.ScanMatchingProfiles(ctx, models.AgeGroupAdult, "", cursor.Before(), cursor.ID, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "u3", page2[0].UserID)
}
