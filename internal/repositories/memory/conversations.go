package memory

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

// ConversationRepository is the in-memory ConversationRepository. Mirrors
// are keyed by (ownerID, groupID).
type ConversationRepository struct {
	store *Store
}

func NewConversationRepository(store *Store) *ConversationRepository {
	return &ConversationRepository{store: store}
}

func (r *ConversationRepository) GetMirror(ctx context.Context, ownerID, groupID string) (*models.Conversation, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	m, ok := r.store.mirrors[[2]string{ownerID, groupID}]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *ConversationRepository) MirrorsByGroup(ctx context.Context, groupID string) ([]models.Conversation, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var out []models.Conversation
	for key, m := range r.store.mirrors {
		if key[1] == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *ConversationRepository) CreateMirrorPair(ctx context.Context, a, b, groupID string, at time.Time) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	if _, ok := r.store.mirrors[[2]string{a, groupID}]; ok {
		return apperrors.Conflict("conversation already exists")
	}
	if _, ok := r.store.mirrors[[2]string{b, groupID}]; ok {
		return apperrors.Conflict("conversation already exists")
	}
	r.store.mirrors[[2]string{a, groupID}] = models.Conversation{
		ID: primitive.NewObjectID(), OwnerID: a, OtherID: b, GroupID: groupID, LastMessageTime: at, CreatedAt: at,
	}
	r.store.mirrors[[2]string{b, groupID}] = models.Conversation{
		ID: primitive.NewObjectID(), OwnerID: b, OtherID: a, GroupID: groupID, LastMessageTime: at, CreatedAt: at,
	}
	return nil
}

func (r *ConversationRepository) DeleteMirrorPair(ctx context.Context, groupID string) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for key := range r.store.mirrors {
		if key[1] == groupID {
			delete(r.store.mirrors, key)
		}
	}
	return nil
}

func (r *ConversationRepository) AdvanceLastMessage(ctx context.Context, groupID, senderID string, messageID primitive.ObjectID, at time.Time) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for key, m := range r.store.mirrors {
		if key[1] != groupID {
			continue
		}
		id := messageID
		m.LastMessageID = &id
		m.LastMessageTime = at
		m.Unread = m.OwnerID != senderID
		r.store.mirrors[key] = m
	}
	return nil
}

func (r *ConversationRepository) PatchLastMessage(ctx context.Context, groupID string, messageID *primitive.ObjectID, at time.Time) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for key, m := range r.store.mirrors {
		if key[1] != groupID {
			continue
		}
		if messageID == nil {
			m.LastMessageID = nil
		} else {
			id := *messageID
			m.LastMessageID = &id
		}
		m.LastMessageTime = at
		r.store.mirrors[key] = m
	}
	return nil
}

func (r *ConversationRepository) SetUnread(ctx context.Context, ownerID, groupID string, unread bool) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	key := [2]string{ownerID, groupID}
	if m, ok := r.store.mirrors[key]; ok {
		m.Unread = unread
		r.store.mirrors[key] = m
	}
	return nil
}

func (r *ConversationRepository) ListMirrors(ctx context.Context, ownerID string, before time.Time, beforeID string, limit int64) ([]models.Conversation, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var rows []models.Conversation
	for key, m := range r.store.mirrors {
		if key[0] != ownerID {
			continue
		}
		if !before.IsZero() {
			// Cursors carry millisecond precision, so compare at that
			// precision or the ID tie-break never engages.
			at := m.LastMessageTime.Truncate(time.Millisecond)
			if at.After(before) || at.Equal(before) && m.GroupID <= beforeID {
				continue
			}
		}
		rows = append(rows, m)
	}

	sort.Slice(rows, func(i, j int) bool {
		ti := rows[i].LastMessageTime.Truncate(time.Millisecond)
		tj := rows[j].LastMessageTime.Truncate(time.Millisecond)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return rows[i].GroupID < rows[j].GroupID
	})
	if int64(len(rows)) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *ConversationRepository) GroupIDsForUser(ctx context.Context, ownerID string) ([]string, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var out []string
	for key := range r.store.mirrors {
		if key[0] == ownerID {
			out = append(out, key[1])
		}
	}
	return out, nil
}

func (r *ConversationRepository) InsertMessage(ctx context.Context, msg *models.Message) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	msg.ID = primitive.NewObjectID()
	r.store.messages[msg.ID] = *msg
	return nil
}

func (r *ConversationRepository) GetMessage(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	msg, ok := r.store.messages[id]
	if !ok {
		return nil, apperrors.NotFound("message not found")
	}
	return &msg, nil
}

func (r *ConversationRepository) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	delete(r.store.messages, id)
	return nil
}

func (r *ConversationRepository) LatestMessage(ctx context.Context, groupID string) (*models.Message, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var latest *models.Message
	for _, msg := range r.store.messages {
		if msg.GroupID != groupID {
			continue
		}
		m := msg
		if latest == nil || m.CreatedAt.After(latest.CreatedAt) ||
			m.CreatedAt.Equal(latest.CreatedAt) && m.ID.Hex() > latest.ID.Hex() {
			latest = &m
		}
	}
	return latest, nil
}

func (r *ConversationRepository) ListMessages(ctx context.Context, groupID string, before time.Time, beforeID string, limit int64) ([]models.Message, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var rows []models.Message
	for _, msg := range r.store.messages {
		if msg.GroupID != groupID {
			continue
		}
		if !before.IsZero() {
			at := msg.CreatedAt.Truncate(time.Millisecond)
			if at.After(before) || at.Equal(before) && msg.ID.Hex() >= beforeID {
				continue
			}
		}
		rows = append(rows, msg)
	}

	sort.Slice(rows, func(i, j int) bool {
		ti := rows[i].CreatedAt.Truncate(time.Millisecond)
		tj := rows[j].CreatedAt.Truncate(time.Millisecond)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return rows[i].ID.Hex() > rows[j].ID.Hex()
	})
	if int64(len(rows)) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *ConversationRepository) AttachmentKeys(ctx context.Context, groupID string) ([]string, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var keys []string
	for _, msg := range r.store.messages {
		if msg.GroupID == groupID && msg.AttachmentKey != "" {
			keys = append(keys, msg.AttachmentKey)
		}
	}
	return keys, nil
}

func (r *ConversationRepository) DeleteMessagesByGroup(ctx context.Context, groupID string) (int64, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var n int64
	for id, msg := range r.store.messages {
		if msg.GroupID == groupID {
			delete(r.store.messages, id)
			n++
		}
	}
	return n, nil
}
