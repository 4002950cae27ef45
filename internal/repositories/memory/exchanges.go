package memory

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

// ExchangeRepository is the in-memory ExchangeRepository.
type ExchangeRepository struct {
	store *Store
}

func NewExchangeRepository(store *Store) *ExchangeRepository {
	return &ExchangeRepository{store: store}
}

func (r *ExchangeRepository) CreateLetter(ctx context.Context, letter *models.Letter) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	letter.ID = primitive.NewObjectID()
	r.store.letters[letter.ID] = *letter
	return nil
}

func (r *ExchangeRepository) GetLetter(ctx context.Context, id primitive.ObjectID) (*models.Letter, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	l, ok := r.store.letters[id]
	if !ok {
		return nil, apperrors.NotFound("letter not found")
	}
	return &l, nil
}

func (r *ExchangeRepository) SetLetterScheduleHandle(ctx context.Context, id primitive.ObjectID, handle string) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	if l, ok := r.store.letters[id]; ok {
		l.ScheduleHandle = handle
		r.store.letters[id] = l
	}
	return nil
}

func (r *ExchangeRepository) CreateGift(ctx context.Context, gift *models.Gift) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	gift.ID = primitive.NewObjectID()
	r.store.gifts[gift.ID] = *gift
	return nil
}

func (r *ExchangeRepository) ListLettersReceived(ctx context.Context, receiverID string) ([]models.Letter, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var out []models.Letter
	for _, l := range r.store.letters {
		if l.ReceiverID == receiverID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ExchangeRepository) ListGiftsReceived(ctx context.Context, receiverID string) ([]models.Gift, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var out []models.Gift
	for _, g := range r.store.gifts {
		if g.ReceiverID == receiverID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ExchangeRepository) DeleteLettersBetween(ctx context.Context, a, b string) ([]string, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var handles []string
	for id, l := range r.store.letters {
		if samePair(l.SenderID, l.ReceiverID, a, b) {
			if l.ScheduleHandle != "" {
				handles = append(handles, l.ScheduleHandle)
			}
			delete(r.store.letters, id)
		}
	}
	return handles, nil
}

func (r *ExchangeRepository) DeleteGiftsBetween(ctx context.Context, a, b string) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for id, g := range r.store.gifts {
		if samePair(g.SenderID, g.ReceiverID, a, b) {
			delete(r.store.gifts, id)
		}
	}
	return nil
}

func (r *ExchangeRepository) DeleteLettersByUser(ctx context.Context, userID string) ([]string, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var handles []string
	for id, l := range r.store.letters {
		if l.SenderID == userID || l.ReceiverID == userID {
			if l.ScheduleHandle != "" {
				handles = append(handles, l.ScheduleHandle)
			}
			delete(r.store.letters, id)
		}
	}
	return handles, nil
}

func (r *ExchangeRepository) DeleteGiftsByUser(ctx context.Context, userID string) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	for id, g := range r.store.gifts {
		if g.SenderID == userID || g.ReceiverID == userID {
			delete(r.store.gifts, id)
		}
	}
	return nil
}
