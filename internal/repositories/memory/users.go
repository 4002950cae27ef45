package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
)

// UserRepository is the in-memory UserRepository.
type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	if _, ok := r.store.users[user.ID]; ok {
		return apperrors.Conflict("user already exists")
	}
	r.store.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return &u, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	if _, ok := r.store.users[user.ID]; !ok {
		return apperrors.NotFound("user not found")
	}
	r.store.users[user.ID] = *user
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	delete(r.store.users, id)
	return nil
}

func (r *UserRepository) UpsertMatchingProfile(ctx context.Context, profile *models.MatchingProfile) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	r.store.matching[profile.UserID] = *profile
	return nil
}

func (r *UserRepository) GetMatchingProfile(ctx context.Context, userID string) (*models.MatchingProfile, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	p, ok := r.store.matching[userID]
	if !ok {
		return nil, apperrors.NotFound("matching profile not found")
	}
	return &p, nil
}

func (r *UserRepository) TouchMatchingProfile(ctx context.Context, userID string, at time.Time) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	p, ok := r.store.matching[userID]
	if !ok {
		return nil
	}
	p.LastActivity = at
	r.store.matching[userID] = p
	return nil
}

func (r *UserRepository) DeleteMatchingProfile(ctx context.Context, userID string) error {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	delete(r.store.matching, userID)
	return nil
}

func (r *UserRepository) ScanMatchingProfiles(ctx context.Context, ageGroup, gender string, before time.Time, beforeID string, limit int64) ([]models.MatchingProfile, error) {
	_, unlock := r.store.enter(ctx)
	defer unlock()

	var rows []models.MatchingProfile
	for _, p := range r.store.matching {
		if p.AgeGroup != ageGroup {
			continue
		}
		if gender != "" && p.Gender != gender {
			continue
		}
		if !before.IsZero() {
			// Cursors carry millisecond precision, so compare at that
			// precision or the ID tie-break never engages.
			at := p.LastActivity.Truncate(time.Millisecond)
			if at.After(before) || at.Equal(before) && p.UserID <= beforeID {
				continue
			}
		}
		rows = append(rows, p)
	}

	sort.Slice(rows, func(i, j int) bool {
		ti := rows[i].LastActivity.Truncate(time.Millisecond)
		tj := rows[j].LastActivity.Truncate(time.Millisecond)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return rows[i].UserID < rows[j].UserID
	})
	if int64(len(rows)) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
