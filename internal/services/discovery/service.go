// Package discovery implements privacy-aware user discovery over the
// matching-profile projection. Candidates come from an index-friendly scan
// on (age group, gender, recency); exclusion rules and optional filters are
// applied in-process so the blocked-user check never leaks into the index.
package discovery

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/media"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/logger"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/pagination"
)

const defaultPageSize = 20

// Excluder reports whether two users are hidden from each other, either by a
// block in any direction or because they are the same user.
type Excluder interface {
	IsExcluded(ctx context.Context, a, b string) (bool, error)
}

// Filters narrows a discovery scan. Empty fields are ignored.
type Filters struct {
	Country          string `json:"country,omitempty"`
	SpokenLanguage   string `json:"spoken_language,omitempty"`
	LearningLanguage string `json:"learning_language,omitempty"`
}

// Service is the discovery engine.
type Service struct {
	users    repositories.UserRepository
	excluder Excluder
	media    media.Store
	log      *logrus.Entry
}

func NewService(users repositories.UserRepository, excluder Excluder, mediaStore media.Store) *Service {
	return &Service{
		users:    users,
		excluder: excluder,
		media:    mediaStore,
		log:      logger.Component("discovery"),
	}
}

// Discover returns a page of candidate profiles for the requester, most
// recently active first. Results never cross age groups, never include the
// requester, and respect gender preferences on both sides: a candidate the
// requester's preference would admit is still dropped when the candidate's
// own preference would not admit the requester back.
func (s *Service) Discover(ctx context.Context, requesterID string, filters Filters, token string, limit int64) ([]models.ProfileResponse, string, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultPageSize
	}

	requester, err := s.users.GetUserByID(ctx, requesterID)
	if err != nil {
		return nil, "", err
	}
	ageGroup := models.AgeGroupFor(requester.BirthDate, time.Now())

	// When the requester limits matches to their own gender, push that
	// constraint into the scan. The reverse direction stays in-process.
	scanGender := ""
	if requester.GenderPreference {
		scanGender = requester.Gender
	}

	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", apperrors.Validation(err.Error())
	}

	profiles, err := s.users.ScanMatchingProfiles(ctx, ageGroup, scanGender, cursor.Before(), cursor.ID, limit)
	if err != nil {
		return nil, "", err
	}

	results := make([]models.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		if p.UserID == requesterID {
			continue
		}
		if p.GenderPreference && p.Gender != requester.Gender {
			continue
		}
		if filters.Country != "" && p.Country != filters.Country {
			continue
		}
		if filters.SpokenLanguage != "" && p.SpokenLanguage != filters.SpokenLanguage {
			continue
		}
		if filters.LearningLanguage != "" && p.LearningLanguage != filters.LearningLanguage {
			continue
		}

		excluded, err := s.excluder.IsExcluded(ctx, requesterID, p.UserID)
		if err != nil {
			return nil, "", err
		}
		if excluded {
			continue
		}

		resp, err := s.buildProfile(ctx, p.UserID)
		if err != nil {
			// The user row can lag behind the projection during an
			// account-deletion sweep; skip rather than fail the page.
			if apperrors.Is(err, apperrors.CodeNotFound) {
				continue
			}
			return nil, "", err
		}
		results = append(results, *resp)
	}

	// The next cursor tracks the raw scan position, not the filtered
	// output, so a heavily filtered page still makes forward progress.
	var next string
	if int64(len(profiles)) == limit {
		last := profiles[len(profiles)-1]
		next, err = pagination.Encode(pagination.From(last.LastActivity, last.UserID))
		if err != nil {
			return nil, "", err
		}
	}
	return results, next, nil
}

func (s *Service) buildProfile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	avatarURL := ""
	if u.AvatarKey != "" {
		avatarURL, err = s.media.Resolve(ctx, u.AvatarKey)
		if err != nil {
			s.log.WithField("key", u.AvatarKey).WithError(err).Warn("failed to resolve avatar URL")
			avatarURL = ""
		}
	}

	return &models.ProfileResponse{
		ID:               u.ID,
		Name:             u.Name,
		Gender:           u.Gender,
		Age:              models.Age(u.BirthDate, time.Now()),
		Country:          u.Country,
		SpokenLanguage:   u.SpokenLanguage,
		LearningLanguage: u.LearningLanguage,
		AvatarURL:        avatarURL,
		About:            u.About,
	}, nil
}
