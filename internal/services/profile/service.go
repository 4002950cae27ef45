// Package profile manages user profiles and keeps the matching-profile
// projection in lockstep with them.
package profile

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/media"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/store"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/logger"
)

const minimumAge = 13

// Service manages user profiles.
type Service struct {
	txn   store.Runner
	users repositories.UserRepository
	media media.Store
	log   *logrus.Entry
}

func NewService(txn store.Runner, users repositories.UserRepository, mediaStore media.Store) *Service {
	return &Service{
		txn:   txn,
		users: users,
		media: mediaStore,
		log:   logger.Component("profile"),
	}
}

// CreateProfile registers a new user and seeds the matching projection. The
// userID is the authenticated identity, never client-supplied.
func (s *Service) CreateProfile(ctx context.Context, userID string, req models.CreateUserRequest) (*models.User, error) {
	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return nil, apperrors.Validation("invalid birth date")
	}

	now := time.Now()
	if models.Age(birthDate, now) < minimumAge {
		return nil, apperrors.Validation("users must be at least 13 years old")
	}

	user := &models.User{
		ID:               userID,
		Name:             req.Name,
		Gender:           req.Gender,
		BirthDate:        birthDate,
		Country:          req.Country,
		SpokenLanguage:   req.SpokenLanguage,
		LearningLanguage: req.LearningLanguage,
		GenderPreference: req.GenderPreference,
		AvatarKey:        req.AvatarKey,
		About:            req.About,
		CreatedAt:        now,
	}

	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.CreateUser(ctx, user); err != nil {
			return err
		}
		return s.users.UpsertMatchingProfile(ctx, models.MatchingProfileFor(user, now))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfile returns the enriched profile for a user.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
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

// UpdateProfile applies a partial profile edit. Gender and birth date are
// fixed at signup; everything else the matching projection mirrors is
// rewritten atomically with the user row.
func (s *Service) UpdateProfile(ctx context.Context, userID string, req models.UpdateUserRequest) (*models.User, error) {
	var updated *models.User
	var staleAvatarKey string

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		u, err := s.users.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}

		if req.Name != "" {
			u.Name = req.Name
		}
		if req.Country != "" {
			u.Country = req.Country
		}
		if req.SpokenLanguage != "" {
			u.SpokenLanguage = req.SpokenLanguage
		}
		if req.LearningLanguage != "" {
			u.LearningLanguage = req.LearningLanguage
		}
		if req.GenderPreference != nil {
			u.GenderPreference = *req.GenderPreference
		}
		if req.AvatarKey != "" && req.AvatarKey != u.AvatarKey {
			staleAvatarKey = u.AvatarKey
			u.AvatarKey = req.AvatarKey
		}
		if req.About != "" {
			u.About = req.About
		}

		if err := s.users.UpdateUser(ctx, u); err != nil {
			return err
		}
		if err := s.users.UpsertMatchingProfile(ctx, models.MatchingProfileFor(u, time.Now())); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	if staleAvatarKey != "" {
		if err := s.media.Delete(ctx, staleAvatarKey); err != nil {
			s.log.WithField("key", staleAvatarKey).WithError(err).Error("failed to dispose media object")
		}
	}
	return updated, nil
}

// Touch bumps the user's activity timestamp in the matching projection,
// moving them toward the front of discovery scans.
func (s *Service) Touch(ctx context.Context, userID string) error {
	return s.users.TouchMatchingProfile(ctx, userID, time.Now())
}
