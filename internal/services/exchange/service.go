// Package exchange implements letters and gifts between friends. Letters may
// carry a future delivery time; those are persisted immediately but the
// receiver is only notified when the scheduler fires.
package exchange

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/notify"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/scheduler"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/store"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/logger"
)

// PayloadKindLetter marks scheduler payloads carrying a delayed letter.
const PayloadKindLetter = "letter"

// Service is the letter and gift exchange engine.
type Service struct {
	txn       store.Runner
	users     repositories.UserRepository
	relations repositories.RelationshipRepository
	exchanges repositories.ExchangeRepository
	emitter   notify.Emitter
	sched     scheduler.Scheduler
	log       *logrus.Entry
}

func NewService(
	txn store.Runner,
	users repositories.UserRepository,
	relations repositories.RelationshipRepository,
	exchanges repositories.ExchangeRepository,
	emitter notify.Emitter,
	sched scheduler.Scheduler,
) *Service {
	return &Service{
		txn:       txn,
		users:     users,
		relations: relations,
		exchanges: exchanges,
		emitter:   emitter,
		sched:     sched,
		log:       logger.Component("exchange"),
	}
}

// SendLetter delivers a letter to a friend. A future DeliverAt holds the
// receiver notification until the scheduler fires; the letter row itself is
// written immediately so cleanup sweeps always see it.
func (s *Service) SendLetter(ctx context.Context, senderID string, req models.SendLetterRequest) (*models.Letter, error) {
	if senderID == req.ReceiverID {
		return nil, apperrors.Validation("cannot send a letter to yourself")
	}

	letter := &models.Letter{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Title:      req.Title,
		Body:       req.Body,
		CreatedAt:  time.Now(),
	}

	if req.DeliverAt != "" {
		at, err := time.Parse(time.RFC3339, req.DeliverAt)
		if err != nil {
			return nil, apperrors.Validation("invalid delivery time")
		}
		if at.After(time.Now()) {
			letter.DeliverAt = &at
		}
	}

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.requireFriends(ctx, senderID, req.ReceiverID); err != nil {
			return err
		}
		return s.exchanges.CreateLetter(ctx, letter)
	})
	if err != nil {
		return nil, err
	}

	if letter.DeliverAt == nil {
		s.emitter.Emit(ctx, letter.ReceiverID, senderID, models.NotificationNewLetter)
		return letter, nil
	}

	handle, err := s.sched.Schedule(*letter.DeliverAt, scheduler.Payload{
		Kind: PayloadKindLetter,
		ID:   letter.ID.Hex(),
	})
	if err != nil {
		// The letter stays delivered-but-silent; better than losing it.
		s.log.WithField("letter_id", letter.ID.Hex()).WithError(err).Error("failed to schedule letter delivery")
		return letter, nil
	}
	letter.ScheduleHandle = handle
	if err := s.exchanges.SetLetterScheduleHandle(ctx, letter.ID, handle); err != nil {
		s.sched.Cancel(handle)
		s.log.WithField("letter_id", letter.ID.Hex()).WithError(err).Error("failed to record schedule handle")
	}
	return letter, nil
}

// DeliverLetter is the scheduler callback for a fired letter timer. The
// letter may have been swept by a block or account deletion since it was
// scheduled; that is not an error.
func (s *Service) DeliverLetter(ctx context.Context, letterID string) {
	id, err := primitive.ObjectIDFromHex(letterID)
	if err != nil {
		s.log.WithField("letter_id", letterID).Error("malformed letter ID in scheduler payload")
		return
	}

	letter, err := s.exchanges.GetLetter(ctx, id)
	if err != nil {
		if !apperrors.Is(err, apperrors.CodeNotFound) {
			s.log.WithField("letter_id", letterID).WithError(err).Error("failed to load letter for delivery")
		}
		return
	}

	if err := s.exchanges.SetLetterScheduleHandle(ctx, id, ""); err != nil {
		s.log.WithField("letter_id", letterID).WithError(err).Warn("failed to clear schedule handle")
	}
	s.emitter.Emit(ctx, letter.ReceiverID, letter.SenderID, models.NotificationNewLetter)
}

// SendGift delivers a gift to a friend.
func (s *Service) SendGift(ctx context.Context, senderID string, req models.SendGiftRequest) (*models.Gift, error) {
	if senderID == req.ReceiverID {
		return nil, apperrors.Validation("cannot send a gift to yourself")
	}

	gift := &models.Gift{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Kind:       req.Kind,
		Message:    req.Message,
		CreatedAt:  time.Now(),
	}

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.requireFriends(ctx, senderID, req.ReceiverID); err != nil {
			return err
		}
		return s.exchanges.CreateGift(ctx, gift)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, gift.ReceiverID, senderID, models.NotificationNewGift)
	return gift, nil
}

// ListLetters returns letters received by the user, excluding letters whose
// delivery time has not arrived yet.
func (s *Service) ListLetters(ctx context.Context, userID string) ([]models.Letter, error) {
	letters, err := s.exchanges.ListLettersReceived(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	visible := make([]models.Letter, 0, len(letters))
	for _, l := range letters {
		if l.DeliverAt != nil && l.DeliverAt.After(now) {
			continue
		}
		visible = append(visible, l)
	}
	return visible, nil
}

// ListGifts returns gifts received by the user.
func (s *Service) ListGifts(ctx context.Context, userID string) ([]models.Gift, error) {
	return s.exchanges.ListGiftsReceived(ctx, userID)
}

func (s *Service) requireFriends(ctx context.Context, a, b string) error {
	if _, err := s.users.GetUserByID(ctx, b); err != nil {
		return err
	}
	blocked, err := s.relations.BlockedEitherDirection(ctx, a, b)
	if err != nil {
		return err
	}
	if blocked {
		return apperrors.Auth("cannot exchange with this user")
	}
	ab, ba, err := s.relations.FriendshipDirections(ctx, a, b)
	if err != nil {
		return err
	}
	if !ab || !ba {
		return apperrors.State("users must be friends to exchange")
	}
	return nil
}
