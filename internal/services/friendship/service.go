// Package friendship implements the friend-request and friendship
// lifecycle: NONE → PENDING → {FRIENDS, NONE}, FRIENDS → NONE.
package friendship

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/media"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/notify"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/scheduler"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/store"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/logger"
)

// PairCleaner severs the shared state of a user pair. Implemented by the
// blocking engine so friend removal reuses the same cascade primitives.
// Both methods must run inside the caller's transaction.
type PairCleaner interface {
	PurgeConversationTx(ctx context.Context, a, b string) (attachmentKeys []string, err error)
	PurgeExchangesTx(ctx context.Context, a, b string) (scheduleHandles []string, err error)
}

// Service is the friendship lifecycle manager.
type Service struct {
	txn       store.Runner
	users     repositories.UserRepository
	relations repositories.RelationshipRepository
	cleaner   PairCleaner
	emitter   notify.Emitter
	media     media.Store
	sched     scheduler.Scheduler
	log       *logrus.Entry
}

func NewService(
	txn store.Runner,
	users repositories.UserRepository,
	relations repositories.RelationshipRepository,
	cleaner PairCleaner,
	emitter notify.Emitter,
	mediaStore media.Store,
	sched scheduler.Scheduler,
) *Service {
	return &Service{
		txn:       txn,
		users:     users,
		relations: relations,
		cleaner:   cleaner,
		emitter:   emitter,
		media:     mediaStore,
		sched:     sched,
		log:       logger.Component("friendship"),
	}
}

// SendRequest creates a pending friend request from sender to receiver.
func (s *Service) SendRequest(ctx context.Context, senderID, receiverID, message string) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, apperrors.Validation("cannot send a friend request to yourself")
	}
	message = strings.TrimSpace(message)
	if n := utf8.RuneCountInString(message); n < 1 || n > 300 {
		return nil, apperrors.Validation("request message must be 1-300 characters")
	}

	request := &models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Message:    message,
		CreatedAt:  time.Now(),
	}

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		sender, err := s.users.GetUserByID(ctx, senderID)
		if err != nil {
			return err
		}
		receiver, err := s.users.GetUserByID(ctx, receiverID)
		if err != nil {
			return err
		}

		blocked, err := s.relations.BlockedEitherDirection(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if blocked {
			return apperrors.Auth("cannot send a friend request to this user")
		}

		ab, ba, err := s.relations.FriendshipDirections(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if ab || ba {
			return apperrors.State("users are already friends")
		}

		pending, err := s.relations.PendingRequestBetween(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if pending != nil {
			return apperrors.Conflict("a pending friend request already exists between these users")
		}

		if !compatible(sender, receiver) {
			return apperrors.Validation("users are not compatible")
		}

		return s.relations.CreateRequest(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, receiverID, senderID, models.NotificationFriendRequest)
	return request, nil
}

// AcceptRequest converts a pending request into a symmetric friendship
// pair. The actor must be the receiver. If the pair became friends in the
// meantime (a racing accept), the stale request is deleted and the call
// succeeds without inserting a duplicate pair.
func (s *Service) AcceptRequest(ctx context.Context, requestID, actorID string) error {
	id, err := parseRequestID(requestID)
	if err != nil {
		return err
	}

	var senderID string
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		request, err := s.relations.GetRequestByID(ctx, id)
		if err != nil {
			return err
		}
		if request.ReceiverID != actorID {
			return apperrors.Auth("only the receiver can accept this request")
		}
		senderID = request.SenderID

		ab, ba, err := s.relations.FriendshipDirections(ctx, request.SenderID, request.ReceiverID)
		if err != nil {
			return err
		}
		if ab || ba {
			// already friends, only the stale request remains
			return s.relations.DeleteRequest(ctx, id)
		}

		if err := s.relations.CreateFriendshipPair(ctx, request.SenderID, request.ReceiverID, time.Now()); err != nil {
			return err
		}
		return s.relations.DeleteRequest(ctx, id)
	})
	if err != nil {
		return err
	}

	s.emitter.Emit(ctx, senderID, actorID, models.NotificationRequestAccepted)
	return nil
}

// RejectRequest deletes a pending request. The actor must be the receiver.
func (s *Service) RejectRequest(ctx context.Context, requestID, actorID string) error {
	id, err := parseRequestID(requestID)
	if err != nil {
		return err
	}

	var senderID string
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		request, err := s.relations.GetRequestByID(ctx, id)
		if err != nil {
			return err
		}
		if request.ReceiverID != actorID {
			return apperrors.Auth("only the receiver can reject this request")
		}
		senderID = request.SenderID
		return s.relations.DeleteRequest(ctx, id)
	})
	if err != nil {
		return err
	}

	s.emitter.Emit(ctx, senderID, actorID, models.NotificationRequestRejected)
	return nil
}

// CancelRequest withdraws a request the actor sent. No notification.
func (s *Service) CancelRequest(ctx context.Context, requestID, actorID string) error {
	id, err := parseRequestID(requestID)
	if err != nil {
		return err
	}

	return s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		request, err := s.relations.GetRequestByID(ctx, id)
		if err != nil {
			return err
		}
		if request.SenderID != actorID {
			return apperrors.Auth("only the sender can cancel this request")
		}
		return s.relations.DeleteRequest(ctx, id)
	})
}

// RemoveFriend deletes the symmetric friendship pair and cascades to the
// conversation pair with its messages and to letters and gifts exchanged in
// either direction. Both directions of the pair must exist.
func (s *Service) RemoveFriend(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return apperrors.Validation("cannot unfriend yourself")
	}

	var attachmentKeys []string
	var scheduleHandles []string

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		ab, ba, err := s.relations.FriendshipDirections(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if !ab || !ba {
			return apperrors.State("users are not friends")
		}

		if err := s.relations.DeleteFriendshipPair(ctx, actorID, targetID); err != nil {
			return err
		}
		attachmentKeys, err = s.cleaner.PurgeConversationTx(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		scheduleHandles, err = s.cleaner.PurgeExchangesTx(ctx, actorID, targetID)
		return err
	})
	if err != nil {
		return err
	}

	for _, handle := range scheduleHandles {
		s.sched.Cancel(handle)
	}
	for _, key := range attachmentKeys {
		if err := s.media.Delete(ctx, key); err != nil {
			s.log.WithField("key", key).WithError(err).Error("failed to dispose media object")
		}
	}
	s.emitter.Emit(ctx, targetID, actorID, models.NotificationFriendRemoved)

	s.log.WithFields(logrus.Fields{"actor": actorID, "target": targetID}).Info("friendship removed")
	return nil
}

// ListFriends resolves the actor's friends via a live index scan.
func (s *Service) ListFriends(ctx context.Context, actorID string) ([]*models.User, error) {
	ids, err := s.relations.ListFriendIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}

	friends := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.GetUserByID(ctx, id)
		if err != nil {
			if apperrors.Is(err, apperrors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		friends = append(friends, user)
	}
	return friends, nil
}

// ListPendingRequests returns the requests waiting on the actor.
func (s *Service) ListPendingRequests(ctx context.Context, actorID string) ([]models.FriendRequest, error) {
	return s.relations.ListPendingRequests(ctx, actorID)
}

// compatible is the mutual-privacy predicate: both users must be in the
// same age group, and any gender-preference restriction must hold from both
// sides.
func compatible(a, b *models.User) bool {
	now := time.Now()
	if models.AgeGroupFor(a.BirthDate, now) != models.AgeGroupFor(b.BirthDate, now) {
		return false
	}
	if a.GenderPreference && a.Gender != b.Gender {
		return false
	}
	if b.GenderPreference && b.Gender != a.Gender {
		return false
	}
	return true
}

func parseRequestID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation("invalid request ID")
	}
	return oid, nil
}
