// Package blocking implements the blocking and relational-cleanup engine.
// Every cascade step tolerates already-cleaned state: blocks, friend
// removal and account deletion share the same primitives and may re-run
// over each other's leftovers.
package blocking

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/media"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/notify"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/scheduler"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/store"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/logger"
)

// CredentialDeleter removes a user's login credentials. Satisfied by the
// Firebase auth client.
type CredentialDeleter interface {
	DeleteUser(ctx context.Context, uid string) error
}

// Service is the blocking and cleanup engine.
type Service struct {
	txn           store.Runner
	users         repositories.UserRepository
	relations     repositories.RelationshipRepository
	conversations repositories.ConversationRepository
	content       repositories.ContentRepository
	communities   repositories.CommunityRepository
	exchanges     repositories.ExchangeRepository
	emitter       notify.Emitter
	media         media.Store
	sched         scheduler.Scheduler
	credentials   CredentialDeleter
	log           *logrus.Entry
}

func NewService(
	txn store.Runner,
	users repositories.UserRepository,
	relations repositories.RelationshipRepository,
	conversations repositories.ConversationRepository,
	content repositories.ContentRepository,
	communities repositories.CommunityRepository,
	exchanges repositories.ExchangeRepository,
	emitter notify.Emitter,
	mediaStore media.Store,
	sched scheduler.Scheduler,
	credentials CredentialDeleter,
) *Service {
	return &Service{
		txn:           txn,
		users:         users,
		relations:     relations,
		conversations: conversations,
		content:       content,
		communities:   communities,
		exchanges:     exchanges,
		emitter:       emitter,
		media:         mediaStore,
		sched:         sched,
		credentials:   credentials,
		log:           logger.Component("blocking"),
	}
}

// BlockUser inserts the block edge and severs every relation between the
// two users: friendship pair, pending requests, comments and reactions on
// each other's posts (with counter adjustment), the conversation pair with
// its messages, and letters and gifts in both directions.
func (s *Service) BlockUser(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return apperrors.Validation("cannot block yourself")
	}

	var attachmentKeys []string
	var scheduleHandles []string

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
			return err
		}

		exists, err := s.relations.BlockExists(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Conflict("user is already blocked")
		}

		if err := s.relations.CreateBlock(ctx, &models.BlockedUser{
			BlockerID: actorID,
			BlockedID: targetID,
			CreatedAt: time.Now(),
		}); err != nil {
			return err
		}

		if err := s.relations.DeleteFriendshipPair(ctx, actorID, targetID); err != nil {
			return err
		}
		if err := s.relations.DeleteRequestsBetween(ctx, actorID, targetID); err != nil {
			return err
		}
		if err := s.purgeInteractionsTx(ctx, actorID, targetID); err != nil {
			return err
		}

		attachmentKeys, err = s.PurgeConversationTx(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		scheduleHandles, err = s.PurgeExchangesTx(ctx, actorID, targetID)
		return err
	})
	if err != nil {
		return err
	}

	for _, handle := range scheduleHandles {
		s.sched.Cancel(handle)
	}
	s.DisposeAttachments(ctx, attachmentKeys)
	s.emitter.Emit(ctx, targetID, actorID, models.NotificationUserBlocked)

	s.log.WithFields(logrus.Fields{"actor": actorID, "target": targetID}).Info("user blocked")
	return nil
}

// UnblockUser removes the block edge. Severed relations stay severed.
func (s *Service) UnblockUser(ctx context.Context, actorID, targetID string) error {
	deleted, err := s.relations.DeleteBlock(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NotFound("user is not blocked")
	}
	return nil
}

// IsExcluded reports whether a and b may not see each other in discovery:
// same user, a block edge in either direction, or an existing friendship
// (friends are excluded from discovery, not from messaging).
func (s *Service) IsExcluded(ctx context.Context, a, b string) (bool, error) {
	if a == b {
		return true, nil
	}
	blocked, err := s.relations.BlockedEitherDirection(ctx, a, b)
	if err != nil {
		return false, err
	}
	if blocked {
		return true, nil
	}
	ab, ba, err := s.relations.FriendshipDirections(ctx, a, b)
	if err != nil {
		return false, err
	}
	return ab || ba, nil
}

// ListBlocked returns the users the actor has blocked.
func (s *Service) ListBlocked(ctx context.Context, actorID string) ([]models.BlockedUser, error) {
	return s.relations.ListBlocked(ctx, actorID)
}

// PurgeConversationTx deletes the conversation pair and its messages for
// the unordered user pair. Must run inside a transaction. Returns the
// attachment keys of deleted messages for disposal after commit.
func (s *Service) PurgeConversationTx(ctx context.Context, a, b string) ([]string, error) {
	groupID := models.GroupIDFor(a, b)
	keys, err := s.conversations.AttachmentKeys(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := s.conversations.DeleteMessagesByGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.conversations.DeleteMirrorPair(ctx, groupID); err != nil {
		return nil, err
	}
	return keys, nil
}

// PurgeExchangesTx deletes letters and gifts exchanged between the pair in
// both directions. Must run inside a transaction. Returns pending letter
// schedule handles for cancellation after commit.
func (s *Service) PurgeExchangesTx(ctx context.Context, a, b string) ([]string, error) {
	handles, err := s.exchanges.DeleteLettersBetween(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if err := s.exchanges.DeleteGiftsBetween(ctx, a, b); err != nil {
		return nil, err
	}
	return handles, nil
}

// purgeInteractionsTx removes each side's comments and reactions on the
// other's posts, decrementing every affected post's counter by exactly the
// number of rows removed for that post.
func (s *Service) purgeInteractionsTx(ctx context.Context, a, b string) error {
	for _, pair := range [][2]string{{a, b}, {b, a}} {
		author, owner := pair[0], pair[1]

		commentCounts, err := s.content.DeleteCommentsByAuthorOnOwner(ctx, author, owner)
		if err != nil {
			return err
		}
		for postID, n := range commentCounts {
			if err := s.content.AdjustCommentsCount(ctx, postID, -n); err != nil {
				return err
			}
		}

		reactionCounts, err := s.content.DeleteReactionsByAuthorOnOwner(ctx, author, owner)
		if err != nil {
			return err
		}
		for postID, n := range reactionCounts {
			if err := s.content.AdjustReactionsCount(ctx, postID, -n); err != nil {
				return err
			}
		}
	}
	return nil
}

// DisposeAttachments forwards media keys to the media store for disposal.
// Failures are logged, not raised: they represent orphaned storage handled
// as a background concern.
func (s *Service) DisposeAttachments(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.media.Delete(ctx, key); err != nil {
			s.log.WithField("key", key).WithError(err).Error("failed to dispose media object")
		}
	}
}
