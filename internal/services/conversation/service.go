// Package conversation implements the dual-mirror conversation index. Each
// participant owns a private mirror row keyed by (owner, lastMessageTime),
// giving an independently paginated inbox with per-user unread state. Every
// code path keeps the mirror count per group at exactly 0 or 2.
package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/media"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/notify"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/store"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/apperrors"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/logger"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/pagination"
)

const defaultPageSize = 20

// Service is the conversation index engine.
type Service struct {
	txn           store.Runner
	relations     repositories.RelationshipRepository
	conversations repositories.ConversationRepository
	emitter       notify.Emitter
	media         media.Store
	log           *logrus.Entry
}

func NewService(
	txn store.Runner,
	relations repositories.RelationshipRepository,
	conversations repositories.ConversationRepository,
	emitter notify.Emitter,
	mediaStore media.Store,
) *Service {
	return &Service{
		txn:           txn,
		relations:     relations,
		conversations: conversations,
		emitter:       emitter,
		media:         mediaStore,
		log:           logger.Component("conversation"),
	}
}

// CreateConversation starts a conversation between two friends. The group
// identifier derives from the sorted pair, so a repeated call returns the
// existing identifier instead of creating duplicate mirrors.
func (s *Service) CreateConversation(ctx context.Context, actorID, otherID string) (string, error) {
	if actorID == otherID {
		return "", apperrors.Validation("cannot start a conversation with yourself")
	}

	groupID := models.GroupIDFor(actorID, otherID)
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		ab, ba, err := s.relations.FriendshipDirections(ctx, actorID, otherID)
		if err != nil {
			return err
		}
		if !ab || !ba {
			return apperrors.State("users must be friends to start a conversation")
		}

		mirror, err := s.conversations.GetMirror(ctx, actorID, groupID)
		if err != nil {
			return err
		}
		if mirror != nil {
			return nil
		}
		return s.conversations.CreateMirrorPair(ctx, actorID, otherID, groupID, time.Now())
	})
	if err != nil {
		return "", err
	}
	return groupID, nil
}

// SendMessage inserts a message and advances both mirrors in the same
// transaction: the sender's mirror clears its unread flag, the receiver's
// sets it, and both move their last-message pointer. There is no state
// where only one mirror reflects the new message.
func (s *Service) SendMessage(ctx context.Context, groupID, senderID string, req models.SendMessageRequest) (*models.Message, error) {
	msg := &models.Message{
		GroupID:   groupID,
		SenderID:  senderID,
		Type:      req.Type,
		CreatedAt: time.Now(),
	}

	switch req.Type {
	case models.MessageTypeText:
		msg.Content = strings.TrimSpace(req.Content)
		if msg.Content == "" {
			return nil, apperrors.Validation("text messages require content")
		}
	case models.MessageTypeImage:
		if req.AttachmentKey == "" {
			return nil, apperrors.Validation("image messages require an attachment")
		}
		msg.AttachmentKey = req.AttachmentKey
	default:
		return nil, apperrors.Validation("unsupported message type")
	}

	var recipientID string
	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		mirror, err := s.conversations.GetMirror(ctx, senderID, groupID)
		if err != nil {
			return err
		}
		if mirror == nil {
			return apperrors.Auth("not a participant in this conversation")
		}
		recipientID = mirror.OtherID

		if req.ReplyTo != "" {
			replyID, err := primitive.ObjectIDFromHex(req.ReplyTo)
			if err != nil {
				return apperrors.Validation("invalid reply reference")
			}
			target, err := s.conversations.GetMessage(ctx, replyID)
			if err != nil || target.GroupID != groupID {
				return apperrors.Validation("reply must reference a message in this conversation")
			}
			msg.ReplyTo = &replyID
		}

		if err := s.conversations.InsertMessage(ctx, msg); err != nil {
			return err
		}
		return s.conversations.AdvanceLastMessage(ctx, groupID, senderID, msg.ID, msg.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, recipientID, senderID, models.NotificationNewMessage)
	return msg, nil
}

// DeleteMessage removes a message the actor sent. When the message was a
// mirror's cached last-message pointer, both mirrors are patched to the
// most recent remaining message, or to none.
func (s *Service) DeleteMessage(ctx context.Context, messageID, actorID string) error {
	id, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return apperrors.Validation("invalid message ID")
	}

	var attachmentKey string
	err = s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		msg, err := s.conversations.GetMessage(ctx, id)
		if err != nil {
			return err
		}
		if msg.SenderID != actorID {
			return apperrors.Auth("only the sender can delete this message")
		}
		attachmentKey = msg.AttachmentKey

		if err := s.conversations.DeleteMessage(ctx, id); err != nil {
			return err
		}

		mirrors, err := s.conversations.MirrorsByGroup(ctx, msg.GroupID)
		if err != nil {
			return err
		}
		stale := false
		for _, m := range mirrors {
			if m.LastMessageID != nil && *m.LastMessageID == id {
				stale = true
				break
			}
		}
		if !stale {
			return nil
		}

		latest, err := s.conversations.LatestMessage(ctx, msg.GroupID)
		if err != nil {
			return err
		}
		if latest == nil {
			at := msg.CreatedAt
			if len(mirrors) > 0 {
				at = mirrors[0].CreatedAt
			}
			return s.conversations.PatchLastMessage(ctx, msg.GroupID, nil, at)
		}
		return s.conversations.PatchLastMessage(ctx, msg.GroupID, &latest.ID, latest.CreatedAt)
	})
	if err != nil {
		return err
	}

	if attachmentKey != "" {
		if err := s.media.Delete(ctx, attachmentKey); err != nil {
			s.log.WithField("key", attachmentKey).WithError(err).Error("failed to dispose media object")
		}
	}
	return nil
}

// DeleteConversation removes every message in the group and both mirror
// rows. The actor must be a participant.
func (s *Service) DeleteConversation(ctx context.Context, groupID, actorID string) error {
	var attachmentKeys []string
	var otherID string

	err := s.txn.WithTransaction(ctx, func(ctx context.Context) error {
		mirrors, err := s.conversations.MirrorsByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if len(mirrors) == 0 {
			return apperrors.NotFound("conversation not found")
		}

		participant := false
		for _, m := range mirrors {
			if m.OwnerID == actorID {
				participant = true
				otherID = m.OtherID
			}
		}
		if !participant {
			return apperrors.Auth("not a participant in this conversation")
		}

		attachmentKeys, err = s.conversations.AttachmentKeys(ctx, groupID)
		if err != nil {
			return err
		}
		if _, err := s.conversations.DeleteMessagesByGroup(ctx, groupID); err != nil {
			return err
		}
		return s.conversations.DeleteMirrorPair(ctx, groupID)
	})
	if err != nil {
		return err
	}

	for _, key := range attachmentKeys {
		if err := s.media.Delete(ctx, key); err != nil {
			s.log.WithField("key", key).WithError(err).Error("failed to dispose media object")
		}
	}
	s.emitter.Emit(ctx, otherID, actorID, models.NotificationConversationDeleted)
	return nil
}

// MarkAsRead clears the unread flag on the actor's own mirror. The other
// participant's mirror is never touched.
func (s *Service) MarkAsRead(ctx context.Context, groupID, actorID string) error {
	mirror, err := s.conversations.GetMirror(ctx, actorID, groupID)
	if err != nil {
		return err
	}
	if mirror == nil {
		return apperrors.NotFound("conversation not found")
	}
	return s.conversations.SetUnread(ctx, actorID, groupID, false)
}

// ListConversations pages through the actor's inbox, most recent first.
func (s *Service) ListConversations(ctx context.Context, actorID, token string, limit int64) ([]models.Conversation, string, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultPageSize
	}
	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", apperrors.Validation(err.Error())
	}

	mirrors, err := s.conversations.ListMirrors(ctx, actorID, cursor.Before(), cursor.ID, limit)
	if err != nil {
		return nil, "", err
	}

	var next string
	if int64(len(mirrors)) == limit {
		last := mirrors[len(mirrors)-1]
		next, err = pagination.Encode(pagination.From(last.LastMessageTime, last.GroupID))
		if err != nil {
			return nil, "", err
		}
	}
	return mirrors, next, nil
}

// ListMessages pages through a group's messages newest first. The actor
// must be a participant.
func (s *Service) ListMessages(ctx context.Context, groupID, actorID, token string, limit int64) ([]models.Message, string, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultPageSize
	}

	mirror, err := s.conversations.GetMirror(ctx, actorID, groupID)
	if err != nil {
		return nil, "", err
	}
	if mirror == nil {
		return nil, "", apperrors.Auth("not a participant in this conversation")
	}

	cursor, err := pagination.Decode(token)
	if err != nil {
		return nil, "", apperrors.Validation(err.Error())
	}

	messages, err := s.conversations.ListMessages(ctx, groupID, cursor.Before(), cursor.ID, limit)
	if err != nil {
		return nil, "", err
	}

	var next string
	if int64(len(messages)) == limit {
		last := messages[len(messages)-1]
		next, err = pagination.Encode(pagination.From(last.CreatedAt, last.ID.Hex()))
		if err != nil {
			return nil, "", err
		}
	}
	return messages, next, nil
}
