package notify

import (
	"context"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"

	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/models"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/internal/repositories"
	"github.com/Bashy-Codes/worldfriends-webapp-sub000/pkg/logger"
)

// Emitter is the fire-and-forget notification collaborator. Emission
// failures are swallowed; the engine never fails an operation because a
// notification could not be delivered.
type Emitter interface {
	Emit(ctx context.Context, recipientID, actorID, eventType string)
	// PurgeRecipient removes every notification delivered to the user,
	// called by the account-deletion sweep.
	PurgeRecipient(ctx context.Context, recipientID string) error
}

// OutboxEmitter persists a notification row and best-effort pushes it over
// FCM. The push client is optional.
type OutboxEmitter struct {
	repo      repositories.NotificationRepository
	messaging *messaging.Client
	log       *logrus.Entry
}

func NewOutboxEmitter(repo repositories.NotificationRepository, client *messaging.Client) *OutboxEmitter {
	return &OutboxEmitter{
		repo:      repo,
		messaging: client,
		log:       logger.Component("notify"),
	}
}

func (e *OutboxEmitter) Emit(ctx context.Context, recipientID, actorID, eventType string) {
	// self-notifications suppressed
	if recipientID == actorID || recipientID == "" {
		return
	}

	notification := &models.Notification{
		Type:        eventType,
		ActorID:     actorID,
		RecipientID: recipientID,
		CreatedAt:   time.Now(),
	}
	if err := e.repo.CreateNotification(notification); err != nil {
		e.log.WithFields(logrus.Fields{
			"recipient": recipientID,
			"event":     eventType,
		}).WithError(err).Warn("failed to persist notification")
		return
	}

	if e.messaging == nil {
		return
	}
	_, err := e.messaging.Send(ctx, &messaging.Message{
		Topic: "user-" + recipientID,
		Data: map[string]string{
			"type":  eventType,
			"actor": actorID,
		},
	})
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"recipient": recipientID,
			"event":     eventType,
		}).WithError(err).Warn("failed to push notification")
	}
}

func (e *OutboxEmitter) PurgeRecipient(ctx context.Context, recipientID string) error {
	return e.repo.PurgeRecipient(recipientID)
}
