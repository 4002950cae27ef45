package models

import "time"

// Notification event types emitted by the engine
const (
	NotificationFriendRequest       = "friend_request"
	NotificationRequestAccepted     = "request_accepted"
	NotificationRequestRejected     = "request_rejected"
	NotificationFriendRemoved       = "friend_removed"
	NotificationUserBlocked         = "user_blocked"
	NotificationNewMessage          = "new_message"
	NotificationConversationDeleted = "conversation_deleted"
	NotificationNewLetter           = "new_letter"
	NotificationNewGift             = "new_gift"
)

// Notification represents a delivered notification row (PostgreSQL outbox)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     string    `json:"actor_id" gorm:"size:128;index"`
	RecipientID string    `json:"recipient_id" gorm:"size:128;index"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
