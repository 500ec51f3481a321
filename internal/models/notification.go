package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeCommentPost  NotificationType = "comment_post"
	NotificationTypeReplyComment NotificationType = "reply_comment"
	NotificationTypeAward        NotificationType = "award"
)

type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	UserID      string           `gorm:"size:36;not null;index" json:"user_id"` // Receiver
	ActorID     *string          `gorm:"size:36;index" json:"actor_id"`         // Sender，匿名打赏时为空
	Type        NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	ContentID   string           `gorm:"size:36" json:"content_id"`
	ContentType ContentType      `gorm:"size:20" json:"content_type"`
	Reason      string           `gorm:"type:text" json:"reason"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time        `json:"created_at"`
}
