package models

import (
	"time"
)

// SavedContent 收藏 - 用户收藏帖子或评论
type SavedContent struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      string      `gorm:"size:36;not null;uniqueIndex:idx_saved_user_content,priority:1" json:"user_id"`
	ContentType ContentType `gorm:"size:20;not null;uniqueIndex:idx_saved_user_content,priority:2" json:"content_type"`
	ContentID   string      `gorm:"size:36;not null;uniqueIndex:idx_saved_user_content,priority:3" json:"content_id"`
	CreatedAt   time.Time   `json:"created_at"`
}
