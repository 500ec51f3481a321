package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxCommentDepth 评论最大嵌套深度，根评论为 0
const MaxCommentDepth = 10

type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	PostID    string    `gorm:"size:36;not null;index:idx_comment_post_depth,priority:1" json:"post_id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ParentID  *string   `gorm:"size:36;index" json:"parent_id"` // Nullable for top-level comments
	ThreadID  *string   `gorm:"size:36;index" json:"thread_id"` // 根评论 ID，根评论自身为空
	Depth     int       `gorm:"not null;index:idx_comment_post_depth,priority:2" json:"depth"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	newID(&c.ID)
	return nil
}

// RootID 返回评论所在讨论串的根评论 ID
func (c *Comment) RootID() string {
	if c.ThreadID != nil {
		return *c.ThreadID
	}
	return c.ID
}

// CommentThread 讨论串统计，每个根评论一条
type CommentThread struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	PostID         string    `gorm:"size:36;not null;index" json:"post_id"`
	RootCommentID  string    `gorm:"size:36;not null;uniqueIndex" json:"root_comment_id"`
	Depth          int       `gorm:"not null;default:0" json:"depth"`
	CommentCount   int       `gorm:"not null" json:"comment_count"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

func (t *CommentThread) BeforeCreate(*gorm.DB) error {
	newID(&t.ID)
	return nil
}
