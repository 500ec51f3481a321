package models

import (
	"time"
)

// KarmaAccount 用户积分账户
// TotalKarma 始终等于三项之和，只通过增量更新维护，从不重新计算
type KarmaAccount struct {
	UserID       string    `gorm:"primaryKey;size:36" json:"user_id"`
	PostKarma    int       `gorm:"not null" json:"post_karma"`
	CommentKarma int       `gorm:"not null" json:"comment_karma"`
	AwardKarma   int       `gorm:"not null" json:"award_karma"`
	TotalKarma   int       `gorm:"not null" json:"total_karma"`
	LastUpdated  time.Time `json:"last_updated"`
}

func (KarmaAccount) TableName() string {
	return "user_karma"
}

// KarmaLog 积分明细
type KarmaLog struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    string      `gorm:"size:36;not null;index" json:"user_id"`
	Bucket    KarmaBucket `gorm:"size:20;not null" json:"bucket"`
	Amount    int         `gorm:"not null" json:"amount"`          // 正数为增加，负数为扣除
	Action    string      `gorm:"size:100;not null" json:"action"` // 动作描述
	CreatedAt time.Time   `json:"created_at"`
}
