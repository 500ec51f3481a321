package models

import (
	"time"

	"gorm.io/gorm"
)

// Vote 用户对内容的投票，每个 (content_id, content_type, user_id) 只能有一条
type Vote struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	ContentID   string      `gorm:"size:36;not null;uniqueIndex:idx_vote_content_user,priority:1" json:"content_id"`
	ContentType ContentType `gorm:"size:20;not null;uniqueIndex:idx_vote_content_user,priority:2" json:"content_type"`
	UserID      string      `gorm:"size:36;not null;uniqueIndex:idx_vote_content_user,priority:3;index" json:"user_id"`
	VoteType    VoteType    `gorm:"size:10;not null" json:"vote_type"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (v *Vote) BeforeCreate(*gorm.DB) error {
	newID(&v.ID)
	return nil
}

// VoteCount 投票统计，Score = Upvotes - Downvotes
type VoteCount struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Score     int `json:"score"`
}

// CountVotes 从投票明细统计赞踩数
func CountVotes(votes []Vote) VoteCount {
	var vc VoteCount
	for _, v := range votes {
		switch v.VoteType {
		case VoteUp:
			vc.Upvotes++
		case VoteDown:
			vc.Downvotes++
		}
	}
	vc.Score = vc.Upvotes - vc.Downvotes
	return vc
}
