package models

import (
	"time"

	"gorm.io/gorm"
)

// Award 打赏记录，只追加；同一用户可以对同一内容多次打赏
type Award struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	ContentID   string      `gorm:"size:36;not null;index:idx_award_content,priority:1" json:"content_id"`
	ContentType ContentType `gorm:"size:20;not null;index:idx_award_content,priority:2" json:"content_type"`
	GiverID     string      `gorm:"size:36;not null;index" json:"giver_id"`
	AwardType   AwardType   `gorm:"size:20;not null" json:"award_type"`
	Message     *string     `gorm:"type:text" json:"message,omitempty"`
	IsAnonymous bool        `gorm:"not null;default:false" json:"is_anonymous"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (a *Award) BeforeCreate(*gorm.DB) error {
	newID(&a.ID)
	return nil
}

// AwardSummary 同类打赏的聚合
type AwardSummary struct {
	Type        AwardType `json:"type"`
	Count       int       `json:"count"`
	IsAnonymous bool      `json:"is_anonymous"`
	Message     *string   `json:"message,omitempty"`
	TotalValue  int       `json:"total_value"`
}
