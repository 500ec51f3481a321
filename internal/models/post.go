package models

import (
	"time"

	"gorm.io/gorm"
)

type Post struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	HotScore  float64   `gorm:"not null;default:0;index" json:"hot_score"` // 由 RankingService 维护
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	newID(&p.ID)
	return nil
}
