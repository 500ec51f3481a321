package models

import (
	"time"

	"gorm.io/gorm"
)

// Report 举报，同一举报人对同一内容只能举报一次（唯一索引保证）
type Report struct {
	ID          string       `gorm:"primaryKey;size:36" json:"id"`
	ReporterID  string       `gorm:"size:36;not null;uniqueIndex:idx_report_reporter_content,priority:1" json:"reporter_id"`
	ContentID   string       `gorm:"size:36;not null;uniqueIndex:idx_report_reporter_content,priority:2;index" json:"content_id"`
	ContentType ContentType  `gorm:"size:20;not null;uniqueIndex:idx_report_reporter_content,priority:3" json:"content_type"`
	Reason      ReportReason `gorm:"size:30;not null" json:"reason"`
	Description *string      `gorm:"size:1000" json:"description,omitempty"`
	Status      ReportStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (r *Report) BeforeCreate(*gorm.DB) error {
	newID(&r.ID)
	return nil
}
