package services

import (
	"context"
	"fmt"

	"forumcore/internal/db"
	"forumcore/internal/events"
	"forumcore/internal/models"
)

type ReportService struct {
	base
}

func NewReportService(d Deps) *ReportService {
	return &ReportService{base: newBase(d)}
}

type ReportInput struct {
	Ref         models.ContentRef
	ReporterID  string
	Reason      models.ReportReason
	Description *string
}

// Report 举报内容。重复举报由唯一索引拦截，不依赖先查后插
func (s *ReportService) Report(ctx context.Context, in ReportInput) (*models.Report, error) {
	const op = "services.ReportService.Report"

	if err := validateRef(in.Ref); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !in.Reason.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidReportReason)
	}
	if in.ReporterID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	gdb := s.db.WithContext(ctx)
	if _, err := contentOwner(gdb, in.Ref); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	report := models.Report{
		ReporterID:  in.ReporterID,
		ContentID:   in.Ref.ID,
		ContentType: in.Ref.Type,
		Reason:      in.Reason,
		Description: trimOptional(in.Description),
		Status:      models.ReportPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := gdb.Create(&report).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateReport)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.ReportFiled()
	s.publish(ctx, events.ContentReported{
		ContentID:   in.Ref.ID,
		ContentType: in.Ref.Type,
		Reason:      in.Reason,
		ReporterID:  in.ReporterID,
		Timestamp:   now,
	})
	return &report, nil
}
