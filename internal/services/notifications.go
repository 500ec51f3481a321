package services

import (
	"context"
	"fmt"

	"forumcore/internal/models"
)

// NotificationService 读取和处理 NotificationPublisher 写入的站内通知
type NotificationService struct {
	base
}

func NewNotificationService(d Deps) *NotificationService {
	return &NotificationService{base: newBase(d)}
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	const op = "services.NotificationService.List"

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var items []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	const op = "services.NotificationService.UnreadCount"

	var n int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// MarkRead 只能标记自己的通知
func (s *NotificationService) MarkRead(ctx context.Context, userID string, id uint) error {
	const op = "services.NotificationService.MarkRead"

	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	const op = "services.NotificationService.MarkAllRead"

	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, userID string, id uint) error {
	const op = "services.NotificationService.Delete"

	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
