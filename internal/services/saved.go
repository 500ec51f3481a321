package services

import (
	"context"
	"fmt"

	"forumcore/internal/models"

	"gorm.io/gorm/clause"
)

// SavedService 收藏集合，增删都是幂等的
type SavedService struct {
	base
}

func NewSavedService(d Deps) *SavedService {
	return &SavedService{base: newBase(d)}
}

func (s *SavedService) Save(ctx context.Context, ref models.ContentRef, userID string) error {
	const op = "services.SavedService.Save"

	if err := validateRef(ref); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if userID == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	db := s.db.WithContext(ctx)
	if _, err := contentOwner(db, ref); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	saved := models.SavedContent{
		UserID:      userID,
		ContentType: ref.Type,
		ContentID:   ref.ID,
		CreatedAt:   s.now(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_type"}, {Name: "content_id"}},
		DoNothing: true,
	}).Create(&saved).Error
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Unsave 未收藏时什么也不做
func (s *SavedService) Unsave(ctx context.Context, ref models.ContentRef, userID string) error {
	const op = "services.SavedService.Unsave"

	if err := validateRef(ref); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND content_type = ? AND content_id = ?", userID, ref.Type, ref.ID).
		Delete(&models.SavedContent{}).Error
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *SavedService) IsSaved(ctx context.Context, ref models.ContentRef, userID string) (bool, error) {
	const op = "services.SavedService.IsSaved"

	var n int64
	err := s.db.WithContext(ctx).Model(&models.SavedContent{}).
		Where("user_id = ? AND content_type = ? AND content_id = ?", userID, ref.Type, ref.ID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// List 用户的收藏，最新在前
func (s *SavedService) List(ctx context.Context, userID string, limit int) ([]models.SavedContent, error) {
	const op = "services.SavedService.List"

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var items []models.SavedContent
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
