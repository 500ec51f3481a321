package services

import (
	"context"
	"fmt"

	"forumcore/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 积分动作常量
const (
	ActionVoteReceived  = "获得投票"
	ActionVoteChanged   = "投票变更"
	ActionVoteCleared   = "投票撤销"
	ActionAwardReceived = "获得打赏"
	ActionCommentCreate = "发布评论"
)

// 积分值常量
const (
	PointsCommentCreate = 1
)

// KarmaService 积分账户。余额只通过 ApplyDelta 的原子增量修改
type KarmaService struct {
	base
}

func NewKarmaService(d Deps) *KarmaService {
	return &KarmaService{base: newBase(d)}
}

// ApplyDelta 原子地给用户某一类积分和总积分加上 delta，并记录明细
// tx 为空时自己开事务；账户不存在时由 upsert 创建
func (s *KarmaService) ApplyDelta(ctx context.Context, tx *gorm.DB, userID string, bucket models.KarmaBucket, delta int, action string) error {
	const op = "services.KarmaService.ApplyDelta"

	if delta == 0 {
		return nil
	}
	col := bucket.Column()
	if col == "" || userID == "" {
		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if tx == nil {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.apply(tx, userID, bucket, delta, action)
		})
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	if err := s.apply(tx.WithContext(ctx), userID, bucket, delta, action); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *KarmaService) apply(tx *gorm.DB, userID string, bucket models.KarmaBucket, delta int, action string) error {
	col := bucket.Column()
	now := s.now()

	acct := models.KarmaAccount{UserID: userID, TotalKarma: delta, LastUpdated: now}
	switch bucket {
	case models.BucketPost:
		acct.PostKarma = delta
	case models.BucketComment:
		acct.CommentKarma = delta
	case models.BucketAward:
		acct.AwardKarma = delta
	}

	// 单条 INSERT ... ON CONFLICT DO UPDATE，并发调用不会丢失更新
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			col:            gorm.Expr("user_karma."+col+" + ?", delta),
			"total_karma":  gorm.Expr("user_karma.total_karma + ?", delta),
			"last_updated": now,
		}),
	}).Create(&acct).Error
	if err != nil {
		return fmt.Errorf("upsert karma: %w", err)
	}

	entry := models.KarmaLog{
		UserID:    userID,
		Bucket:    bucket,
		Amount:    delta,
		Action:    action,
		CreatedAt: now,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("create karma log: %w", err)
	}

	s.log.Debug("Karma applied",
		zap.String("user_id", userID),
		zap.String("bucket", string(bucket)),
		zap.Int("delta", delta),
		zap.String("action", action))
	return nil
}

// GetBalance 账户不存在时返回全零
func (s *KarmaService) GetBalance(ctx context.Context, userID string) (models.KarmaAccount, error) {
	const op = "services.KarmaService.GetBalance"

	var acct models.KarmaAccount
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&acct).Error
	if isNotFound(err) {
		return models.KarmaAccount{UserID: userID}, nil
	}
	if err != nil {
		return models.KarmaAccount{}, fmt.Errorf("%s: %w", op, err)
	}
	return acct, nil
}

// Logs 积分明细，最新在前
func (s *KarmaService) Logs(ctx context.Context, userID string, limit int) ([]models.KarmaLog, error) {
	const op = "services.KarmaService.Logs"

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var logs []models.KarmaLog
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return logs, nil
}
