package services

import (
	"context"
	"fmt"

	"forumcore/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteService 投票。读现有票、算差值、写入在同一事务内完成
type VoteService struct {
	base
	karma            *KarmaService
	ranking          *RankingService
	disableSelfKarma bool
}

func NewVoteService(d Deps, karma *KarmaService, ranking *RankingService, disableSelfKarma bool) *VoteService {
	return &VoteService{base: newBase(d), karma: karma, ranking: ranking, disableSelfKarma: disableSelfKarma}
}

// CastVote 投票或改票
// 没有旧票：插入并给作者 ±1；旧票类型不同：原地改写并给作者 ±2；类型相同：什么也不做
func (s *VoteService) CastVote(ctx context.Context, ref models.ContentRef, userID string, voteType models.VoteType) (models.VoteCount, error) {
	const op = "services.VoteService.CastVote"

	if err := validateRef(ref); err != nil {
		return models.VoteCount{}, fmt.Errorf("%s: %w", op, err)
	}
	if !voteType.Valid() {
		return models.VoteCount{}, fmt.Errorf("%s: %w", op, ErrInvalidVoteTarget)
	}
	if userID == "" {
		return models.VoteCount{}, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := contentOwner(tx, ref)
		if err != nil {
			return err
		}

		existing, found, err := lockVote(tx, ref, userID)
		if err != nil {
			return err
		}

		delta := 0
		action := ActionVoteReceived
		if !found {
			inserted, err := insertVote(tx, ref, userID, voteType)
			if err != nil {
				return err
			}
			if inserted {
				delta = voteType.Value()
			} else {
				// 并发请求先插入了，按已有票处理
				existing, found, err = lockVote(tx, ref, userID)
				if err != nil {
					return err
				}
			}
		}

		if found && existing.VoteType != voteType {
			err := tx.Model(&models.Vote{}).
				Where("id = ?", existing.ID).
				Updates(map[string]any{"vote_type": voteType, "updated_at": s.now()}).Error
			if err != nil {
				return fmt.Errorf("update vote: %w", err)
			}
			// 撤销旧票 + 加上新票
			delta = voteType.Value() - existing.VoteType.Value()
			action = ActionVoteChanged
		}

		if delta == 0 {
			return nil
		}
		changed = true
		return s.applyOwnerKarma(ctx, tx, ref, owner, userID, delta, action)
	})
	if err != nil {
		return models.VoteCount{}, fmt.Errorf("%s: %w", op, err)
	}

	if changed {
		s.metrics.VoteCast(string(ref.Type), string(voteType))
		s.afterChange(ctx, ref)
	}

	vc, err := s.GetVoteCount(ctx, ref)
	if err != nil {
		return models.VoteCount{}, fmt.Errorf("%s: %w", op, err)
	}
	return vc, nil
}

// ClearVote 删除投票并撤销其积分，没有投票时什么也不做
func (s *VoteService) ClearVote(ctx context.Context, ref models.ContentRef, userID string) (models.VoteCount, error) {
	const op = "services.VoteService.ClearVote"

	if err := validateRef(ref); err != nil {
		return models.VoteCount{}, fmt.Errorf("%s: %w", op, err)
	}
	if userID == "" {
		return models.VoteCount{}, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := contentOwner(tx, ref)
		if err != nil {
			return err
		}

		existing, found, err := lockVote(tx, ref, userID)
		if err != nil || !found {
			return err
		}

		if err := tx.Where("id = ?", existing.ID).Delete(&models.Vote{}).Error; err != nil {
			return fmt.Errorf("delete vote: %w", err)
		}
		changed = true
		return s.applyOwnerKarma(ctx, tx, ref, owner, userID, -existing.VoteType.Value(), ActionVoteCleared)
	})
	if err != nil {
		return models.VoteCount{}, fmt.Errorf("%s: %w", op, err)
	}

	if changed {
		s.afterChange(ctx, ref)
	}

	vc, err := s.GetVoteCount(ctx, ref)
	if err != nil {
		return models.VoteCount{}, fmt.Errorf("%s: %w", op, err)
	}
	return vc, nil
}

// GetVoteCount 只读统计
func (s *VoteService) GetVoteCount(ctx context.Context, ref models.ContentRef) (models.VoteCount, error) {
	const op = "services.VoteService.GetVoteCount"

	if err := validateRef(ref); err != nil {
		return models.VoteCount{}, fmt.Errorf("%s: %w", op, err)
	}
	vc, err := countVotes(s.db.WithContext(ctx), ref)
	if err != nil {
		return models.VoteCount{}, fmt.Errorf("%s: %w", op, err)
	}
	return vc, nil
}

// UserVote 返回用户对内容的投票，没投过返回 nil
func (s *VoteService) UserVote(ctx context.Context, ref models.ContentRef, userID string) (*models.VoteType, error) {
	const op = "services.VoteService.UserVote"

	var types []models.VoteType
	err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("content_id = ? AND content_type = ? AND user_id = ?", ref.ID, ref.Type, userID).
		Limit(1).
		Pluck("vote_type", &types).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(types) == 0 {
		return nil, nil
	}
	return &types[0], nil
}

func (s *VoteService) applyOwnerKarma(ctx context.Context, tx *gorm.DB, ref models.ContentRef, owner, voter string, delta int, action string) error {
	if s.disableSelfKarma && owner == voter {
		return nil
	}
	return s.karma.ApplyDelta(ctx, tx, owner, models.BucketFor(ref.Type), delta, action)
}

// afterChange 帖子投票变化后同步刷新热度，失败只记日志
func (s *VoteService) afterChange(ctx context.Context, ref models.ContentRef) {
	if ref.Type != models.ContentTypePost || s.ranking == nil {
		return
	}
	if _, err := s.ranking.RefreshPostScore(ctx, ref.ID); err != nil {
		s.log.Warn("Failed to refresh post score", zap.String("post_id", ref.ID), zap.Error(err))
	}
}

// lockVote 读取并锁定现有投票（postgres 下为 SELECT ... FOR UPDATE）
func lockVote(tx *gorm.DB, ref models.ContentRef, userID string) (models.Vote, bool, error) {
	var v models.Vote
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("content_id = ? AND content_type = ? AND user_id = ?", ref.ID, ref.Type, userID).
		Take(&v).Error
	if isNotFound(err) {
		return models.Vote{}, false, nil
	}
	if err != nil {
		return models.Vote{}, false, fmt.Errorf("load vote: %w", err)
	}
	return v, true, nil
}

// insertVote 唯一键冲突时不插入，返回 false
func insertVote(tx *gorm.DB, ref models.ContentRef, userID string, voteType models.VoteType) (bool, error) {
	v := models.Vote{
		ContentID:   ref.ID,
		ContentType: ref.Type,
		UserID:      userID,
		VoteType:    voteType,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_id"}, {Name: "content_type"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&v)
	if res.Error != nil {
		return false, fmt.Errorf("insert vote: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
