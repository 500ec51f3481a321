package services

import (
	"context"
	"fmt"
	"strings"

	"forumcore/internal/events"
	"forumcore/internal/models"

	"gorm.io/gorm"
)

type AwardService struct {
	base
	karma            *KarmaService
	disableSelfKarma bool
}

func NewAwardService(d Deps, karma *KarmaService, disableSelfKarma bool) *AwardService {
	return &AwardService{base: newBase(d), karma: karma, disableSelfKarma: disableSelfKarma}
}

type GiveAwardInput struct {
	Ref         models.ContentRef
	GiverID     string
	AwardType   models.AwardType
	Message     *string
	IsAnonymous bool
}

// Give 打赏。高级打赏只检查赠送者当前总积分，不冻结也不扣除
func (s *AwardService) Give(ctx context.Context, in GiveAwardInput) (*models.Award, error) {
	const op = "services.AwardService.Give"

	if err := validateRef(in.Ref); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !in.AwardType.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidAwardType)
	}
	if in.GiverID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	if in.AwardType.IsPremium() {
		bal, err := s.karma.GetBalance(ctx, in.GiverID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if bal.TotalKarma < in.AwardType.PremiumThreshold() {
			return nil, fmt.Errorf("%s: %w", op, ErrInsufficientKarma)
		}
	}

	award := models.Award{
		ContentID:   in.Ref.ID,
		ContentType: in.Ref.Type,
		GiverID:     in.GiverID,
		AwardType:   in.AwardType,
		Message:     trimOptional(in.Message),
		IsAnonymous: in.IsAnonymous,
		CreatedAt:   s.now(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := contentOwner(tx, in.Ref)
		if err != nil {
			return err
		}
		if err := tx.Create(&award).Error; err != nil {
			return fmt.Errorf("create award: %w", err)
		}
		if s.disableSelfKarma && owner == in.GiverID {
			return nil
		}
		return s.karma.ApplyDelta(ctx, tx, owner, models.BucketAward, in.AwardType.KarmaValue(), ActionAwardReceived)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.AwardGiven(string(in.AwardType))
	s.publish(ctx, events.AwardGiven{
		ContentRef:  in.Ref,
		AwardType:   in.AwardType,
		GiverID:     in.GiverID,
		IsAnonymous: in.IsAnonymous,
		Timestamp:   award.CreatedAt,
	})
	return &award, nil
}

// Aggregate 内容收到的打赏按类型汇总
func (s *AwardService) Aggregate(ctx context.Context, ref models.ContentRef) ([]models.AwardSummary, error) {
	const op = "services.AwardService.Aggregate"

	if err := validateRef(ref); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var awards []models.Award
	err := s.db.WithContext(ctx).
		Where("content_id = ? AND content_type = ?", ref.ID, ref.Type).
		Order("created_at").Order("id").
		Find(&awards).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return AggregateAwards(awards), nil
}

// UserAwardTypes 用户给该内容打赏过的类型，去重
func (s *AwardService) UserAwardTypes(ctx context.Context, ref models.ContentRef, userID string) ([]models.AwardType, error) {
	const op = "services.AwardService.UserAwardTypes"

	types := []models.AwardType{}
	err := s.db.WithContext(ctx).Model(&models.Award{}).
		Distinct("award_type").
		Where("content_id = ? AND content_type = ? AND giver_id = ?", ref.ID, ref.Type, userID).
		Order("award_type").
		Pluck("award_type", &types).Error
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return types, nil
}

// AggregateAwards 按首次出现的顺序分组
// 任意一条匿名则整组匿名；留言用 "; " 拼接，不丢弃任何一条
func AggregateAwards(awards []models.Award) []models.AwardSummary {
	out := []models.AwardSummary{}
	index := make(map[models.AwardType]int)
	messages := make(map[models.AwardType][]string)

	for _, a := range awards {
		i, ok := index[a.AwardType]
		if !ok {
			i = len(out)
			index[a.AwardType] = i
			out = append(out, models.AwardSummary{Type: a.AwardType})
		}
		out[i].Count++
		out[i].IsAnonymous = out[i].IsAnonymous || a.IsAnonymous
		if a.Message != nil && strings.TrimSpace(*a.Message) != "" {
			messages[a.AwardType] = append(messages[a.AwardType], *a.Message)
		}
	}

	for i := range out {
		out[i].TotalValue = out[i].Count * out[i].Type.KarmaValue()
		if msgs := messages[out[i].Type]; len(msgs) > 0 {
			joined := strings.Join(msgs, "; ")
			out[i].Message = &joined
		}
	}
	return out
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
