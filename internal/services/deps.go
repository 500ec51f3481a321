package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"forumcore/internal/events"
	"forumcore/internal/metrics"
	"forumcore/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps 各服务共用的依赖，Log/Publisher/Now 为空时使用默认值
type Deps struct {
	DB        *gorm.DB
	Log       *zap.Logger
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

type base struct {
	db      *gorm.DB
	log     *zap.Logger
	pub     events.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
}

func newBase(d Deps) base {
	b := base{db: d.DB, log: d.Log, pub: d.Publisher, metrics: d.Metrics, now: d.Now}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.pub == nil {
		b.pub = events.Nop{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b
}

// publish 只在事务提交后调用；失败记日志，不影响已提交的结果
func (b base) publish(ctx context.Context, e events.Event) {
	if err := b.pub.Publish(ctx, e); err != nil {
		b.log.Warn("Failed to publish event", zap.String("event", e.Name()), zap.Error(err))
		b.metrics.PublishFailed(e.Name())
	}
}

func validateRef(ref models.ContentRef) error {
	if !ref.Type.Valid() {
		return ErrInvalidContentType
	}
	if ref.ID == "" {
		return ErrInvalidVoteTarget
	}
	return nil
}

// contentOwner 返回内容作者，内容不存在返回 ErrNotFound
func contentOwner(tx *gorm.DB, ref models.ContentRef) (string, error) {
	var model any
	switch ref.Type {
	case models.ContentTypePost:
		model = &models.Post{}
	case models.ContentTypeComment:
		model = &models.Comment{}
	default:
		return "", ErrInvalidContentType
	}

	var owners []string
	if err := tx.Model(model).Where("id = ?", ref.ID).Limit(1).Pluck("user_id", &owners).Error; err != nil {
		return "", fmt.Errorf("lookup owner: %w", err)
	}
	if len(owners) == 0 {
		return "", ErrNotFound
	}
	return owners[0], nil
}

// loadAuthors 批量加载作者摘要，不存在的用户只保留 ID
func loadAuthors(tx *gorm.DB, ids []string) (map[string]models.Author, error) {
	out := make(map[string]models.Author, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []models.User
	if err := tx.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	var accounts []models.KarmaAccount
	if err := tx.Where("user_id IN ?", ids).Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("load karma: %w", err)
	}

	for _, id := range ids {
		out[id] = models.Author{ID: id}
	}
	for _, u := range users {
		a := out[u.ID]
		a.Username = u.Username
		a.AvatarURL = u.AvatarURL
		out[u.ID] = a
	}
	for _, k := range accounts {
		a := out[k.UserID]
		a.Karma = k.TotalKarma
		out[k.UserID] = a
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
