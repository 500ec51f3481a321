package services

import (
	"context"
	"fmt"
	"time"

	"forumcore/internal/models"
	"forumcore/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RankingService 维护 posts.hot_score 并提供帖子列表排序
// 投票后同步刷新单个帖子；批量刷新由 rerank 命令触发
type RankingService struct {
	base
}

func NewRankingService(d Deps) *RankingService {
	return &RankingService{base: newBase(d)}
}

// RankedPost 帖子及其投票统计
type RankedPost struct {
	models.Post `gorm:"embedded"`
	Upvotes     int `json:"upvotes"`
	Downvotes   int `json:"downvotes"`
}

func (p RankedPost) RankVotes() models.VoteCount {
	return models.VoteCount{Upvotes: p.Upvotes, Downvotes: p.Downvotes, Score: p.Upvotes - p.Downvotes}
}

func (p RankedPost) RankCreatedAt() time.Time { return p.CreatedAt }

// RefreshPostScore 计算并保存单个帖子的热度
func (s *RankingService) RefreshPostScore(ctx context.Context, postID string) (float64, error) {
	const op = "services.RankingService.RefreshPostScore"

	db := s.db.WithContext(ctx)
	var post models.Post
	if err := db.Select("id", "created_at").Where("id = ?", postID).Take(&post).Error; err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	votes, err := countVotes(db, models.ContentRef{ID: postID, Type: models.ContentTypePost})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	score := utils.HotScore(votes, post.CreatedAt, s.now())
	if err := db.Model(&models.Post{}).Where("id = ?", postID).UpdateColumn("hot_score", score).Error; err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return score, nil
}

// RefreshRecent 刷新最近 window 内的帖子以及热度最高的 top 篇（去重），返回刷新数量
func (s *RankingService) RefreshRecent(ctx context.Context, window time.Duration, top int) (int, error) {
	const op = "services.RankingService.RefreshRecent"

	db := s.db.WithContext(ctx)
	processed := make(map[string]bool)

	var recent []string
	if err := db.Model(&models.Post{}).Where("created_at >= ?", s.now().Add(-window)).Pluck("id", &recent).Error; err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	var hottest []string
	if err := db.Model(&models.Post{}).Order("hot_score DESC").Limit(top).Pluck("id", &hottest).Error; err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, id := range append(recent, hottest...) {
		if processed[id] {
			continue
		}
		if _, err := s.RefreshPostScore(ctx, id); err != nil {
			return len(processed), fmt.Errorf("%s: %w", op, err)
		}
		processed[id] = true
	}

	s.log.Info("Post scores refreshed", zap.Int("count", len(processed)))
	return len(processed), nil
}

// ListPosts 按排序方式返回帖子，未知方式按 hot 处理
func (s *RankingService) ListPosts(ctx context.Context, mode utils.SortMode, limit int) ([]RankedPost, error) {
	const op = "services.RankingService.ListPosts"

	if limit <= 0 || limit > 100 {
		limit = 30
	}

	db := s.db.WithContext(ctx)
	votes := db.Model(&models.Vote{}).
		Select("content_id, "+
			"SUM(CASE WHEN vote_type = 'up' THEN 1 ELSE 0 END) AS up, "+
			"SUM(CASE WHEN vote_type = 'down' THEN 1 ELSE 0 END) AS down").
		Where("content_type = ?", models.ContentTypePost).
		Group("content_id")

	q := db.Table("posts").
		Select("posts.*, COALESCE(v.up, 0) AS upvotes, COALESCE(v.down, 0) AS downvotes").
		Joins("LEFT JOIN (?) AS v ON v.content_id = posts.id", votes)

	switch mode {
	case utils.SortNew:
		q = q.Order("posts.created_at DESC")
	case utils.SortTop:
		q = q.Order("(COALESCE(v.up, 0) - COALESCE(v.down, 0)) DESC").Order("posts.created_at DESC")
	case utils.SortControversial:
		q = q.Order("CASE WHEN COALESCE(v.up, 0) = 0 OR COALESCE(v.down, 0) = 0 THEN 0 " +
			"WHEN v.up < v.down THEN v.up * 1.0 / v.down " +
			"ELSE v.down * 1.0 / v.up END DESC").Order("posts.created_at DESC")
	default:
		q = q.Order("posts.hot_score DESC").Order("posts.created_at DESC")
	}

	var posts []RankedPost
	if err := q.Limit(limit).Scan(&posts).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return posts, nil
}

// countVotes 聚合某内容的赞踩数
func countVotes(tx *gorm.DB, ref models.ContentRef) (models.VoteCount, error) {
	var rows []struct {
		VoteType models.VoteType
		N        int
	}
	err := tx.Model(&models.Vote{}).
		Select("vote_type, COUNT(*) AS n").
		Where("content_id = ? AND content_type = ?", ref.ID, ref.Type).
		Group("vote_type").
		Scan(&rows).Error
	if err != nil {
		return models.VoteCount{}, fmt.Errorf("count votes: %w", err)
	}

	var vc models.VoteCount
	for _, r := range rows {
		switch r.VoteType {
		case models.VoteUp:
			vc.Upvotes = r.N
		case models.VoteDown:
			vc.Downvotes = r.N
		}
	}
	vc.Score = vc.Upvotes - vc.Downvotes
	return vc, nil
}
