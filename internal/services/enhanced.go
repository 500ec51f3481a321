package services

import (
	"context"
	"fmt"
	"time"

	"forumcore/internal/models"
	"forumcore/internal/utils"

	"github.com/sourcegraph/conc/pool"
)

// PostWithEnhancedData 帖子详情页所需的全部数据
type PostWithEnhancedData struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Content      string                `json:"content"`
	ContentHTML  string                `json:"content_html"`
	Author       models.Author         `json:"author"`
	HotScore     float64               `json:"hot_score"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Votes        models.VoteCount      `json:"votes"`
	Awards       []models.AwardSummary `json:"awards"`
	CommentCount int64                 `json:"comment_count"`
	UserVote     *models.VoteType      `json:"user_vote"`
	UserAwards   []models.AwardType    `json:"user_awards"`
	IsSaved      bool                  `json:"is_saved"`
	CanEdit      bool                  `json:"can_edit"`
	CanDelete    bool                  `json:"can_delete"`
	CanReport    bool                  `json:"can_report"`
}

// EnhancedService 组合投票、打赏、收藏的只读视图
type EnhancedService struct {
	base
	votes  *VoteService
	awards *AwardService
	saved  *SavedService
}

func NewEnhancedService(d Deps, votes *VoteService, awards *AwardService, saved *SavedService) *EnhancedService {
	return &EnhancedService{base: newBase(d), votes: votes, awards: awards, saved: saved}
}

func (s *EnhancedService) GetEnhancedPost(ctx context.Context, postID string, viewerID *string) (*PostWithEnhancedData, error) {
	const op = "services.EnhancedService.GetEnhancedPost"

	db := s.db.WithContext(ctx)
	var post models.Post
	if err := db.Where("id = ?", postID).Take(&post).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ref := models.ContentRef{ID: post.ID, Type: models.ContentTypePost}

	out := &PostWithEnhancedData{
		ID:          post.ID,
		Title:       post.Title,
		Content:     post.Content,
		ContentHTML: utils.RenderMarkdown(post.Content),
		HotScore:    post.HotScore,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
		UserAwards:  []models.AwardType{},
		CanReport:   true,
	}

	// 各项互不依赖，并行读取；每个任务只写自己的字段
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		authors, err := loadAuthors(s.db.WithContext(ctx), []string{post.UserID})
		out.Author = authors[post.UserID]
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		out.Votes, err = s.votes.GetVoteCount(ctx, ref)
		return err
	})
	p.Go(func(ctx context.Context) (err error) {
		out.Awards, err = s.awards.Aggregate(ctx, ref)
		return err
	})
	p.Go(func(ctx context.Context) error {
		return s.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&out.CommentCount).Error
	})

	if viewerID != nil {
		viewer := *viewerID
		p.Go(func(ctx context.Context) (err error) {
			out.UserVote, err = s.votes.UserVote(ctx, ref, viewer)
			return err
		})
		p.Go(func(ctx context.Context) (err error) {
			out.UserAwards, err = s.awards.UserAwardTypes(ctx, ref, viewer)
			return err
		})
		p.Go(func(ctx context.Context) (err error) {
			out.IsSaved, err = s.saved.IsSaved(ctx, ref, viewer)
			return err
		})

		isAuthor := viewer == post.UserID
		out.CanEdit = isAuthor
		out.CanDelete = isAuthor
		out.CanReport = !isAuthor
	}

	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
