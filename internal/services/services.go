package services

import (
	"fmt"
	"time"

	"forumcore/internal/models"
	"forumcore/internal/utils"
)

type Options struct {
	Comments         CommentOptions
	DisableSelfKarma bool
	CacheSize        int
	CacheTTL         time.Duration
}

// Services 组装好的全部服务
type Services struct {
	Karma         *KarmaService
	Ranking       *RankingService
	Votes         *VoteService
	Awards        *AwardService
	Comments      *CommentService
	Reports       *ReportService
	Saved         *SavedService
	Enhanced      *EnhancedService
	Notifications *NotificationService
}

func New(d Deps, opts Options) (*Services, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 500
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	cache, err := utils.NewCache[[]models.Comment](opts.CacheSize, opts.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("services.New: %w", err)
	}

	s := &Services{}
	s.Karma = NewKarmaService(d)
	s.Ranking = NewRankingService(d)
	s.Votes = NewVoteService(d, s.Karma, s.Ranking, opts.DisableSelfKarma)
	s.Awards = NewAwardService(d, s.Karma, opts.DisableSelfKarma)
	s.Comments = NewCommentService(d, s.Karma, cache, opts.Comments)
	s.Reports = NewReportService(d)
	s.Saved = NewSavedService(d)
	s.Enhanced = NewEnhancedService(d, s.Votes, s.Awards, s.Saved)
	s.Notifications = NewNotificationService(d)
	return s, nil
}
