package handlers

import (
	"forumcore/internal/services"

	"go.uber.org/zap"
)

// Set 路由需要的全部 handler
type Set struct {
	Vote         *VoteHandler
	Award        *AwardHandler
	Comment      *CommentHandler
	Report       *ReportHandler
	Saved        *SavedHandler
	Post         *PostHandler
	Karma        *KarmaHandler
	Notification *NotificationHandler
}

func NewSet(s *services.Services, log *zap.Logger) *Set {
	return &Set{
		Vote:         NewVoteHandler(s.Votes, log),
		Award:        NewAwardHandler(s.Awards, log),
		Comment:      NewCommentHandler(s.Comments, log),
		Report:       NewReportHandler(s.Reports, log),
		Saved:        NewSavedHandler(s.Saved, log),
		Post:         NewPostHandler(s.Enhanced, s.Ranking, log),
		Karma:        NewKarmaHandler(s.Karma, log),
		Notification: NewNotificationHandler(s.Notifications, log),
	}
}
