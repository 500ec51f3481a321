// Package events 定义领域事件及其投递方式。
// 事件在事务提交之后发布，发布失败只记录日志，不回滚已提交的操作。
package events

import (
	"context"
	"errors"
	"time"

	"forumcore/internal/models"
)

const (
	NameAwardGiven      = "award.given"
	NameCommentCreated  = "comment.created"
	NameContentReported = "content.reported"
)

// Event 领域事件
type Event interface {
	Name() string
}

type AwardGiven struct {
	ContentRef  models.ContentRef `json:"content_ref"`
	AwardType   models.AwardType  `json:"award_type"`
	GiverID     string            `json:"giver_id"`
	IsAnonymous bool              `json:"is_anonymous"`
	Timestamp   time.Time         `json:"timestamp"`
}

func (AwardGiven) Name() string { return NameAwardGiven }

type CommentCreated struct {
	CommentID string    `json:"comment_id"`
	PostID    string    `json:"post_id"`
	ParentID  *string   `json:"parent_id"`
	AuthorID  string    `json:"author_id"`
	Depth     int       `json:"depth"`
	Timestamp time.Time `json:"timestamp"`
}

func (CommentCreated) Name() string { return NameCommentCreated }

type ContentReported struct {
	ContentID   string              `json:"content_id"`
	ContentType models.ContentType  `json:"content_type"`
	Reason      models.ReportReason `json:"reason"`
	ReporterID  string              `json:"reporter_id"`
	Timestamp   time.Time           `json:"timestamp"`
}

func (ContentReported) Name() string { return NameContentReported }

// Publisher 事件投递
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop 丢弃所有事件
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi 依次投递给所有 Publisher，某一个失败不影响其他
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
