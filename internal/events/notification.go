package events

import (
	"context"
	"fmt"

	"forumcore/internal/models"

	"gorm.io/gorm"
)

// NotificationPublisher 把事件转成站内通知
// 打赏通知内容作者，评论通知帖子作者或被回复的人；自己操作自己的内容不通知
type NotificationPublisher struct {
	db *gorm.DB
}

func NewNotificationPublisher(db *gorm.DB) *NotificationPublisher {
	return &NotificationPublisher{db: db}
}

func (p *NotificationPublisher) Publish(ctx context.Context, e Event) error {
	switch ev := e.(type) {
	case AwardGiven:
		return p.awardGiven(ctx, ev)
	case CommentCreated:
		return p.commentCreated(ctx, ev)
	}
	return nil
}

func (p *NotificationPublisher) awardGiven(ctx context.Context, ev AwardGiven) error {
	owner, err := p.ownerOf(ctx, ev.ContentRef)
	if err != nil || owner == "" || owner == ev.GiverID {
		return err
	}

	n := models.Notification{
		UserID:      owner,
		Type:        models.NotificationTypeAward,
		ContentID:   ev.ContentRef.ID,
		ContentType: ev.ContentRef.Type,
		Reason:      fmt.Sprintf("received a %s award", ev.AwardType),
	}
	if !ev.IsAnonymous {
		giver := ev.GiverID
		n.ActorID = &giver
	}
	return p.create(ctx, &n)
}

func (p *NotificationPublisher) commentCreated(ctx context.Context, ev CommentCreated) error {
	n := models.Notification{
		ContentID:   ev.CommentID,
		ContentType: models.ContentTypeComment,
	}
	author := ev.AuthorID
	n.ActorID = &author

	var (
		recipient string
		err       error
	)
	if ev.ParentID != nil {
		recipient, err = p.ownerOf(ctx, models.ContentRef{ID: *ev.ParentID, Type: models.ContentTypeComment})
		n.Type = models.NotificationTypeReplyComment
		n.Reason = "replied to your comment"
	} else {
		recipient, err = p.ownerOf(ctx, models.ContentRef{ID: ev.PostID, Type: models.ContentTypePost})
		n.Type = models.NotificationTypeCommentPost
		n.Reason = "commented on your post"
	}
	if err != nil || recipient == "" || recipient == ev.AuthorID {
		return err
	}
	n.UserID = recipient
	return p.create(ctx, &n)
}

// ownerOf 内容不存在时返回空字符串
func (p *NotificationPublisher) ownerOf(ctx context.Context, ref models.ContentRef) (string, error) {
	var model any
	switch ref.Type {
	case models.ContentTypePost:
		model = &models.Post{}
	case models.ContentTypeComment:
		model = &models.Comment{}
	default:
		return "", nil
	}

	var owners []string
	err := p.db.WithContext(ctx).Model(model).Where("id = ?", ref.ID).Limit(1).Pluck("user_id", &owners).Error
	if err != nil {
		return "", fmt.Errorf("lookup owner of %s %s: %w", ref.Type, ref.ID, err)
	}
	if len(owners) == 0 {
		return "", nil
	}
	return owners[0], nil
}

func (p *NotificationPublisher) create(ctx context.Context, n *models.Notification) error {
	if err := p.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}
