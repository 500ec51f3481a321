package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"forumcore/internal/events"
	"forumcore/internal/models"
	"forumcore/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommentOptions 深度和分页限制
type CommentOptions struct {
	MaxDepth     int
	DefaultLimit int
	MaxLimit     int
}

// CommentWithReplies 评论树节点
type CommentWithReplies struct {
	ID          string                `json:"id"`
	PostID      string                `json:"post_id"`
	ParentID    *string               `json:"parent_id"`
	ThreadID    *string               `json:"thread_id"`
	Content     string                `json:"content"`
	ContentHTML string                `json:"content_html"`
	Author      models.Author         `json:"author"`
	Depth       int                   `json:"depth"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Votes       models.VoteCount      `json:"votes"`
	Awards      []models.AwardSummary `json:"awards"`
	Children    []*CommentWithReplies `json:"children"`
	UserVote    *models.VoteType      `json:"user_vote"`
	CanEdit     bool                  `json:"can_edit"`
	CanDelete   bool                  `json:"can_delete"`
	CanReport   bool                  `json:"can_report"`
}

func (c *CommentWithReplies) RankVotes() models.VoteCount { return c.Votes }
func (c *CommentWithReplies) RankCreatedAt() time.Time    { return c.CreatedAt }

type CommentService struct {
	base
	karma *KarmaService
	cache *utils.Cache[[]models.Comment] // post id -> 评论行
	opts  CommentOptions
}

func NewCommentService(d Deps, karma *KarmaService, cache *utils.Cache[[]models.Comment], opts CommentOptions) *CommentService {
	if opts.MaxDepth <= 0 || opts.MaxDepth > models.MaxCommentDepth {
		opts.MaxDepth = models.MaxCommentDepth
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 50
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}
	return &CommentService{base: newBase(d), karma: karma, cache: cache, opts: opts}
}

type CreateCommentInput struct {
	PostID   string
	UserID   string
	Content  string
	ParentID *string
}

// Create 发表评论或回复
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*CommentWithReplies, error) {
	const op = "services.CommentService.Create"

	content := strings.TrimSpace(in.Content)
	if content == "" || in.PostID == "" || in.UserID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	now := s.now()
	comment := models.Comment{
		PostID:    in.PostID,
		UserID:    in.UserID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := contentOwner(tx, models.ContentRef{ID: in.PostID, Type: models.ContentTypePost}); err != nil {
			return err
		}

		if in.ParentID != nil {
			var parent models.Comment
			if err := tx.Where("id = ?", *in.ParentID).Take(&parent).Error; err != nil {
				if isNotFound(err) {
					return ErrNotFound
				}
				return fmt.Errorf("load parent: %w", err)
			}
			if parent.PostID != in.PostID {
				return ErrNotFound
			}

			comment.Depth = parent.Depth + 1
			if comment.Depth > s.opts.MaxDepth {
				return ErrMaxDepthExceeded
			}
			parentID := parent.ID
			rootID := parent.RootID()
			comment.ParentID = &parentID
			comment.ThreadID = &rootID
		}

		if err := tx.Create(&comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}

		if comment.ParentID == nil {
			thread := models.CommentThread{
				PostID:         in.PostID,
				RootCommentID:  comment.ID,
				CommentCount:   1,
				LastActivityAt: now,
			}
			if err := tx.Create(&thread).Error; err != nil {
				return fmt.Errorf("create thread: %w", err)
			}
		} else if err := s.bumpThread(tx, in.PostID, *comment.ThreadID, now); err != nil {
			return err
		}

		return s.karma.ApplyDelta(ctx, tx, in.UserID, models.BucketComment, PointsCommentCreate, ActionCommentCreate)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(in.PostID)
	s.metrics.CommentCreated(comment.ParentID != nil)
	s.publish(ctx, events.CommentCreated{
		CommentID: comment.ID,
		PostID:    comment.PostID,
		ParentID:  comment.ParentID,
		AuthorID:  comment.UserID,
		Depth:     comment.Depth,
		Timestamp: now,
	})

	authors, err := loadAuthors(s.db.WithContext(ctx), []string{in.UserID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	viewer := in.UserID
	return s.newNode(&comment, authors, nil, nil, &viewer), nil
}

// bumpThread 原子地增加讨论串计数；讨论串缺失时按现有评论数补建
func (s *CommentService) bumpThread(tx *gorm.DB, postID, rootID string, now time.Time) error {
	res := tx.Model(&models.CommentThread{}).
		Where("root_comment_id = ?", rootID).
		Updates(map[string]any{
			"comment_count":    gorm.Expr("comment_count + 1"),
			"last_activity_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("bump thread: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	s.log.Warn("Comment thread missing, rebuilding", zap.String("root_comment_id", rootID))
	var n int64
	if err := tx.Model(&models.Comment{}).Where("id = ? OR thread_id = ?", rootID, rootID).Count(&n).Error; err != nil {
		return fmt.Errorf("count thread: %w", err)
	}
	thread := models.CommentThread{
		PostID:         postID,
		RootCommentID:  rootID,
		CommentCount:   int(n),
		LastActivityAt: now,
	}
	if err := tx.Create(&thread).Error; err != nil {
		return fmt.Errorf("create thread: %w", err)
	}
	return nil
}

// Thread 根评论对应的讨论串统计
func (s *CommentService) Thread(ctx context.Context, rootCommentID string) (*models.CommentThread, error) {
	const op = "services.CommentService.Thread"

	var t models.CommentThread
	if err := s.db.WithContext(ctx).Where("root_comment_id = ?", rootCommentID).Take(&t).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

type FetchTreeInput struct {
	PostID   string
	ViewerID *string
	SortBy   string
	Limit    int
}

// FetchTree 组装帖子的评论树。根评论排序后截取 Limit 条，每一层都按同一方式排序
func (s *CommentService) FetchTree(ctx context.Context, in FetchTreeInput) ([]*CommentWithReplies, error) {
	const op = "services.CommentService.FetchTree"

	db := s.db.WithContext(ctx)
	if _, err := contentOwner(db, models.ContentRef{ID: in.PostID, Type: models.ContentTypePost}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.loadRows(db, in.PostID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) == 0 {
		return []*CommentWithReplies{}, nil
	}

	votes, awards, err := s.loadReactions(db, in.PostID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	authorIDs := make([]string, 0, len(rows))
	seen := make(map[string]bool)
	for _, r := range rows {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			authorIDs = append(authorIDs, r.UserID)
		}
	}
	authors, err := loadAuthors(db, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mode := utils.ParseSortMode(in.SortBy)
	now := s.now()

	// 按 parent_id 分组
	var roots []*models.Comment
	byParent := make(map[string][]*models.Comment)
	for i := range rows {
		r := &rows[i]
		if r.ParentID == nil {
			roots = append(roots, r)
		} else {
			byParent[*r.ParentID] = append(byParent[*r.ParentID], r)
		}
	}

	build := func(list []*models.Comment) []*CommentWithReplies {
		nodes := make([]*CommentWithReplies, 0, len(list))
		for _, c := range list {
			nodes = append(nodes, s.newNode(c, authors, votes[c.ID], awards[c.ID], in.ViewerID))
		}
		utils.SortComments(nodes, mode, now)
		return nodes
	}

	top := build(roots)
	if limit := s.limit(in.Limit); len(top) > limit {
		top = top[:limit]
	}

	// 显式工作队列代替递归，深度受 MaxDepth 限制
	queue := append([]*CommentWithReplies(nil), top...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if kids := byParent[n.ID]; len(kids) > 0 {
			n.Children = build(kids)
			queue = append(queue, n.Children...)
		}
	}
	return top, nil
}

func (s *CommentService) limit(n int) int {
	if n <= 0 {
		return s.opts.DefaultLimit
	}
	if n > s.opts.MaxLimit {
		return s.opts.MaxLimit
	}
	return n
}

// loadRows 帖子的全部评论行，按创建时间升序；结果缓存，发表评论时失效
func (s *CommentService) loadRows(db *gorm.DB, postID string) ([]models.Comment, error) {
	var gen uint64
	if s.cache != nil {
		if rows, ok := s.cache.Get(postID); ok {
			return rows, nil
		}
		gen = s.cache.Generation()
	}

	var rows []models.Comment
	if err := db.Where("post_id = ?", postID).Order("created_at").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	// 读库期间有评论写入时不回填，下次请求重新读
	if s.cache != nil {
		s.cache.SetIfGeneration(postID, rows, gen)
	}
	return rows, nil
}

// loadReactions 帖子下所有评论的投票和打赏，按评论 ID 分组
func (s *CommentService) loadReactions(db *gorm.DB, postID string) (map[string][]models.Vote, map[string][]models.Award, error) {
	ids := func() *gorm.DB {
		return db.Model(&models.Comment{}).Select("id").Where("post_id = ?", postID)
	}

	var vs []models.Vote
	if err := db.Where("content_type = ? AND content_id IN (?)", models.ContentTypeComment, ids()).Find(&vs).Error; err != nil {
		return nil, nil, fmt.Errorf("load votes: %w", err)
	}
	var as []models.Award
	err := db.Where("content_type = ? AND content_id IN (?)", models.ContentTypeComment, ids()).
		Order("created_at").Order("id").
		Find(&as).Error
	if err != nil {
		return nil, nil, fmt.Errorf("load awards: %w", err)
	}

	votes := make(map[string][]models.Vote)
	for _, v := range vs {
		votes[v.ContentID] = append(votes[v.ContentID], v)
	}
	awards := make(map[string][]models.Award)
	for _, a := range as {
		awards[a.ContentID] = append(awards[a.ContentID], a)
	}
	return votes, awards, nil
}

func (s *CommentService) newNode(c *models.Comment, authors map[string]models.Author, votes []models.Vote, awards []models.Award, viewerID *string) *CommentWithReplies {
	n := &CommentWithReplies{
		ID:          c.ID,
		PostID:      c.PostID,
		ParentID:    c.ParentID,
		ThreadID:    c.ThreadID,
		Content:     c.Content,
		ContentHTML: utils.RenderMarkdown(c.Content),
		Author:      authors[c.UserID],
		Depth:       c.Depth,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Votes:       models.CountVotes(votes),
		Awards:      AggregateAwards(awards),
		Children:    []*CommentWithReplies{},
	}
	if n.Author.ID == "" {
		n.Author.ID = c.UserID
	}

	isAuthor := viewerID != nil && *viewerID == c.UserID
	n.CanEdit = isAuthor
	n.CanDelete = isAuthor
	n.CanReport = !isAuthor

	if viewerID != nil {
		for _, v := range votes {
			if v.UserID == *viewerID {
				vt := v.VoteType
				n.UserVote = &vt
				break
			}
		}
	}
	return n
}

func (s *CommentService) invalidate(postID string) {
	if s.cache != nil {
		s.cache.Delete(postID)
	}
}
