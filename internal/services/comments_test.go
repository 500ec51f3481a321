package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"forumcore/internal/events"
	"forumcore/internal/models"
	"forumcore/internal/utils"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestCreateComment_Root(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.post(t, "p1", "owner")
	env.user(t, "alice", "Alice")

	c, err := env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "alice", Content: "  **first**  "})
	require.NoError(t, err)

	assert.Equal(t, "**first**", c.Content)
	assert.Contains(t, c.ContentHTML, "<strong>first</strong>")
	assert.Equal(t, 0, c.Depth)
	assert.Nil(t, c.ParentID)
	assert.Nil(t, c.ThreadID)
	assert.Equal(t, "Alice", c.Author.Username)
	assert.Equal(t, 1, c.Author.Karma)
	assert.Empty(t, c.Children)
	assert.Empty(t, c.Awards)
	assert.Equal(t, models.VoteCount{}, c.Votes)

	thread, err := env.comments.Thread(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, thread.CommentCount)
	assert.Equal(t, 0, thread.Depth)
	assert.WithinDuration(t, env.clock.Now(), thread.LastActivityAt, time.Millisecond)

	assert.Equal(t, 1, env.balance(t, "alice").CommentKarma)

	evs := env.pub.all()
	require.Len(t, evs, 1)
	ev := evs[0].(events.CommentCreated)
	assert.Equal(t, c.ID, ev.CommentID)
	assert.Equal(t, "p1", ev.PostID)
	assert.Nil(t, ev.ParentID)
	assert.Equal(t, "alice", ev.AuthorID)
}

func TestCreateComment_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.post(t, "p1", "owner")
	env.post(t, "p2", "owner")

	_, err := env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "   "})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = env.comments.Create(ctx, CreateCommentInput{PostID: "missing", UserID: "u", Content: "x"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "x", ParentID: strPtr("nope")})
	require.ErrorIs(t, err, ErrNotFound)

	other, err := env.comments.Create(ctx, CreateCommentInput{PostID: "p2", UserID: "u", Content: "x"})
	require.NoError(t, err)
	_, err = env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "x", ParentID: &other.ID})
	require.ErrorIs(t, err, ErrNotFound, "parent must belong to the same post")
}

func TestCreateComment_DepthCeiling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.post(t, "p1", "owner")

	root, err := env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "root"})
	require.NoError(t, err)

	parent := root
	for depth := 1; depth <= models.MaxCommentDepth; depth++ {
		c, err := env.comments.Create(ctx, CreateCommentInput{
			PostID: "p1", UserID: "u", Content: fmt.Sprintf("level %d", depth), ParentID: &parent.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, depth, c.Depth)
		require.NotNil(t, c.ThreadID)
		assert.Equal(t, root.ID, *c.ThreadID, "every descendant points at the root")
		parent = c
	}
	assert.Equal(t, 10, parent.Depth)

	_, err = env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "too deep", ParentID: &parent.ID})
	require.ErrorIs(t, err, ErrMaxDepthExceeded)

	var n int64
	require.NoError(t, env.db.Model(&models.Comment{}).Count(&n).Error)
	assert.Equal(t, int64(11), n)
	assert.Equal(t, 11, env.balance(t, "u").CommentKarma)
}

func TestCreateComment_ThreadCounting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.post(t, "p1", "owner")

	root, err := env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "root"})
	require.NoError(t, err)

	const descendants = 5
	parent := root
	var last time.Time
	for i := 0; i < descendants; i++ {
		env.clock.Advance(time.Minute)
		last = env.clock.Now()
		// 交替回复根评论和上一条回复
		target := root.ID
		if i%2 == 1 {
			target = parent.ID
		}
		c, err := env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "reply", ParentID: &target})
		require.NoError(t, err)
		parent = c
	}

	thread, err := env.comments.Thread(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, descendants+1, thread.CommentCount)
	assert.WithinDuration(t, last, thread.LastActivityAt, time.Millisecond)
}

func TestCreateComment_ConcurrentReplies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.post(t, "p1", "owner")

	root, err := env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "root"})
	require.NoError(t, err)

	const replies = 25
	var wg conc.WaitGroup
	for i := 0; i < replies; i++ {
		user := fmt.Sprintf("user-%d", i)
		wg.Go(func() {
			_, err := env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: user, Content: "hi", ParentID: &root.ID})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	thread, err := env.comments.Thread(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, replies+1, thread.CommentCount)
}

func TestCreateComment_RebuildsMissingThread(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.post(t, "p1", "owner")

	root, err := env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "root"})
	require.NoError(t, err)
	require.NoError(t, env.db.Where("root_comment_id = ?", root.ID).Delete(&models.CommentThread{}).Error)

	_, err = env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "reply", ParentID: &root.ID})
	require.NoError(t, err)

	thread, err := env.comments.Thread(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, thread.CommentCount)
}

// buildTree 创建：
//
//	a (旧, 3 赞)
//	  a1 (新, 0 票)
//	  a2 (旧, 2 赞)
//	b (新, 1 赞)
func buildTree(t *testing.T, env *testEnv) map[string]*CommentWithReplies {
	t.Helper()
	ctx := context.Background()
	env.post(t, "p1", "owner")

	mk := func(user, content string, parent *string) *CommentWithReplies {
		c, err := env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: user, Content: content, ParentID: parent})
		require.NoError(t, err)
		env.clock.Advance(time.Hour)
		return c
	}
	a := mk("alice", "a", nil)
	a2 := mk("bob", "a2", &a.ID)
	b := mk("bob", "b", nil)
	a1 := mk("carol", "a1", &a.ID)

	vote := func(id string, voters ...string) {
		for _, v := range voters {
			_, err := env.votes.CastVote(ctx, commentRef(id), v, models.VoteUp)
			require.NoError(t, err)
		}
	}
	vote(a.ID, "x", "y", "z")
	vote(a2.ID, "x", "y")
	vote(b.ID, "x")

	return map[string]*CommentWithReplies{"a": a, "a1": a1, "a2": a2, "b": b}
}

func contents(nodes []*CommentWithReplies) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Content)
	}
	return out
}

func TestFetchTree_SortsEveryLevel(t *testing.T) {
	env := newTestEnv(t)
	buildTree(t, env)
	ctx := context.Background()

	tree, err := env.comments.FetchTree(ctx, FetchTreeInput{PostID: "p1", SortBy: string(utils.SortTop)})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, contents(tree))
	assert.Equal(t, []string{"a2", "a1"}, contents(tree[0].Children))
	assert.Empty(t, tree[1].Children)

	tree, err = env.comments.FetchTree(ctx, FetchTreeInput{PostID: "p1", SortBy: string(utils.SortNew)})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, contents(tree))
	assert.Equal(t, []string{"a1", "a2"}, contents(tree[1].Children))

	assert.Equal(t, models.VoteCount{Upvotes: 3, Score: 3}, tree[1].Votes)
}

func TestFetchTree_ViewerFlags(t *testing.T) {
	env := newTestEnv(t)
	nodes := buildTree(t, env)
	ctx := context.Background()

	viewer := "x"
	_, err := env.votes.CastVote(ctx, commentRef(nodes["a"].ID), viewer, models.VoteDown)
	require.NoError(t, err)

	tree, err := env.comments.FetchTree(ctx, FetchTreeInput{PostID: "p1", ViewerID: &viewer, SortBy: "top"})
	require.NoError(t, err)
	require.Len(t, tree, 2)

	// a: 2 赞 1 踩；b: 1 赞
	a := tree[0]
	require.Equal(t, "a", a.Content)
	require.NotNil(t, a.UserVote)
	assert.Equal(t, models.VoteDown, *a.UserVote)
	assert.False(t, a.CanEdit)
	assert.True(t, a.CanReport)

	alice := "alice"
	tree, err = env.comments.FetchTree(ctx, FetchTreeInput{PostID: "p1", ViewerID: &alice})
	require.NoError(t, err)
	for _, n := range tree {
		if n.Author.ID == "alice" {
			assert.True(t, n.CanEdit)
			assert.True(t, n.CanDelete)
			assert.False(t, n.CanReport)
		}
	}

	// 匿名访客可以举报，不能编辑
	tree, err = env.comments.FetchTree(ctx, FetchTreeInput{PostID: "p1"})
	require.NoError(t, err)
	for _, n := range tree {
		assert.False(t, n.CanEdit)
		assert.True(t, n.CanReport)
		assert.Nil(t, n.UserVote)
	}
}

func TestFetchTree_LimitAndAwards(t *testing.T) {
	env := newTestEnv(t)
	nodes := buildTree(t, env)
	ctx := context.Background()

	_, err := env.awards.Give(ctx, GiveAwardInput{Ref: commentRef(nodes["a1"].ID), GiverID: "g", AwardType: models.AwardFunny})
	require.NoError(t, err)

	tree, err := env.comments.FetchTree(ctx, FetchTreeInput{PostID: "p1", SortBy: "top", Limit: 1})
	require.NoError(t, err)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 2)

	var a1 *CommentWithReplies
	for _, c := range tree[0].Children {
		if c.Content == "a1" {
			a1 = c
		}
	}
	require.NotNil(t, a1)
	require.Len(t, a1.Awards, 1)
	assert.Equal(t, 5, a1.Awards[0].TotalValue)
}

func TestFetchTree_CacheInvalidatedOnCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.post(t, "p1", "owner")

	tree, err := env.comments.FetchTree(ctx, FetchTreeInput{PostID: "p1"})
	require.NoError(t, err)
	assert.Empty(t, tree)

	_, err = env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "hello"})
	require.NoError(t, err)

	tree, err = env.comments.FetchTree(ctx, FetchTreeInput{PostID: "p1"})
	require.NoError(t, err)
	require.Len(t, tree, 1)

	_, err = env.comments.FetchTree(ctx, FetchTreeInput{PostID: "missing"})
	require.ErrorIs(t, err, ErrNotFound)
}

// 读库和回填缓存之间发生的写入不能被旧结果覆盖
func TestFetchTree_CreateDuringLoadNotHidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.post(t, "p1", "owner")

	loaded := make(chan struct{})
	resume := make(chan struct{})
	var once sync.Once
	err := env.db.Callback().Query().After("gorm:query").Register("test:pause_comment_rows", func(tx *gorm.DB) {
		if tx.Statement.Table != "comments" {
			return
		}
		once.Do(func() {
			close(loaded)
			<-resume
		})
	})
	require.NoError(t, err)

	var (
		wg       conc.WaitGroup
		stale    []*CommentWithReplies
		fetchErr error
	)
	wg.Go(func() {
		stale, fetchErr = env.comments.FetchTree(ctx, FetchTreeInput{PostID: "p1"})
	})

	<-loaded
	_, err = env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "hello"})
	close(resume)
	wg.Wait()
	require.NoError(t, err)
	require.NoError(t, fetchErr)
	assert.Empty(t, stale, "rows were read before the comment existed")

	tree, err := env.comments.FetchTree(ctx, FetchTreeInput{PostID: "p1"})
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "hello", tree[0].Content)
}

func TestFetchTree_FullDepthChain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.post(t, "p1", "owner")

	var parentID *string
	for depth := 0; depth <= models.MaxCommentDepth; depth++ {
		c, err := env.comments.Create(ctx, CreateCommentInput{
			PostID: "p1", UserID: "u", Content: fmt.Sprintf("level %d", depth), ParentID: parentID,
		})
		require.NoError(t, err)
		id := c.ID
		parentID = &id
	}

	tree, err := env.comments.FetchTree(ctx, FetchTreeInput{PostID: "p1"})
	require.NoError(t, err)
	require.Len(t, tree, 1)

	node := tree[0]
	for depth := 0; depth < models.MaxCommentDepth; depth++ {
		assert.Equal(t, depth, node.Depth)
		assert.Equal(t, fmt.Sprintf("level %d", depth), node.Content)
		require.Len(t, node.Children, 1, "depth %d", depth)
		node = node.Children[0]
	}
	assert.Equal(t, models.MaxCommentDepth, node.Depth)
	assert.Empty(t, node.Children)
}

func TestNewCommentService_ClampsMaxDepth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.post(t, "p1", "owner")

	d := Deps{DB: env.db, Log: zap.NewNop(), Now: env.clock.Now}
	svc := NewCommentService(d, env.karma, nil, CommentOptions{MaxDepth: 20})

	parent, err := svc.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "root"})
	require.NoError(t, err)
	for depth := 1; depth <= models.MaxCommentDepth; depth++ {
		parent, err = svc.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "c", ParentID: &parent.ID})
		require.NoError(t, err)
	}

	_, err = svc.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "u", Content: "c", ParentID: &parent.ID})
	require.ErrorIs(t, err, ErrMaxDepthExceeded)
}
