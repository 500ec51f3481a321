package services

import (
	"context"
	"testing"
	"time"

	"forumcore/internal/models"
	"forumcore/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanking_ListPosts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.post(t, "old", "u")
	env.clock.Advance(10 * time.Hour)
	env.post(t, "split", "u")
	env.clock.Advance(time.Hour)
	env.post(t, "fresh", "u")

	vote := func(id string, vt models.VoteType, voters ...string) {
		for _, v := range voters {
			_, err := env.votes.CastVote(ctx, postRef(id), v, vt)
			require.NoError(t, err)
		}
	}
	vote("old", models.VoteUp, "a", "b", "c", "d")
	vote("split", models.VoteUp, "a", "b")
	vote("split", models.VoteDown, "c", "d")
	vote("fresh", models.VoteUp, "a", "b")

	ids := func(posts []RankedPost) []string {
		out := make([]string, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.ID)
		}
		return out
	}

	posts, err := env.ranking.ListPosts(ctx, utils.SortTop, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "fresh", "split"}, ids(posts))
	assert.Equal(t, 4, posts[0].Upvotes)

	posts, err = env.ranking.ListPosts(ctx, utils.SortNew, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh", "split"}, ids(posts))

	posts, err = env.ranking.ListPosts(ctx, utils.SortControversial, 10)
	require.NoError(t, err)
	assert.Equal(t, "split", posts[0].ID)

	// old: 4 / 13^1.5 ≈ 0.085；fresh: 2 / 2^1.5 ≈ 0.71
	posts, err = env.ranking.ListPosts(ctx, utils.SortHot, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh", "old", "split"}, ids(posts))
}

func TestRanking_RefreshRecent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.post(t, "ancient", "u")
	_, err := env.votes.CastVote(ctx, postRef("ancient"), "a", models.VoteUp)
	require.NoError(t, err)

	env.clock.Advance(30 * 24 * time.Hour)
	env.post(t, "recent", "u")

	n, err := env.ranking.RefreshRecent(ctx, 7*24*time.Hour, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "recent window plus the single top post")

	var ancient models.Post
	require.NoError(t, env.db.Where("id = ?", "ancient").Take(&ancient).Error)
	want := utils.HotScore(models.VoteCount{Upvotes: 1, Score: 1}, ancient.CreatedAt, env.clock.Now())
	assert.InDelta(t, want, ancient.HotScore, 1e-12)

	_, err = env.ranking.RefreshPostScore(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRanking_ListPostsCancelledContext(t *testing.T) {
	env := newTestEnv(t)
	env.post(t, "p1", "owner")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.ranking.ListPosts(ctx, utils.SortTop, 10)
	require.ErrorIs(t, err, context.Canceled)
}
