package services

import (
	"context"
	"testing"

	"forumcore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnhancedPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "owner", "Owner")
	env.post(t, "p1", "owner")

	_, err := env.votes.CastVote(ctx, postRef("p1"), "viewer", models.VoteUp)
	require.NoError(t, err)
	_, err = env.votes.CastVote(ctx, postRef("p1"), "other", models.VoteDown)
	require.NoError(t, err)
	_, err = env.awards.Give(ctx, GiveAwardInput{Ref: postRef("p1"), GiverID: "viewer", AwardType: models.AwardHelpful, Message: strPtr("nice")})
	require.NoError(t, err)
	_, err = env.comments.Create(ctx, CreateCommentInput{PostID: "p1", UserID: "viewer", Content: "c"})
	require.NoError(t, err)
	require.NoError(t, env.saved.Save(ctx, postRef("p1"), "viewer"))

	viewer := "viewer"
	got, err := env.enhanced.GetEnhancedPost(ctx, "p1", &viewer)
	require.NoError(t, err)

	assert.Equal(t, "Owner", got.Author.Username)
	assert.Equal(t, 5, got.Author.Karma, "+1 -1 from votes, +5 from the award")
	assert.Equal(t, models.VoteCount{Upvotes: 1, Downvotes: 1, Score: 0}, got.Votes)
	require.Len(t, got.Awards, 1)
	assert.Equal(t, 5, got.Awards[0].TotalValue)
	assert.Equal(t, int64(1), got.CommentCount)
	require.NotNil(t, got.UserVote)
	assert.Equal(t, models.VoteUp, *got.UserVote)
	assert.Equal(t, []models.AwardType{models.AwardHelpful}, got.UserAwards)
	assert.True(t, got.IsSaved)
	assert.False(t, got.CanEdit)
	assert.True(t, got.CanReport)

	owner := "owner"
	got, err = env.enhanced.GetEnhancedPost(ctx, "p1", &owner)
	require.NoError(t, err)
	assert.True(t, got.CanEdit)
	assert.True(t, got.CanDelete)
	assert.False(t, got.CanReport)
	assert.Nil(t, got.UserVote)
	assert.Empty(t, got.UserAwards)
	assert.False(t, got.IsSaved)

	got, err = env.enhanced.GetEnhancedPost(ctx, "p1", nil)
	require.NoError(t, err)
	assert.True(t, got.CanReport)
	assert.False(t, got.CanEdit)

	_, err = env.enhanced.GetEnhancedPost(ctx, "missing", nil)
	require.ErrorIs(t, err, ErrNotFound)
}
