package services

import (
	"context"
	"testing"

	"forumcore/internal/models"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKarma_ApplyDelta_CreatesAccountLazily(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	acct := env.balance(t, "u1")
	assert.Equal(t, models.KarmaAccount{UserID: "u1"}, acct)

	require.NoError(t, env.karma.ApplyDelta(ctx, nil, "u1", models.BucketAward, 25, ActionAwardReceived))
	require.NoError(t, env.karma.ApplyDelta(ctx, nil, "u1", models.BucketPost, -1, ActionVoteReceived))
	require.NoError(t, env.karma.ApplyDelta(ctx, nil, "u1", models.BucketComment, 0, ActionCommentCreate))

	acct = env.balance(t, "u1")
	assert.Equal(t, 25, acct.AwardKarma)
	assert.Equal(t, -1, acct.PostKarma)
	assert.Equal(t, 0, acct.CommentKarma)
	assert.Equal(t, 24, acct.TotalKarma)
	assert.Equal(t, acct.PostKarma+acct.CommentKarma+acct.AwardKarma, acct.TotalKarma)

	logs, err := env.karma.Logs(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, logs, 2, "zero delta must not be logged")
	assert.Equal(t, -1, logs[0].Amount)
	assert.Equal(t, 25, logs[1].Amount)
}

func TestKarma_ApplyDelta_InvalidBucket(t *testing.T) {
	env := newTestEnv(t)
	err := env.karma.ApplyDelta(context.Background(), nil, "u1", models.KarmaBucket("bogus"), 1, "x")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestKarma_ConcurrentIncrements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const n = 40
	var wg conc.WaitGroup
	for i := 0; i < n; i++ {
		bucket := models.BucketPost
		if i%2 == 0 {
			bucket = models.BucketAward
		}
		wg.Go(func() {
			assert.NoError(t, env.karma.ApplyDelta(ctx, nil, "hot-user", bucket, 1, ActionVoteReceived))
		})
	}
	wg.Wait()

	acct := env.balance(t, "hot-user")
	assert.Equal(t, n, acct.TotalKarma)
	assert.Equal(t, n/2, acct.PostKarma)
	assert.Equal(t, n/2, acct.AwardKarma)
}
