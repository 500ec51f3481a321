package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"forumcore/internal/db/dbtest"
	"forumcore/internal/events"
	"forumcore/internal/metrics"
	"forumcore/internal/models"
	"forumcore/internal/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) all() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// clock 可手动推进的时钟
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db       *gorm.DB
	pub      *recordingPublisher
	clock    *clock
	metrics  *metrics.Metrics
	karma    *KarmaService
	ranking  *RankingService
	votes    *VoteService
	awards   *AwardService
	comments *CommentService
	reports  *ReportService
	saved    *SavedService
	enhanced *EnhancedService
}

type envOption func(*envConfig)

type envConfig struct {
	disableSelfKarma bool
}

func withSelfKarmaDisabled() envOption {
	return func(c *envConfig) { c.disableSelfKarma = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	var cfg envConfig
	for _, o := range opts {
		o(&cfg)
	}

	gdb := dbtest.New(t)
	pub := &recordingPublisher{}
	clk := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	m := metrics.New(prometheus.NewRegistry())
	d := Deps{DB: gdb, Log: zap.NewNop(), Publisher: pub, Metrics: m, Now: clk.Now}

	cache, err := utils.NewCache[[]models.Comment](16, time.Minute)
	require.NoError(t, err)

	env := &testEnv{db: gdb, pub: pub, clock: clk, metrics: m}
	env.karma = NewKarmaService(d)
	env.ranking = NewRankingService(d)
	env.votes = NewVoteService(d, env.karma, env.ranking, cfg.disableSelfKarma)
	env.awards = NewAwardService(d, env.karma, cfg.disableSelfKarma)
	env.comments = NewCommentService(d, env.karma, cache, CommentOptions{MaxDepth: models.MaxCommentDepth, DefaultLimit: 50, MaxLimit: 200})
	env.reports = NewReportService(d)
	env.saved = NewSavedService(d)
	env.enhanced = NewEnhancedService(d, env.votes, env.awards, env.saved)
	return env
}

func (e *testEnv) user(t *testing.T, id, name string) models.User {
	t.Helper()
	u := models.User{ID: id, Username: name}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

func (e *testEnv) post(t *testing.T, id, owner string) models.Post {
	t.Helper()
	p := models.Post{ID: id, UserID: owner, Title: "post " + id, Content: "body", CreatedAt: e.clock.Now()}
	require.NoError(t, e.db.Create(&p).Error)
	return p
}

func (e *testEnv) balance(t *testing.T, userID string) models.KarmaAccount {
	t.Helper()
	acct, err := e.karma.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return acct
}

func postRef(id string) models.ContentRef {
	return models.ContentRef{ID: id, Type: models.ContentTypePost}
}

func commentRef(id string) models.ContentRef {
	return models.ContentRef{ID: id, Type: models.ContentTypeComment}
}

func strPtr(s string) *string { return &s }
