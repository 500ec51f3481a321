// Package metrics 写操作计数器
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "forumcore"

// Metrics 所有方法对 nil 接收者安全，测试里可以不传
type Metrics struct {
	Votes         *prometheus.CounterVec
	Awards        *prometheus.CounterVec
	Comments      *prometheus.CounterVec
	Reports       prometheus.Counter
	PublishErrors *prometheus.CounterVec
}

// New 创建并注册到 reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Votes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Votes cast, by content type and vote type.",
		}, []string{"content_type", "vote_type"}),
		Awards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "awards_total",
			Help:      "Awards given, by award type.",
		}, []string{"award_type"}),
		Comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_total",
			Help:      "Comments created, by kind (root or reply).",
		}, []string{"kind"}),
		Reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Reports filed.",
		}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_publish_errors_total",
			Help:      "Domain events that failed to publish, by event name.",
		}, []string{"event"}),
	}
	reg.MustRegister(m.Votes, m.Awards, m.Comments, m.Reports, m.PublishErrors)
	return m
}

func (m *Metrics) VoteCast(contentType, voteType string) {
	if m == nil {
		return
	}
	m.Votes.WithLabelValues(contentType, voteType).Inc()
}

func (m *Metrics) AwardGiven(awardType string) {
	if m == nil {
		return
	}
	m.Awards.WithLabelValues(awardType).Inc()
}

// CommentCreated kind 为 root 或 reply
func (m *Metrics) CommentCreated(reply bool) {
	if m == nil {
		return
	}
	kind := "root"
	if reply {
		kind = "reply"
	}
	m.Comments.WithLabelValues(kind).Inc()
}

func (m *Metrics) ReportFiled() {
	if m == nil {
		return
	}
	m.Reports.Inc()
}

func (m *Metrics) PublishFailed(event string) {
	if m == nil {
		return
	}
	m.PublishErrors.WithLabelValues(event).Inc()
}
