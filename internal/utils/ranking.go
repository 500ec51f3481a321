package utils

import (
	"math"
	"sort"
	"strings"
	"time"

	"forumcore/internal/models"
)

type RankConfig struct {
	Gravity    float64 // 时间重力 (1.5)
	AgeOffsetH float64 // 年龄偏移小时数 (2)，避免新内容分母过小
}

var DefaultConfig = RankConfig{
	Gravity:    1.5,
	AgeOffsetH: 2,
}

// SortMode 排序方式
type SortMode string

const (
	SortHot           SortMode = "hot"
	SortTop           SortMode = "top"
	SortNew           SortMode = "new"
	SortControversial SortMode = "controversial"
)

// ParseSortMode 空字符串按 hot 处理，其余原样返回
// 未知值交给 SortComments 保持原顺序
func ParseSortMode(s string) SortMode {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortHot
	}
	return SortMode(s)
}

// Score = 赞 - 踩
func Score(v models.VoteCount) int {
	return v.Upvotes - v.Downvotes
}

// HotScore = score / (ageHours + 2)^1.5
func HotScore(v models.VoteCount, createdAt, now time.Time) float64 {
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}
	decay := math.Pow(hours+DefaultConfig.AgeOffsetH, DefaultConfig.Gravity)
	return float64(Score(v)) / decay
}

// ControversyScore 赞踩越接近越高，范围 [0, 1]
func ControversyScore(v models.VoteCount) float64 {
	if v.Upvotes+v.Downvotes == 0 {
		return 0
	}
	lo, hi := v.Upvotes, v.Downvotes
	if lo > hi {
		lo, hi = hi, lo
	}
	return float64(lo) / float64(hi)
}

// Rankable 可参与排序的内容
type Rankable interface {
	RankVotes() models.VoteCount
	RankCreatedAt() time.Time
}

// SortComments 按 mode 原地稳定排序，未知 mode 不改变顺序
func SortComments[T Rankable](items []T, mode SortMode, now time.Time) {
	var less func(a, b T) bool
	switch mode {
	case SortHot:
		less = func(a, b T) bool {
			return HotScore(a.RankVotes(), a.RankCreatedAt(), now) > HotScore(b.RankVotes(), b.RankCreatedAt(), now)
		}
	case SortTop:
		less = func(a, b T) bool { return Score(a.RankVotes()) > Score(b.RankVotes()) }
	case SortNew:
		less = func(a, b T) bool { return a.RankCreatedAt().After(b.RankCreatedAt()) }
	case SortControversial:
		less = func(a, b T) bool { return ControversyScore(a.RankVotes()) > ControversyScore(b.RankVotes()) }
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
}
