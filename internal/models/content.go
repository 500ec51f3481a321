package models

import (
	"github.com/google/uuid"
)

// ContentType 内容类型：投票、打赏、举报、收藏共用
type ContentType string

const (
	ContentTypePost    ContentType = "post"
	ContentTypeComment ContentType = "comment"
)

func (t ContentType) Valid() bool {
	return t == ContentTypePost || t == ContentTypeComment
}

// ContentRef 内容引用 (contentId, contentType)
type ContentRef struct {
	ID   string      `json:"content_id"`
	Type ContentType `json:"content_type"`
}

type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// Value 返回票值：赞 +1，踩 -1
func (v VoteType) Value() int {
	if v == VoteDown {
		return -1
	}
	return 1
}

type AwardType string

const (
	AwardHelpful    AwardType = "helpful"
	AwardSupportive AwardType = "supportive"
	AwardFunny      AwardType = "funny"
	AwardInspiring  AwardType = "inspiring"
	AwardCommunity  AwardType = "community"
	AwardGold       AwardType = "gold"
	AwardPlatinum   AwardType = "platinum"
)

// 打赏对应的作者积分
var awardKarma = map[AwardType]int{
	AwardHelpful:    5,
	AwardSupportive: 5,
	AwardFunny:      5,
	AwardInspiring:  10,
	AwardCommunity:  10,
	AwardGold:       25,
	AwardPlatinum:   50,
}

// 高级打赏要求赠送者的最低总积分
var premiumThreshold = map[AwardType]int{
	AwardGold:     500,
	AwardPlatinum: 1000,
}

func (a AwardType) Valid() bool {
	_, ok := awardKarma[a]
	return ok
}

// KarmaValue 未知类型按 5 计
func (a AwardType) KarmaValue() int {
	if v, ok := awardKarma[a]; ok {
		return v
	}
	return 5
}

func (a AwardType) IsPremium() bool {
	_, ok := premiumThreshold[a]
	return ok
}

// PremiumThreshold returns the minimum giver total karma, 0 for regular awards.
func (a AwardType) PremiumThreshold() int {
	return premiumThreshold[a]
}

type ReportReason string

const (
	ReasonSpam           ReportReason = "spam"
	ReasonHarassment     ReportReason = "harassment"
	ReasonHateSpeech     ReportReason = "hate_speech"
	ReasonMisinformation ReportReason = "misinformation"
	ReasonSelfHarm       ReportReason = "self_harm"
	ReasonInappropriate  ReportReason = "inappropriate"
	ReasonOther          ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReasonSpam, ReasonHarassment, ReasonHateSpeech, ReasonMisinformation,
		ReasonSelfHarm, ReasonInappropriate, ReasonOther:
		return true
	}
	return false
}

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

// KarmaBucket 积分分类
type KarmaBucket string

const (
	BucketPost    KarmaBucket = "post"
	BucketComment KarmaBucket = "comment"
	BucketAward   KarmaBucket = "award"
)

// Column 返回 user_karma 表中对应的列名
func (b KarmaBucket) Column() string {
	switch b {
	case BucketPost:
		return "post_karma"
	case BucketComment:
		return "comment_karma"
	case BucketAward:
		return "award_karma"
	}
	return ""
}

// BucketFor 投票积分计入的分类：帖子 -> post，评论 -> comment
func BucketFor(t ContentType) KarmaBucket {
	if t == ContentTypeComment {
		return BucketComment
	}
	return BucketPost
}

func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
