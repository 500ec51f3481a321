package services

import "errors"

// 调用方可识别的错误，handler 据此映射 HTTP 状态码
var (
	ErrNotFound            = errors.New("not found")
	ErrMaxDepthExceeded    = errors.New("maximum comment depth exceeded")
	ErrInsufficientKarma   = errors.New("insufficient karma for premium award")
	ErrDuplicateReport     = errors.New("content already reported by this user")
	ErrInvalidVoteTarget   = errors.New("invalid vote target")
	ErrInvalidContentType  = errors.New("invalid content type")
	ErrInvalidAwardType    = errors.New("invalid award type")
	ErrInvalidReportReason = errors.New("invalid report reason")
	ErrInvalidArgument     = errors.New("invalid argument")
)
