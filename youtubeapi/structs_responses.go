package youtubeapi

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrVideoNotFound = errors.New("video not found")

type APIResponse struct {
	StatusCode int
	Headers    http.Header
	RawBody    []byte
}

type Video struct {
	ID           string
	Title        string
	ChannelTitle string
	PublishedAt  string
	CommentCount int64
	ViewCount    int64
	LikeCount    int64
}

// StatusError is a non-200 answer from the Data API, decoded from the Google error envelope.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Reason     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube %s status %d (%s): %s", e.Endpoint, e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube %s status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

func (e *StatusError) QuotaExceeded() bool {
	switch e.Reason {
	case REASON_QUOTA_EXCEEDED, REASON_DAILY_LIMIT_EXCEEDED, REASON_RATE_LIMIT_EXCEEDED, REASON_USER_RATE_LIMIT_EXCEEDED:
		return true
	}
	return false
}

func (e *StatusError) CommentsDisabled() bool {
	return e.Reason == REASON_COMMENTS_DISABLED
}
