package main

import (
	"time"

	"gorm.io/gorm"
)

const RUN_STATUS_RUNNING = "running"
const RUN_STATUS_DONE = "done"
const RUN_STATUS_FAILED = "failed"

// ScrapeRunModel is one fetch of a video's comments
type ScrapeRunModel struct {
	gorm.Model
	UUID          string     `gorm:"column:uuid;uniqueIndex;size:36" json:"uuid"`
	VideoID       string     `gorm:"column:video_id;index" json:"video_id"`
	VideoTitle    string     `gorm:"column:video_title" json:"video_title,omitempty"`
	SourceInput   string     `gorm:"column:source_input" json:"source_input"`
	Source        string     `gorm:"column:source" json:"source"` // "telegram", "http", "import"
	ReplyMode     string     `gorm:"column:reply_mode" json:"reply_mode"`
	Analytics     bool       `gorm:"column:analytics;default:false" json:"analytics"`
	Status        string     `gorm:"column:status;index" json:"status"`
	TopLevelCount int        `gorm:"column:top_level_count" json:"top_level_count"`
	RepliesCount  int        `gorm:"column:replies_count" json:"replies_count"`
	RequestCount  int        `gorm:"column:request_count" json:"request_count"`
	ErrorMessage  string     `gorm:"column:error_message" json:"error_message,omitempty"`
	StartedAt     time.Time  `gorm:"column:started_at;index" json:"started_at"`
	FinishedAt    *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

func (ScrapeRunModel) TableName() string {
	return "scrape_runs"
}

func (r ScrapeRunModel) TotalCount() int {
	return r.TopLevelCount + r.RepliesCount
}

// CommentModel keeps one exported row; Position preserves output order within the run
type CommentModel struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	RunUUID         string    `gorm:"column:run_uuid;index:idx_comments_run_position,priority:1" json:"run_uuid"`
	Position        int       `gorm:"column:position;index:idx_comments_run_position,priority:2" json:"position"`
	CommentID       string    `gorm:"column:comment_id;index" json:"comment_id"`
	ParentID        string    `gorm:"column:parent_id" json:"parent_id,omitempty"`
	IsReply         bool      `gorm:"column:is_reply;default:false" json:"is_reply"`
	Author          string    `gorm:"column:author" json:"author"`
	Text            string    `gorm:"column:text" json:"text"`
	LikeCount       int64     `gorm:"column:like_count" json:"like_count"`
	PublishedAt     string    `gorm:"column:published_at" json:"published_at"`
	ReplyCount      int64     `gorm:"column:reply_count" json:"reply_count"`
	Sentiment       string    `gorm:"column:sentiment" json:"sentiment,omitempty"`
	EngagementScore int64     `gorm:"column:engagement_score" json:"engagement_score"`
	CreatedAt       time.Time `gorm:"column:created_at" json:"created_at"`
}

func (CommentModel) TableName() string {
	return "comments"
}

type DatabaseStats struct {
	Runs       int64 `json:"runs"`
	FailedRuns int64 `json:"failed_runs"`
	Comments   int64 `json:"comments"`
}
