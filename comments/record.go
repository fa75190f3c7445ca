package comments

// CommentRecord is one normalized comment, top-level or reply, in output order.
type CommentRecord struct {
	Author      string `json:"author"`
	Text        string `json:"text"`
	LikeCount   int64  `json:"like_count"`
	PublishedAt string `json:"published_at"`
	// ReplyCount is the thread's totalReplyCount for top-level comments and always 0 for replies.
	ReplyCount int64  `json:"reply_count"`
	CommentID  string `json:"comment_id"`
	ParentID   string `json:"parent_id,omitempty"`
	IsReply    bool   `json:"is_reply"`
}
