package youtubeapi

type CommentThreadsRequest struct {
	VideoID    string
	PageToken  string
	MaxResults int
	TextFormat string
	// IncludeReplies asks for part=snippet,replies so the listing embeds a first batch of replies per thread.
	IncludeReplies bool
	Order          string
}

type CommentRepliesRequest struct {
	ParentID   string
	PageToken  string
	MaxResults int
	TextFormat string
}
