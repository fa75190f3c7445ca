package comments

import (
	"context"
	"fmt"
	"iter"
	"log"
	"strings"

	"github.com/grutapig/ytscraper/metrics"
	"github.com/grutapig/ytscraper/youtubeapi"
)

const DEFAULT_PAGE_SIZE = 100

type ReplyMode int

const (
	// ReplyModeFollowUp lists threads with part=snippet and drains comments.list for every thread that has replies.
	ReplyModeFollowUp ReplyMode = iota
	// ReplyModeInline lists threads with part=snippet,replies and only follows up when the embedded replies are incomplete.
	ReplyModeInline
	// ReplyModeNone emits top-level comments only.
	ReplyModeNone
)

func (m ReplyMode) String() string {
	switch m {
	case ReplyModeInline:
		return "inline"
	case ReplyModeNone:
		return "none"
	default:
		return "followup"
	}
}

func ParseReplyMode(value string) (ReplyMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "followup", "follow-up", "follow_up":
		return ReplyModeFollowUp, nil
	case "inline":
		return ReplyModeInline, nil
	case "none", "off", "top":
		return ReplyModeNone, nil
	}
	return ReplyModeFollowUp, fmt.Errorf("unknown reply mode %q, expected inline, followup or none", value)
}

// Lister is the part of the Data API client the fetcher needs.
type Lister interface {
	GetCommentThreads(ctx context.Context, req youtubeapi.CommentThreadsRequest) ([]byte, error)
	GetCommentReplies(ctx context.Context, req youtubeapi.CommentRepliesRequest) ([]byte, error)
}

type FetcherConfig struct {
	PageSize   int
	ReplyMode  ReplyMode
	TextFormat string
	Order      string
	// MaxPages limits the number of thread pages, 0 means no limit.
	MaxPages int
}

type CommentFetcher struct {
	api    Lister
	config FetcherConfig
}

func NewCommentFetcher(api Lister, config FetcherConfig) *CommentFetcher {
	if config.PageSize <= 0 || config.PageSize > youtubeapi.MAX_RESULTS_LIMIT {
		config.PageSize = DEFAULT_PAGE_SIZE
	}
	if config.TextFormat == "" {
		config.TextFormat = youtubeapi.TEXT_FORMAT_PLAIN
	}
	if config.MaxPages < 0 {
		config.MaxPages = 0
	}
	return &CommentFetcher{api: api, config: config}
}

func (f *CommentFetcher) Config() FetcherConfig {
	return f.config
}

// Comments starts a new lazy pass over the video's comments. No request is made until Next is called.
func (f *CommentFetcher) Comments(ctx context.Context, videoID string) *CommentIterator {
	it := &CommentIterator{
		ctx:     ctx,
		fetcher: f,
		videoID: videoID,
		state:   statePaging,
	}
	if strings.TrimSpace(videoID) == "" {
		it.err = fmt.Errorf("%w: empty video id", ErrInvalidIdentifier)
		it.state = stateDone
	}
	return it
}

// All adapts Comments to a range-over-func sequence. A failure is yielded once as the last element.
func (f *CommentFetcher) All(ctx context.Context, videoID string) iter.Seq2[CommentRecord, error] {
	return func(yield func(CommentRecord, error) bool) {
		it := f.Comments(ctx, videoID)
		for it.Next() {
			if !yield(it.Record(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(CommentRecord{}, err)
		}
	}
}

// Collect drains the sequence. On error nothing is returned, not even the records read so far.
func (f *CommentFetcher) Collect(ctx context.Context, videoID string) ([]CommentRecord, error) {
	it := f.Comments(ctx, videoID)
	records := []CommentRecord{}
	for it.Next() {
		records = append(records, it.Record())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

type iteratorState int

const (
	statePaging iteratorState = iota
	stateDone
)

type CommentIterator struct {
	ctx     context.Context
	fetcher *CommentFetcher
	videoID string
	state   iteratorState

	threads      []thread
	threadIndex  int
	pageToken    string
	pagesFetched int

	replyActive bool
	replyParent string
	replyToken  string

	pending  []CommentRecord
	record   CommentRecord
	err      error
	requests int
}

func (it *CommentIterator) Next() bool {
	for len(it.pending) == 0 {
		if it.state == stateDone {
			return false
		}
		if err := it.advance(); err != nil {
			it.err = err
			it.state = stateDone
			it.pending = nil
			return false
		}
	}

	it.record = it.pending[0]
	it.pending = it.pending[1:]
	if it.record.IsReply {
		metrics.CommentsFetched.WithLabelValues("reply").Inc()
	} else {
		metrics.CommentsFetched.WithLabelValues("top_level").Inc()
	}
	return true
}

func (it *CommentIterator) Record() CommentRecord {
	return it.record
}

func (it *CommentIterator) Err() error {
	return it.err
}

// Requests is the number of API calls issued so far.
func (it *CommentIterator) Requests() int {
	return it.requests
}

func (it *CommentIterator) advance() error {
	if it.replyActive {
		return it.fetchReplyPage()
	}
	if it.threadIndex < len(it.threads) {
		it.queueThread(it.threads[it.threadIndex])
		it.threadIndex++
		return nil
	}
	if it.pagesFetched > 0 && it.pageToken == "" {
		it.state = stateDone
		return nil
	}
	if limit := it.fetcher.config.MaxPages; limit > 0 && it.pagesFetched >= limit {
		log.Printf("comments %s: stopping after %d pages", it.videoID, it.pagesFetched)
		it.state = stateDone
		return nil
	}
	return it.fetchThreadPage()
}

func (it *CommentIterator) queueThread(th thread) {
	it.pending = append(it.pending, th.Top)

	total := th.Top.ReplyCount
	mode := it.fetcher.config.ReplyMode
	if total == 0 || mode == ReplyModeNone {
		return
	}
	if mode == ReplyModeInline && th.HasInlineReplies && int64(len(th.Replies)) >= total {
		it.pending = append(it.pending, th.Replies...)
		return
	}

	it.replyActive = true
	it.replyParent = th.Top.CommentID
	it.replyToken = ""
}

func (it *CommentIterator) fetchThreadPage() error {
	if err := it.ctx.Err(); err != nil {
		return err
	}

	config := it.fetcher.config
	it.requests++
	body, err := it.fetcher.api.GetCommentThreads(it.ctx, youtubeapi.CommentThreadsRequest{
		VideoID:        it.videoID,
		PageToken:      it.pageToken,
		MaxResults:     config.PageSize,
		TextFormat:     config.TextFormat,
		IncludeReplies: config.ReplyMode == ReplyModeInline,
		Order:          config.Order,
	})
	if err != nil {
		return &RemoteAPIError{Op: youtubeapi.ENDPOINT_COMMENT_THREADS, Err: err}
	}

	page, err := parseThreadPage(body)
	if err != nil {
		return err
	}
	if page.NextPageToken != "" && page.NextPageToken == it.pageToken {
		return &MalformedResponseError{Op: youtubeapi.ENDPOINT_COMMENT_THREADS, Index: -1, Path: "nextPageToken", Err: fmt.Errorf("token %q repeated", page.NextPageToken)}
	}

	it.pagesFetched++
	it.threads = page.Threads
	it.threadIndex = 0
	it.pageToken = page.NextPageToken
	log.Printf("comments %s: page %d, %d threads, has next: %t", it.videoID, it.pagesFetched, len(page.Threads), page.NextPageToken != "")
	return nil
}

func (it *CommentIterator) fetchReplyPage() error {
	if err := it.ctx.Err(); err != nil {
		return err
	}

	config := it.fetcher.config
	it.requests++
	body, err := it.fetcher.api.GetCommentReplies(it.ctx, youtubeapi.CommentRepliesRequest{
		ParentID:   it.replyParent,
		PageToken:  it.replyToken,
		MaxResults: config.PageSize,
		TextFormat: config.TextFormat,
	})
	if err != nil {
		return &RemoteAPIError{Op: youtubeapi.ENDPOINT_COMMENTS, Err: err}
	}

	page, err := parseReplyPage(body, it.replyParent)
	if err != nil {
		return err
	}
	if page.NextPageToken != "" && page.NextPageToken == it.replyToken {
		return &MalformedResponseError{Op: youtubeapi.ENDPOINT_COMMENTS, Index: -1, Path: "nextPageToken", Err: fmt.Errorf("token %q repeated", page.NextPageToken)}
	}

	it.pending = append(it.pending, page.Replies...)
	it.replyToken = page.NextPageToken
	if it.replyToken == "" {
		it.replyActive = false
	}
	return nil
}
