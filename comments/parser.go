package comments

import (
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/grutapig/ytscraper/youtubeapi"
)

type thread struct {
	Top              CommentRecord
	Replies          []CommentRecord
	HasInlineReplies bool
}

type threadPage struct {
	Threads       []thread
	NextPageToken string
}

type replyPage struct {
	Replies       []CommentRecord
	NextPageToken string
}

// fieldReader reads required fields of one item and keeps the first missing path.
type fieldReader struct {
	op     string
	index  int
	prefix string
	data   []byte
	err    error
}

func (r *fieldReader) fail(path []string, err error) {
	if r.err != nil {
		return
	}
	r.err = &MalformedResponseError{
		Op:    r.op,
		Index: r.index,
		Path:  r.prefix + strings.Join(path, "."),
		Err:   err,
	}
}

func (r *fieldReader) str(path ...string) string {
	if r.err != nil {
		return ""
	}
	value, err := jsonparser.GetString(r.data, path...)
	if err != nil {
		r.fail(path, err)
		return ""
	}
	return value
}

func (r *fieldReader) int(path ...string) int64 {
	if r.err != nil {
		return 0
	}
	value, err := jsonparser.GetInt(r.data, path...)
	if err != nil {
		r.fail(path, err)
		return 0
	}
	if value < 0 {
		r.fail(path, fmt.Errorf("negative value %d", value))
		return 0
	}
	return value
}

// eachItem walks the page's items array, stopping at the first callback error.
func eachItem(op string, body []byte, fn func(item []byte, index int) error) error {
	items, dataType, _, err := jsonparser.Get(body, "items")
	if err != nil || dataType != jsonparser.Array {
		return &MalformedResponseError{Op: op, Index: -1, Path: "items", Err: err}
	}

	var itemErr error
	index := 0
	_, err = jsonparser.ArrayEach(items, func(item []byte, dataType jsonparser.ValueType, offset int, err error) {
		if itemErr != nil {
			return
		}
		if err != nil {
			itemErr = &MalformedResponseError{Op: op, Index: index, Path: "items", Err: err}
			return
		}
		itemErr = fn(item, index)
		index++
	})
	if itemErr != nil {
		return itemErr
	}
	if err != nil {
		return &MalformedResponseError{Op: op, Index: -1, Path: "items", Err: err}
	}
	return nil
}

func parseThreadPage(body []byte) (*threadPage, error) {
	page := &threadPage{}
	err := eachItem(youtubeapi.ENDPOINT_COMMENT_THREADS, body, func(item []byte, index int) error {
		th, err := parseThread(item, index)
		if err != nil {
			return err
		}
		page.Threads = append(page.Threads, th)
		return nil
	})
	if err != nil {
		return nil, err
	}
	page.NextPageToken, _ = jsonparser.GetString(body, "nextPageToken")
	return page, nil
}

func parseThread(item []byte, index int) (thread, error) {
	r := &fieldReader{op: youtubeapi.ENDPOINT_COMMENT_THREADS, index: index, data: item}
	r.str("id")
	top := CommentRecord{
		CommentID:   r.str("snippet", "topLevelComment", "id"),
		Author:      r.str("snippet", "topLevelComment", "snippet", "authorDisplayName"),
		Text:        r.str("snippet", "topLevelComment", "snippet", "textDisplay"),
		LikeCount:   r.int("snippet", "topLevelComment", "snippet", "likeCount"),
		PublishedAt: r.str("snippet", "topLevelComment", "snippet", "publishedAt"),
		ReplyCount:  r.int("snippet", "totalReplyCount"),
	}
	if r.err != nil {
		return thread{}, r.err
	}

	th := thread{Top: top}
	inline, dataType, _, err := jsonparser.Get(item, "replies", "comments")
	if err == jsonparser.KeyPathNotFoundError || (err == nil && dataType == jsonparser.Null) {
		return th, nil
	}
	if err != nil || dataType != jsonparser.Array {
		return thread{}, &MalformedResponseError{Op: youtubeapi.ENDPOINT_COMMENT_THREADS, Index: index, Path: "replies.comments", Err: err}
	}

	th.HasInlineReplies = true
	replyIndex := 0
	var replyErr error
	_, err = jsonparser.ArrayEach(inline, func(reply []byte, dataType jsonparser.ValueType, offset int, err error) {
		if replyErr != nil {
			return
		}
		if err != nil {
			replyErr = &MalformedResponseError{Op: youtubeapi.ENDPOINT_COMMENT_THREADS, Index: index, Path: fmt.Sprintf("replies.comments[%d]", replyIndex), Err: err}
			return
		}
		rr := &fieldReader{
			op:     youtubeapi.ENDPOINT_COMMENT_THREADS,
			index:  index,
			prefix: fmt.Sprintf("replies.comments[%d].", replyIndex),
			data:   reply,
		}
		record := readReply(rr, top.CommentID)
		if rr.err != nil {
			replyErr = rr.err
			return
		}
		th.Replies = append(th.Replies, record)
		replyIndex++
	})
	if replyErr != nil {
		return thread{}, replyErr
	}
	if err != nil {
		return thread{}, &MalformedResponseError{Op: youtubeapi.ENDPOINT_COMMENT_THREADS, Index: index, Path: "replies.comments", Err: err}
	}
	return th, nil
}

func parseReplyPage(body []byte, parentID string) (*replyPage, error) {
	page := &replyPage{}
	err := eachItem(youtubeapi.ENDPOINT_COMMENTS, body, func(item []byte, index int) error {
		r := &fieldReader{op: youtubeapi.ENDPOINT_COMMENTS, index: index, data: item}
		record := readReply(r, parentID)
		if r.err != nil {
			return r.err
		}
		page.Replies = append(page.Replies, record)
		return nil
	})
	if err != nil {
		return nil, err
	}
	page.NextPageToken, _ = jsonparser.GetString(body, "nextPageToken")
	return page, nil
}

func readReply(r *fieldReader, parentID string) CommentRecord {
	record := CommentRecord{
		CommentID:   r.str("id"),
		Author:      r.str("snippet", "authorDisplayName"),
		Text:        r.str("snippet", "textDisplay"),
		LikeCount:   r.int("snippet", "likeCount"),
		PublishedAt: r.str("snippet", "publishedAt"),
		ReplyCount:  0,
		ParentID:    parentID,
		IsReply:     true,
	}
	if parent, err := jsonparser.GetString(r.data, "snippet", "parentId"); err == nil && parent != "" {
		record.ParentID = parent
	}
	return record
}
