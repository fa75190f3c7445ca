package comments

import (
	"errors"
	"fmt"

	"github.com/grutapig/ytscraper/youtubeapi"
)

// ErrInvalidIdentifier is returned when no video id can be extracted from the input.
var ErrInvalidIdentifier = errors.New("invalid video identifier")

// RemoteAPIError wraps any failure talking to the listing API: transport errors,
// non-200 statuses and quota exhaustion. It is never retried.
type RemoteAPIError struct {
	Op  string
	Err error
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("remote api %s: %v", e.Op, e.Err)
}

func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}

func (e *RemoteAPIError) Quota() bool {
	var statusErr *youtubeapi.StatusError
	return errors.As(e.Err, &statusErr) && statusErr.QuotaExceeded()
}

// StatusCode is the HTTP status of the failed call, 0 for transport errors.
func (e *RemoteAPIError) StatusCode() int {
	var statusErr *youtubeapi.StatusError
	if errors.As(e.Err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// MalformedResponseError reports a response that lacks a required field.
// Index is the item position within the page, -1 for page-level fields.
type MalformedResponseError struct {
	Op    string
	Index int
	Path  string
	Err   error
}

func (e *MalformedResponseError) Error() string {
	where := e.Path
	if e.Index >= 0 {
		where = fmt.Sprintf("item %d %s", e.Index, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed %s response: %s: %v", e.Op, where, e.Err)
	}
	return fmt.Sprintf("malformed %s response: missing %s", e.Op, where)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
