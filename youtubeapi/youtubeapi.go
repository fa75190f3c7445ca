package youtubeapi

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/grutapig/ytscraper/metrics"
)

const ENV_YOUTUBE_API_KEY = "youtube_api_key"
const ENV_YOUTUBE_API_BASE_URL = "youtube_api_base_url"
const ENV_PROXY_DSN = "proxy_dsn"

const HEADER_API_KEY = "X-Goog-Api-Key"

const DEFAULT_BASE_URL = "https://www.googleapis.com/youtube/v3"
const MAX_RESULTS_LIMIT = 100

const TEXT_FORMAT_PLAIN = "plainText"
const TEXT_FORMAT_HTML = "html"

const ENDPOINT_COMMENT_THREADS = "commentThreads"
const ENDPOINT_COMMENTS = "comments"
const ENDPOINT_VIDEOS = "videos"

const REASON_QUOTA_EXCEEDED = "quotaExceeded"
const REASON_DAILY_LIMIT_EXCEEDED = "dailyLimitExceeded"
const REASON_RATE_LIMIT_EXCEEDED = "rateLimitExceeded"
const REASON_USER_RATE_LIMIT_EXCEEDED = "userRateLimitExceeded"
const REASON_COMMENTS_DISABLED = "commentsDisabled"
const REASON_KEY_INVALID = "keyInvalid"

type YoutubeAPIService struct {
	apiKey     string
	httpClient *http.Client
	baseUrl    string
}

func NewYoutubeAPIService(apiKey string, baseUrl string, proxyDSN string) (*YoutubeAPIService, error) {
	transport := &http.Transport{}
	if proxyDSN != "" {
		proxyURL, err := url.Parse(proxyDSN)
		if err != nil {
			return nil, fmt.Errorf("youtube api proxy dsn error: %w", err)
		}

		transport = &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: false,
			},
		}
	}
	if baseUrl == "" {
		baseUrl = DEFAULT_BASE_URL
	}

	return &YoutubeAPIService{
		apiKey:  apiKey,
		baseUrl: strings.TrimRight(baseUrl, "/"),
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}, nil
}

func (s *YoutubeAPIService) makeRequest(ctx context.Context, endpoint string, params map[string]string) (*APIResponse, error) {
	started := time.Now()
	defer func() {
		metrics.YoutubeAPIDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseUrl+"/"+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// key travels as a header, never in the URL
	req.Header.Set(HEADER_API_KEY, s.apiKey)

	q := req.URL.Query()
	for key, value := range params {
		if value != "" {
			q.Add(key, value)
		}
	}
	req.URL.RawQuery = q.Encode()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.YoutubeAPIRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("error send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.YoutubeAPIRequests.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("error read response: %w", err)
	}
	metrics.YoutubeAPIRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		RawBody:    bodyBytes,
	}, nil
}

// GetCommentThreads returns the raw commentThreads.list page for a video.
func (s *YoutubeAPIService) GetCommentThreads(ctx context.Context, req CommentThreadsRequest) ([]byte, error) {
	part := "snippet"
	if req.IncludeReplies {
		part = "snippet,replies"
	}
	params := map[string]string{
		"part":       part,
		"videoId":    req.VideoID,
		"pageToken":  req.PageToken,
		"maxResults": maxResults(req.MaxResults),
		"textFormat": textFormat(req.TextFormat),
		"order":      req.Order,
	}

	response, err := s.makeRequest(ctx, ENDPOINT_COMMENT_THREADS, params)
	if err != nil {
		return nil, fmt.Errorf("error comment threads: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, parseStatusError(ENDPOINT_COMMENT_THREADS, response)
	}
	return response.RawBody, nil
}

// GetCommentReplies returns the raw comments.list page of replies under one top-level comment.
func (s *YoutubeAPIService) GetCommentReplies(ctx context.Context, req CommentRepliesRequest) ([]byte, error) {
	params := map[string]string{
		"part":       "snippet",
		"parentId":   req.ParentID,
		"pageToken":  req.PageToken,
		"maxResults": maxResults(req.MaxResults),
		"textFormat": textFormat(req.TextFormat),
	}

	response, err := s.makeRequest(ctx, ENDPOINT_COMMENTS, params)
	if err != nil {
		return nil, fmt.Errorf("error comment replies: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, parseStatusError(ENDPOINT_COMMENTS, response)
	}
	return response.RawBody, nil
}

func (s *YoutubeAPIService) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	params := map[string]string{
		"part": "snippet,statistics",
		"id":   videoID,
	}

	response, err := s.makeRequest(ctx, ENDPOINT_VIDEOS, params)
	if err != nil {
		return nil, fmt.Errorf("error video: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return nil, parseStatusError(ENDPOINT_VIDEOS, response)
	}

	item, _, _, err := jsonparser.Get(response.RawBody, "items", "[0]")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}

	video := &Video{ID: videoID}
	video.Title, _ = jsonparser.GetString(item, "snippet", "title")
	video.ChannelTitle, _ = jsonparser.GetString(item, "snippet", "channelTitle")
	video.PublishedAt, _ = jsonparser.GetString(item, "snippet", "publishedAt")
	// statistics counters are JSON strings
	video.CommentCount = statisticsCounter(item, "commentCount")
	video.ViewCount = statisticsCounter(item, "viewCount")
	video.LikeCount = statisticsCounter(item, "likeCount")

	return video, nil
}

func statisticsCounter(item []byte, name string) int64 {
	raw, err := jsonparser.GetString(item, "statistics", name)
	if err != nil {
		return 0
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return value
}

func parseStatusError(endpoint string, response *APIResponse) *StatusError {
	statusError := &StatusError{
		Endpoint:   endpoint,
		StatusCode: response.StatusCode,
	}
	message, err := jsonparser.GetString(response.RawBody, "error", "message")
	if err != nil {
		message = strings.TrimSpace(string(response.RawBody))
		if len(message) > 200 {
			message = message[:200]
		}
	}
	statusError.Message = message
	statusError.Reason, _ = jsonparser.GetString(response.RawBody, "error", "errors", "[0]", "reason")
	return statusError
}

func maxResults(n int) string {
	if n <= 0 || n > MAX_RESULTS_LIMIT {
		n = MAX_RESULTS_LIMIT
	}
	return strconv.Itoa(n)
}

func textFormat(format string) string {
	if format == "" {
		return TEXT_FORMAT_PLAIN
	}
	return format
}
