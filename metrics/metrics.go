package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytscraper_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ytscraper_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// YoutubeAPIRequests counts calls to the Data API by endpoint and HTTP status ("error" on transport failure).
	YoutubeAPIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytscraper_youtube_api_requests_total",
			Help: "Total number of YouTube Data API requests",
		},
		[]string{"endpoint", "status"},
	)

	YoutubeAPIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ytscraper_youtube_api_request_duration_seconds",
			Help:    "YouTube Data API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CommentsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytscraper_comments_fetched_total",
			Help: "Total number of comment records produced",
		},
		[]string{"kind"},
	)

	ScrapeRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytscraper_scrape_runs_total",
			Help: "Total number of scrape runs by final status",
		},
		[]string{"status"},
	)

	SentimentBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytscraper_sentiment_batches_total",
			Help: "Total number of sentiment analysis batches",
		},
		[]string{"analyzer", "status"},
	)
)
