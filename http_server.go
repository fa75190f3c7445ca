package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/grutapig/ytscraper/comments"
	"github.com/grutapig/ytscraper/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const HEADER_YOUTUBE_API_KEY = "X-YouTube-API-Key"
const HTTP_SCRAPE_TIMEOUT = 10 * time.Minute

type HTTPServer struct {
	addr             string
	allowKeyOverride bool
	scraper          scraper
	runs             runLister
	router           *gin.Engine
	server           *http.Server
}

func NewHTTPServer(addr string, allowKeyOverride bool, scrapeService *ScrapeService, dbService *DatabaseService) *HTTPServer {
	return newHTTPServer(addr, allowKeyOverride, scrapeService, dbService)
}

func newHTTPServer(addr string, allowKeyOverride bool, scraper scraper, runs runLister) *HTTPServer {
	h := &HTTPServer{
		addr:             addr,
		allowKeyOverride: allowKeyOverride,
		scraper:          scraper,
		runs:             runs,
	}
	h.router = h.setupRouter()
	h.server = &http.Server{
		Addr:    addr,
		Handler: h.router,
	}
	return h
}

func (h *HTTPServer) setupRouter() *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", HEADER_YOUTUBE_API_KEY}
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.ExposeHeaders = []string{"Content-Disposition"}
	r.Use(cors.New(config))
	r.Use(PrometheusMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "ytscraper",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/comments", h.getComments)
		api.GET("/comments.csv", h.getCommentsCSV)
		api.GET("/runs", h.listRuns)
		api.GET("/runs/:id/csv", h.getRunCSV)
	}

	return r
}

func (h *HTTPServer) Router() http.Handler {
	return h.router
}

// Start blocks until the server stops.
func (h *HTTPServer) Start() error {
	log.Printf("HTTP API listening on %s", h.addr)
	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

func (h *HTTPServer) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// PrometheusMiddleware records request counts and latencies per route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HttpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HttpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func (h *HTTPServer) scrapeRequest(c *gin.Context) (ScrapeRequest, bool) {
	input := c.Query("url")
	if input == "" {
		input = c.Query("videoId")
	}
	if input == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url or videoId is required"})
		return ScrapeRequest{}, false
	}

	mode := c.Query("mode")
	if _, err := comments.ParseReplyMode(mode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return ScrapeRequest{}, false
	}

	req := ScrapeRequest{
		Input:     input,
		Mode:      mode,
		Analytics: c.Query("analytics") == "true" || c.Query("analytics") == "1",
		Source:    SOURCE_HTTP,
	}
	if key := c.GetHeader(HEADER_YOUTUBE_API_KEY); key != "" {
		if !h.allowKeyOverride {
			c.JSON(http.StatusForbidden, gin.H{"error": "api key override is disabled"})
			return ScrapeRequest{}, false
		}
		req.APIKey = key
	}
	return req, true
}

func (h *HTTPServer) scrape(c *gin.Context) (*ScrapeResult, bool) {
	req, ok := h.scrapeRequest(c)
	if !ok {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), HTTP_SCRAPE_TIMEOUT)
	defer cancel()

	result, err := h.scraper.Scrape(ctx, req)
	if err != nil {
		log.Printf("[ERROR] scrape %s failed: %v", req.Input, err)
		h.writeError(c, err)
		return nil, false
	}
	return result, true
}

func (h *HTTPServer) getComments(c *gin.Context) {
	result, ok := h.scrape(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run":      result.Run,
		"summary":  result.Summary,
		"comments": result.Rows,
	})
}

func (h *HTTPServer) getCommentsCSV(c *gin.Context) {
	result, ok := h.scrape(c)
	if !ok {
		return
	}
	h.writeCSV(c, result)
}

func (h *HTTPServer) listRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}
	runs, err := h.runs.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *HTTPServer) getRunCSV(c *gin.Context) {
	result, err := h.scraper.ExportRun(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.writeCSV(c, result)
}

func (h *HTTPServer) writeCSV(c *gin.Context, result *ScrapeResult) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.FileName))
	c.Header("X-Run-ID", result.Run.UUID)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", result.CSV)
}

func (h *HTTPServer) writeError(c *gin.Context, err error) {
	var remoteErr *comments.RemoteAPIError
	var malformedErr *comments.MalformedResponseError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, comments.ErrInvalidIdentifier):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalid_identifier"})
	case errors.As(err, &remoteErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": "remote_api", "quota": remoteErr.Quota(), "upstream_status": remoteErr.StatusCode()})
	case errors.As(err, &malformedErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "kind": "malformed_response"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
