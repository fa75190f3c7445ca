package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/grutapig/ytscraper/analysis"
	"github.com/grutapig/ytscraper/comments"
	"github.com/grutapig/ytscraper/csvexport"
	"github.com/grutapig/ytscraper/metrics"
	"github.com/grutapig/ytscraper/youtubeapi"
)

// ListerFactory builds a client for a caller-supplied API key.
type ListerFactory func(apiKey string) (comments.Lister, error)

// VideoGetter is implemented by clients that can look up video metadata.
type VideoGetter interface {
	GetVideo(ctx context.Context, videoID string) (*youtubeapi.Video, error)
}

type ScrapeRequest struct {
	Input     string
	Mode      string
	Analytics bool
	APIKey    string
	Source    string
}

type ScrapeResult struct {
	Run      *ScrapeRunModel
	Rows     []analysis.AnalyzedRecord
	Summary  analysis.Summary
	CSV      []byte
	FileName string
}

type ScrapeService struct {
	config    *Config
	api       comments.Lister
	newLister ListerFactory
	analyzer  analysis.Analyzer
	dbService *DatabaseService
}

func NewScrapeService(config *Config, api comments.Lister, newLister ListerFactory, analyzer analysis.Analyzer, dbService *DatabaseService) *ScrapeService {
	return &ScrapeService{
		config:    config,
		api:       api,
		newLister: newLister,
		analyzer:  analyzer,
		dbService: dbService,
	}
}

// Scrape fetches every comment of the video, stores the run and renders the CSV.
// An unresolvable input fails before any request or run row is made.
func (s *ScrapeService) Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResult, error) {
	videoID, err := comments.ResolveVideoID(req.Input)
	if err != nil {
		return nil, err
	}

	mode := s.config.ReplyMode
	if req.Mode != "" {
		mode, err = comments.ParseReplyMode(req.Mode)
		if err != nil {
			return nil, err
		}
	}

	api := s.api
	if req.APIKey != "" {
		if s.newLister == nil {
			return nil, errors.New("api key override is not supported")
		}
		api, err = s.newLister(req.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create youtube client: %w", err)
		}
	}

	run := &ScrapeRunModel{
		UUID:        uuid.New().String(),
		VideoID:     videoID,
		SourceInput: req.Input,
		Source:      req.Source,
		ReplyMode:   mode.String(),
		Analytics:   req.Analytics,
	}
	if videoGetter, ok := api.(VideoGetter); ok {
		if video, err := videoGetter.GetVideo(ctx, videoID); err == nil {
			run.VideoTitle = video.Title
		} else {
			log.Printf("Video lookup for %s failed: %v", videoID, err)
		}
	}
	if err := s.dbService.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to create scrape run: %w", err)
	}
	log.Printf("Scrape run %s started for video %s (mode %s, source %s)", run.UUID, videoID, mode, req.Source)

	fetcher := comments.NewCommentFetcher(api, comments.FetcherConfig{
		PageSize:  s.config.PageSize,
		ReplyMode: mode,
		Order:     s.config.CommentOrder,
		MaxPages:  s.config.MaxPages,
	})

	it := fetcher.Comments(ctx, videoID)
	records := []comments.CommentRecord{}
	for it.Next() {
		records = append(records, it.Record())
	}
	run.RequestCount = it.Requests()
	if err := it.Err(); err != nil {
		s.failRun(run, err)
		return nil, err
	}

	var analyzer analysis.Analyzer
	if req.Analytics {
		analyzer = s.analyzer
	}
	rows, err := analysis.Enrich(ctx, analyzer, records)
	if err != nil {
		s.failRun(run, err)
		return nil, err
	}

	data, err := csvexport.Render(rows, s.exportOptions(req.Analytics))
	if err != nil {
		s.failRun(run, err)
		return nil, err
	}

	if err := s.dbService.SaveComments(run.UUID, rows); err != nil {
		s.failRun(run, err)
		return nil, fmt.Errorf("failed to save comments: %w", err)
	}

	for _, row := range rows {
		if row.IsReply {
			run.RepliesCount++
		} else {
			run.TopLevelCount++
		}
	}
	finished := time.Now()
	run.Status = RUN_STATUS_DONE
	run.FinishedAt = &finished
	if err := s.dbService.SaveRun(run); err != nil {
		log.Printf("Failed to mark run %s done: %v", run.UUID, err)
	}
	metrics.ScrapeRuns.WithLabelValues(RUN_STATUS_DONE).Inc()
	log.Printf("Scrape run %s done: %d comments, %d replies, %d requests", run.UUID, run.TopLevelCount, run.RepliesCount, run.RequestCount)

	return &ScrapeResult{
		Run:      run,
		Rows:     rows,
		Summary:  analysis.Summarize(rows),
		CSV:      data,
		FileName: csvexport.FileName(videoID, req.Analytics),
	}, nil
}

// ExportRun renders a stored run again without touching the API.
func (s *ScrapeService) ExportRun(runUUID string) (*ScrapeResult, error) {
	run, err := s.dbService.GetRun(runUUID)
	if err != nil {
		return nil, fmt.Errorf("run %s not found: %w", runUUID, err)
	}
	if run.Status != RUN_STATUS_DONE {
		return nil, fmt.Errorf("run %s is %s", runUUID, run.Status)
	}

	rows, err := s.dbService.GetRunComments(runUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}

	data, err := csvexport.Render(rows, s.exportOptions(run.Analytics))
	if err != nil {
		return nil, err
	}

	return &ScrapeResult{
		Run:      run,
		Rows:     rows,
		Summary:  analysis.Summarize(rows),
		CSV:      data,
		FileName: csvexport.FileName(run.VideoID, run.Analytics),
	}, nil
}

func (s *ScrapeService) exportOptions(analytics bool) csvexport.Options {
	return csvexport.Options{
		Header:    s.config.CSVHeader,
		Analytics: analytics,
	}
}

func (s *ScrapeService) failRun(run *ScrapeRunModel, cause error) {
	finished := time.Now()
	run.Status = RUN_STATUS_FAILED
	run.ErrorMessage = cause.Error()
	run.FinishedAt = &finished
	if err := s.dbService.SaveRun(run); err != nil {
		log.Printf("Failed to mark run %s failed: %v", run.UUID, err)
	}
	metrics.ScrapeRuns.WithLabelValues(RUN_STATUS_FAILED).Inc()
	log.Printf("Scrape run %s failed: %v", run.UUID, cause)
}
