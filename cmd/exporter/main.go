package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grutapig/ytscraper/analysis"
	"github.com/grutapig/ytscraper/claude"
	"github.com/grutapig/ytscraper/comments"
	"github.com/grutapig/ytscraper/csvexport"
	"github.com/grutapig/ytscraper/youtubeapi"
	"github.com/joho/godotenv"
)

const ENV_CLAUDE_API_KEY = "claude_api_key"
const ENV_CLAUDE_MODEL = "claude_model"
const ENV_PROXY_CLAUDE_DSN = "proxy_claude_dsn"
const ENV_CLAUDE_API_URL = "claude_api_url"

// OUT_STDOUT as -out streams the CSV to standard output.
const OUT_STDOUT = "-"

var stdout io.Writer = os.Stdout

type options struct {
	configFile string
	input      string
	out        string
	mode       string
	order      string
	textFormat string
	pageSize   int
	maxPages   int
	header     bool
	analytics  bool
	analyzer   string
	analyzeCSV string
	legacy     bool
}

func main() {
	opts := options{}
	flag.StringVar(&opts.configFile, "config", ".env", "Configuration file to load")
	flag.StringVar(&opts.input, "url", "", "YouTube video URL or bare video id")
	flag.StringVar(&opts.input, "video", "", "Alias for -url")
	flag.StringVar(&opts.out, "out", "", "Output CSV path, - for stdout (default: youtube_comments_<id>.csv)")
	flag.StringVar(&opts.mode, "mode", "followup", "Reply mode: followup, inline or none")
	flag.StringVar(&opts.order, "order", "", "Thread order: time or relevance")
	flag.StringVar(&opts.textFormat, "text-format", "plain", "Comment text format: plain or html")
	flag.IntVar(&opts.pageSize, "page-size", comments.DEFAULT_PAGE_SIZE, "Comments per page (1-100)")
	flag.IntVar(&opts.maxPages, "max-pages", 0, "Stop after this many thread pages (0 = no limit)")
	flag.BoolVar(&opts.header, "header", true, "Write the header row")
	flag.BoolVar(&opts.analytics, "analytics", false, "Add Sentiment and EngagementScore columns")
	flag.StringVar(&opts.analyzer, "analyzer", "lexicon", "Sentiment analyzer: lexicon or claude")
	flag.StringVar(&opts.analyzeCSV, "analyze-csv", "", "Enrich an existing export instead of scraping")
	flag.BoolVar(&opts.legacy, "legacy", false, "Leave the reply count of reply rows empty")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "YouTube comment exporter\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -url https://youtu.be/dQw4w9WgXcQ\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -url dQw4w9WgXcQ -mode none -analytics -out rick.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -analyze-csv youtube_comments.csv -analyzer claude\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -url dQw4w9WgXcQ -text-format html -out - > comments.csv\n", os.Args[0])
	}
	flag.Parse()

	if opts.configFile != "" {
		if err := godotenv.Load(opts.configFile); err != nil {
			log.Printf("Warning: Failed to load config file %s: %v", opts.configFile, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if opts.analyzeCSV != "" {
		err = analyzeFile(ctx, opts)
	} else {
		err = export(ctx, opts)
	}
	if err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func export(ctx context.Context, opts options) error {
	if opts.input == "" {
		flag.Usage()
		return fmt.Errorf("-url is required")
	}
	videoID, err := comments.ResolveVideoID(opts.input)
	if err != nil {
		return err
	}
	mode, err := comments.ParseReplyMode(opts.mode)
	if err != nil {
		return err
	}
	textFormat, err := parseTextFormat(opts.textFormat)
	if err != nil {
		return err
	}

	apiKey := os.Getenv(youtubeapi.ENV_YOUTUBE_API_KEY)
	if apiKey == "" {
		return fmt.Errorf("youtube api key should be set .env: %s", youtubeapi.ENV_YOUTUBE_API_KEY)
	}
	api, err := youtubeapi.NewYoutubeAPIService(apiKey, os.Getenv(youtubeapi.ENV_YOUTUBE_API_BASE_URL), os.Getenv(youtubeapi.ENV_PROXY_DSN))
	if err != nil {
		return err
	}

	fetcher := comments.NewCommentFetcher(api, comments.FetcherConfig{
		PageSize:   opts.pageSize,
		ReplyMode:  mode,
		TextFormat: textFormat,
		Order:      opts.order,
		MaxPages:   opts.maxPages,
	})
	config := fetcher.Config()
	log.Printf("🚀 Exporting comments of video %s (mode %s, %d per page, %s)", videoID, config.ReplyMode, config.PageSize, config.TextFormat)
	started := time.Now()

	it := fetcher.Comments(ctx, videoID)
	records := []comments.CommentRecord{}
	for it.Next() {
		records = append(records, it.Record())
		if len(records)%500 == 0 {
			log.Printf("📄 %d comments so far (%d requests)", len(records), it.Requests())
		}
	}
	if err := it.Err(); err != nil {
		return err
	}

	rows, err := enrich(ctx, opts, records)
	if err != nil {
		return err
	}

	path := opts.out
	if path == "" {
		path = csvexport.FileName(videoID, opts.analytics)
	}
	if err := save(path, rows, opts); err != nil {
		return err
	}

	summary := analysis.Summarize(rows)
	log.Printf("✅ %d comments (%d replies) in %d requests, %v", summary.Total, summary.Replies, it.Requests(), time.Since(started).Round(time.Millisecond))
	return nil
}

func analyzeFile(ctx context.Context, opts options) error {
	file, err := os.Open(opts.analyzeCSV)
	if err != nil {
		return err
	}
	stored, err := csvexport.ReadRecords(file)
	file.Close()
	if err != nil {
		return err
	}

	records := make([]comments.CommentRecord, len(stored))
	for i, row := range stored {
		records[i] = row.CommentRecord
	}
	opts.analytics = true
	rows, err := enrich(ctx, opts, records)
	if err != nil {
		return err
	}

	path := opts.out
	if path == "" {
		path = csvexport.FileName("", true)
	}
	if err := save(path, rows, opts); err != nil {
		return err
	}

	summary := analysis.Summarize(rows)
	log.Printf("✅ %d comments: %d positive, %d neutral, %d negative", summary.Total, summary.Positive, summary.Neutral, summary.Negative)
	return nil
}

func save(path string, rows []analysis.AnalyzedRecord, opts options) error {
	if path == OUT_STDOUT {
		return csvexport.Write(stdout, rows, exportOptions(opts))
	}
	if err := csvexport.WriteFile(path, rows, exportOptions(opts)); err != nil {
		return err
	}
	log.Printf("💾 Saved to %s", path)
	return nil
}

func parseTextFormat(value string) (string, error) {
	switch value {
	case "", "plain", youtubeapi.TEXT_FORMAT_PLAIN:
		return youtubeapi.TEXT_FORMAT_PLAIN, nil
	case youtubeapi.TEXT_FORMAT_HTML:
		return youtubeapi.TEXT_FORMAT_HTML, nil
	}
	return "", fmt.Errorf("unknown text format %q, expected plain or html", value)
}

func enrich(ctx context.Context, opts options, records []comments.CommentRecord) ([]analysis.AnalyzedRecord, error) {
	if !opts.analytics {
		return analysis.Enrich(ctx, nil, records)
	}
	analyzer, err := newAnalyzer(opts.analyzer)
	if err != nil {
		return nil, err
	}
	return analysis.Enrich(ctx, analyzer, records)
}

func newAnalyzer(name string) (analysis.Analyzer, error) {
	switch name {
	case "lexicon", "":
		return analysis.NewLexiconAnalyzer(), nil
	case "claude":
		apiKey := os.Getenv(ENV_CLAUDE_API_KEY)
		if apiKey == "" {
			return nil, fmt.Errorf("claude analyzer requires %s", ENV_CLAUDE_API_KEY)
		}
		claudeApi, err := claude.NewClaudeClient(apiKey, os.Getenv(ENV_PROXY_CLAUDE_DSN), os.Getenv(ENV_CLAUDE_MODEL))
		if err != nil {
			return nil, err
		}
		claudeApi.SetMaxTokens(analysis.SENTIMENT_MAX_TOKENS)
		if apiURL := os.Getenv(ENV_CLAUDE_API_URL); apiURL != "" {
			claudeApi.SetAPIURL(apiURL)
		}
		return analysis.NewClaudeAnalyzer(claudeApi, analysis.DEFAULT_CLAUDE_BATCH_SIZE, analysis.DEFAULT_CLAUDE_CONCURRENCY), nil
	}
	return nil, fmt.Errorf("unknown analyzer %q, expected lexicon or claude", name)
}

func exportOptions(opts options) csvexport.Options {
	return csvexport.Options{
		Header:          opts.header,
		Analytics:       opts.analytics,
		BlankReplyCount: opts.legacy,
	}
}
