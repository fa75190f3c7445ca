package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/grutapig/ytscraper/analysis"
	"github.com/grutapig/ytscraper/claude"
	"github.com/grutapig/ytscraper/comments"
	"github.com/grutapig/ytscraper/youtubeapi"
	"go.uber.org/dig"
)

type Config struct {
	YoutubeAPIKey       string
	YoutubeAPIBaseURL   string
	ProxyDSN            string
	ClaudeAPIKey        string
	ClaudeModel         string
	ClaudeAPIURL        string
	ProxyClaudeDSN      string
	TelegramAPIKey      string
	TelegramAdminChatID string
	DatabaseName        string
	HTTPAddr            string
	AllowKeyOverride    bool
	ReplyMode           comments.ReplyMode
	PageSize            int
	MaxPages            int
	CommentOrder        string
	SentimentAnalyzer   string
	CSVHeader           bool
	CleanupDays         int
	ImportCSVPath       string
	ImportVideoID       string
}

func ProvideConfig() (*Config, error) {
	apiKey := os.Getenv(ENV_YOUTUBE_API_KEY)
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key should be set .env: %s", ENV_YOUTUBE_API_KEY)
	}

	replyMode, err := comments.ParseReplyMode(os.Getenv(ENV_REPLY_MODE))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", ENV_REPLY_MODE, err)
	}

	pageSize, err := envInt(ENV_PAGE_SIZE, comments.DEFAULT_PAGE_SIZE)
	if err != nil {
		return nil, err
	}
	maxPages, err := envInt(ENV_MAX_PAGES, 0)
	if err != nil {
		return nil, err
	}
	cleanupDays, err := envInt(ENV_CLEANUP_DAYS, DEFAULT_CLEANUP_DAYS)
	if err != nil {
		return nil, err
	}

	analyzer := strings.ToLower(os.Getenv(ENV_SENTIMENT_ANALYZER))
	switch analyzer {
	case "":
		analyzer = SENTIMENT_ANALYZER_LEXICON
	case SENTIMENT_ANALYZER_LEXICON, SENTIMENT_ANALYZER_CLAUDE, SENTIMENT_ANALYZER_NONE:
	default:
		return nil, fmt.Errorf("invalid %s: %q", ENV_SENTIMENT_ANALYZER, analyzer)
	}
	if analyzer == SENTIMENT_ANALYZER_CLAUDE && os.Getenv(ENV_CLAUDE_API_KEY) == "" {
		return nil, fmt.Errorf("%s=claude requires %s", ENV_SENTIMENT_ANALYZER, ENV_CLAUDE_API_KEY)
	}

	dbName := os.Getenv(ENV_DATABASE_NAME)
	if dbName == "" {
		dbName = DEFAULT_DATABASE_NAME
	}

	httpAddr := os.Getenv(ENV_HTTP_ADDR)
	if httpAddr == "" {
		httpAddr = DEFAULT_HTTP_ADDR
	}

	return &Config{
		YoutubeAPIKey:       apiKey,
		YoutubeAPIBaseURL:   os.Getenv(ENV_YOUTUBE_API_BASE_URL),
		ProxyDSN:            os.Getenv(ENV_PROXY_DSN),
		ClaudeAPIKey:        os.Getenv(ENV_CLAUDE_API_KEY),
		ClaudeModel:         os.Getenv(ENV_CLAUDE_MODEL),
		ClaudeAPIURL:        os.Getenv(ENV_CLAUDE_API_URL),
		ProxyClaudeDSN:      os.Getenv(ENV_PROXY_CLAUDE_DSN),
		TelegramAPIKey:      os.Getenv(ENV_TELEGRAM_API_KEY),
		TelegramAdminChatID: os.Getenv(ENV_TELEGRAM_ADMIN_CHAT_ID),
		DatabaseName:        dbName,
		HTTPAddr:            httpAddr,
		AllowKeyOverride:    os.Getenv(ENV_ALLOW_KEY_OVERRIDE) == "true",
		ReplyMode:           replyMode,
		PageSize:            pageSize,
		MaxPages:            maxPages,
		CommentOrder:        os.Getenv(ENV_COMMENT_ORDER),
		SentimentAnalyzer:   analyzer,
		CSVHeader:           os.Getenv(ENV_CSV_HEADER) != "false",
		CleanupDays:         cleanupDays,
		ImportCSVPath:       os.Getenv(ENV_IMPORT_CSV_PATH),
		ImportVideoID:       os.Getenv(ENV_IMPORT_VIDEO_ID),
	}, nil
}

func envInt(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return value, nil
}

func ProvideYoutubeAPI(config *Config) (*youtubeapi.YoutubeAPIService, error) {
	return youtubeapi.NewYoutubeAPIService(config.YoutubeAPIKey, config.YoutubeAPIBaseURL, config.ProxyDSN)
}

func ProvideListerFactory(config *Config) ListerFactory {
	return func(apiKey string) (comments.Lister, error) {
		return youtubeapi.NewYoutubeAPIService(apiKey, config.YoutubeAPIBaseURL, config.ProxyDSN)
	}
}

func ProvideAnalyzer(config *Config) (analysis.Analyzer, error) {
	switch config.SentimentAnalyzer {
	case SENTIMENT_ANALYZER_CLAUDE:
		claudeApi, err := claude.NewClaudeClient(config.ClaudeAPIKey, config.ProxyClaudeDSN, config.ClaudeModel)
		if err != nil {
			return nil, err
		}
		claudeApi.SetMaxTokens(analysis.SENTIMENT_MAX_TOKENS)
		if config.ClaudeAPIURL != "" {
			claudeApi.SetAPIURL(config.ClaudeAPIURL)
		}
		log.Printf("Sentiment analysis: claude")
		return analysis.NewClaudeAnalyzer(claudeApi, analysis.DEFAULT_CLAUDE_BATCH_SIZE, analysis.DEFAULT_CLAUDE_CONCURRENCY), nil
	case SENTIMENT_ANALYZER_NONE:
		log.Printf("Sentiment analysis: disabled")
		return nil, nil
	default:
		log.Printf("Sentiment analysis: lexicon")
		return analysis.NewLexiconAnalyzer(), nil
	}
}

func ProvideDatabaseService(config *Config) (*DatabaseService, error) {
	return NewDatabaseService(config.DatabaseName)
}

func ProvideScrapeService(config *Config, api *youtubeapi.YoutubeAPIService, factory ListerFactory, analyzer analysis.Analyzer, dbService *DatabaseService) *ScrapeService {
	return NewScrapeService(config, api, factory, analyzer, dbService)
}

func ProvideNotificationFormatter() *NotificationFormatter {
	return NewNotificationFormatter()
}

func ProvideTelegramService(config *Config, formatter *NotificationFormatter, scrapeService *ScrapeService, dbService *DatabaseService) (*TelegramService, error) {
	return NewTelegramService(config.TelegramAPIKey, config.TelegramAdminChatID, formatter, scrapeService, dbService)
}

func ProvideHTTPServer(config *Config, scrapeService *ScrapeService, dbService *DatabaseService) *HTTPServer {
	return NewHTTPServer(config.HTTPAddr, config.AllowKeyOverride, scrapeService, dbService)
}

func ProvideCleanupScheduler(config *Config, dbService *DatabaseService) *CleanupScheduler {
	return NewCleanupScheduler(dbService, config.CleanupDays)
}

func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(ProvideConfig); err != nil {
		return nil, fmt.Errorf("failed to provide config: %w", err)
	}

	if err := container.Provide(ProvideYoutubeAPI); err != nil {
		return nil, fmt.Errorf("failed to provide YouTube API: %w", err)
	}

	if err := container.Provide(ProvideListerFactory); err != nil {
		return nil, fmt.Errorf("failed to provide YouTube API factory: %w", err)
	}

	if err := container.Provide(ProvideAnalyzer); err != nil {
		return nil, fmt.Errorf("failed to provide sentiment analyzer: %w", err)
	}

	if err := container.Provide(ProvideDatabaseService); err != nil {
		return nil, fmt.Errorf("failed to provide database service: %w", err)
	}

	if err := container.Provide(ProvideScrapeService); err != nil {
		return nil, fmt.Errorf("failed to provide scrape service: %w", err)
	}

	if err := container.Provide(ProvideNotificationFormatter); err != nil {
		return nil, fmt.Errorf("failed to provide notification formatter: %w", err)
	}

	if err := container.Provide(ProvideTelegramService); err != nil {
		return nil, fmt.Errorf("failed to provide Telegram service: %w", err)
	}

	if err := container.Provide(ProvideHTTPServer); err != nil {
		return nil, fmt.Errorf("failed to provide HTTP server: %w", err)
	}

	if err := container.Provide(ProvideCleanupScheduler); err != nil {
		return nil, fmt.Errorf("failed to provide cleanup scheduler: %w", err)
	}

	if err := container.Provide(NewApplication); err != nil {
		return nil, fmt.Errorf("failed to provide application: %w", err)
	}

	return container, nil
}
