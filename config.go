package main

import "github.com/grutapig/ytscraper/youtubeapi"

const ENV_YOUTUBE_API_KEY = youtubeapi.ENV_YOUTUBE_API_KEY
const ENV_YOUTUBE_API_BASE_URL = youtubeapi.ENV_YOUTUBE_API_BASE_URL
const ENV_PROXY_DSN = youtubeapi.ENV_PROXY_DSN
const ENV_PROXY_CLAUDE_DSN = "proxy_claude_dsn"
const ENV_CLAUDE_API_KEY = "claude_api_key"
const ENV_CLAUDE_MODEL = "claude_model"
const ENV_CLAUDE_API_URL = "claude_api_url"
const ENV_TELEGRAM_API_KEY = "telegram_api_key"
const ENV_TELEGRAM_ADMIN_CHAT_ID = "tg_admin_chat_id" // comma-separated, empty allows every chat
const ENV_DATABASE_NAME = "database_name"
const ENV_HTTP_ADDR = "http_addr"
const ENV_ALLOW_KEY_OVERRIDE = "allow_key_override"

// Fetch settings
const ENV_REPLY_MODE = "reply_mode" // "followup", "inline" or "none"
const ENV_PAGE_SIZE = "page_size"
const ENV_MAX_PAGES = "max_pages"
const ENV_COMMENT_ORDER = "comment_order" // "time" or "relevance"

// Export and analysis settings
const ENV_SENTIMENT_ANALYZER = "sentiment_analyzer" // "lexicon", "claude" or "none"
const ENV_CSV_HEADER = "csv_header"
const ENV_CLEANUP_DAYS = "cleanup_days"
const ENV_IMPORT_CSV_PATH = "import_csv_path"
const ENV_IMPORT_VIDEO_ID = "import_video_id"

const SENTIMENT_ANALYZER_LEXICON = "lexicon"
const SENTIMENT_ANALYZER_CLAUDE = "claude"
const SENTIMENT_ANALYZER_NONE = "none"

// Scrape sources
const SOURCE_TELEGRAM = "telegram"
const SOURCE_HTTP = "http"
const SOURCE_IMPORT = "import"

const DEFAULT_DATABASE_NAME = "ytscraper.db"
const DEFAULT_HTTP_ADDR = ":8080"
const DEFAULT_CLEANUP_DAYS = 30
