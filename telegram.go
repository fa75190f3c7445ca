package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grutapig/ytscraper/comments"
)

const TELEGRAM_CAPTION_LIMIT = 1024
const TELEGRAM_SCRAPE_TIMEOUT = 30 * time.Minute

type telegramBot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type scraper interface {
	Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResult, error)
	ExportRun(runUUID string) (*ScrapeResult, error)
}

type runLister interface {
	ListRuns(limit int) ([]ScrapeRunModel, error)
}

type TelegramService struct {
	bot          telegramBot
	allowedChats map[int64]bool
	formatter    *NotificationFormatter
	scraper      scraper
	runs         runLister
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

func NewTelegramService(apiKey string, adminChatIDs string, formatter *NotificationFormatter, scrapeService *ScrapeService, dbService *DatabaseService) (*TelegramService, error) {
	var bot telegramBot
	if apiKey != "" {
		botAPI, err := tgbotapi.NewBotAPI(apiKey)
		if err != nil {
			return nil, fmt.Errorf("telegram bot init error: %w", err)
		}
		log.Printf("Authorized on Telegram account %s", botAPI.Self.UserName)
		bot = botAPI
	}
	return newTelegramService(bot, adminChatIDs, formatter, scrapeService, dbService), nil
}

func newTelegramService(bot telegramBot, adminChatIDs string, formatter *NotificationFormatter, scraper scraper, runs runLister) *TelegramService {
	service := &TelegramService{
		bot:          bot,
		allowedChats: make(map[int64]bool),
		formatter:    formatter,
		scraper:      scraper,
		runs:         runs,
	}

	for _, chatIDStr := range strings.Split(adminChatIDs, ",") {
		chatIDStr = strings.TrimSpace(chatIDStr)
		if chatIDStr == "" {
			continue
		}
		if chatID, err := strconv.ParseInt(chatIDStr, 10, 64); err == nil {
			service.allowedChats[chatID] = true
			log.Printf("Added allowed Telegram chat ID: %d", chatID)
		} else {
			log.Printf("Warning: Invalid chat ID format: %s", chatIDStr)
		}
	}

	return service
}

func (t *TelegramService) Enabled() bool {
	return t.bot != nil
}

func (t *TelegramService) StartListening() {
	if !t.Enabled() {
		log.Println("Telegram bot disabled: no api key configured")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		for update := range updates {
			t.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer t.wg.Done()
				t.handleUpdate(ctx, update)
			}(update)
		}
	}()
	log.Println("Telegram bot listening for updates")
}

func (t *TelegramService) StopListening() {
	if !t.Enabled() {
		return
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.bot.StopReceivingUpdates()
	t.wg.Wait()
}

func (t *TelegramService) isAllowed(chatID int64) bool {
	return len(t.allowedChats) == 0 || t.allowedChats[chatID]
}

func (t *TelegramService) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Chat == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if !t.isAllowed(chatID) {
		log.Printf("Ignoring message from chat %d", chatID)
		return
	}

	if !update.Message.IsCommand() {
		fields := strings.Fields(update.Message.Text)
		if len(fields) == 0 {
			return
		}
		if _, err := comments.ExtractVideoID(fields[0]); err != nil {
			t.sendMessage(chatID, t.formatter.FormatError(err))
			return
		}
		t.handleScrape(ctx, chatID, fields)
		return
	}

	args := strings.Fields(update.Message.CommandArguments())
	switch update.Message.Command() {
	case "start", "help":
		t.sendMessage(chatID, helpText)
	case "scrape":
		if len(args) == 0 {
			t.sendMessage(chatID, "Usage: /scrape &lt;url&gt; [inline|followup|none] [plain]")
			return
		}
		t.handleScrape(ctx, chatID, args)
	case "runs":
		t.handleRunsCommand(chatID, args)
	case "export":
		if len(args) == 0 {
			t.sendMessage(chatID, "Usage: /export &lt;run id&gt;")
			return
		}
		t.handleExportCommand(chatID, args[0])
	default:
		t.sendMessage(chatID, "Unknown command. Send /help for usage.")
	}
}

const helpText = `📺 <b>YouTube comment scraper</b>

Send a YouTube link to get every comment and reply as CSV.

/scrape &lt;url&gt; [inline|followup|none] [plain] - scrape with a reply mode; plain skips sentiment
/runs [n] - list recent runs
/export &lt;run id&gt; - download a stored run again
/help - this message`

// handleScrape expects the url first, then optional mode and "plain" keywords.
func (t *TelegramService) handleScrape(ctx context.Context, chatID int64, args []string) {
	req := ScrapeRequest{
		Input:     args[0],
		Analytics: true,
		Source:    SOURCE_TELEGRAM,
	}
	for _, arg := range args[1:] {
		switch strings.ToLower(arg) {
		case "plain":
			req.Analytics = false
		default:
			if _, err := comments.ParseReplyMode(arg); err != nil {
				t.sendMessage(chatID, t.formatter.FormatError(err))
				return
			}
			req.Mode = arg
		}
	}

	if _, err := comments.ResolveVideoID(req.Input); err != nil {
		t.sendMessage(chatID, t.formatter.FormatError(err))
		return
	}

	t.sendMessage(chatID, "⏳ Scraping comments, this can take a while for popular videos...")

	scrapeCtx, cancel := context.WithTimeout(ctx, TELEGRAM_SCRAPE_TIMEOUT)
	defer cancel()

	result, err := t.scraper.Scrape(scrapeCtx, req)
	if err != nil {
		t.sendMessage(chatID, t.formatter.FormatError(err))
		return
	}
	t.sendResult(chatID, result)
}

func (t *TelegramService) handleRunsCommand(chatID int64, args []string) {
	limit := 10
	if len(args) > 0 {
		if l, err := strconv.Atoi(args[0]); err == nil && l > 0 && l <= 50 {
			limit = l
		}
	}

	runs, err := t.runs.ListRuns(limit)
	if err != nil {
		t.sendMessage(chatID, fmt.Sprintf("Error retrieving runs: %v", err))
		return
	}
	t.sendMessage(chatID, t.formatter.FormatRunList(runs))
}

func (t *TelegramService) handleExportCommand(chatID int64, runUUID string) {
	result, err := t.scraper.ExportRun(runUUID)
	if err != nil {
		t.sendMessage(chatID, t.formatter.FormatError(err))
		return
	}
	t.sendResult(chatID, result)
}

func (t *TelegramService) sendResult(chatID int64, result *ScrapeResult) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: result.FileName, Bytes: result.CSV})
	caption := []rune(t.formatter.FormatScrapeSummary(result))
	if len(caption) > TELEGRAM_CAPTION_LIMIT {
		caption = caption[:TELEGRAM_CAPTION_LIMIT]
	}
	doc.Caption = string(caption)
	doc.ParseMode = tgbotapi.ModeHTML

	if _, err := t.bot.Send(doc); err != nil {
		log.Printf("Failed to send document to chat %d: %v", chatID, err)
		t.sendMessage(chatID, fmt.Sprintf("❌ Failed to upload CSV: %v", err))
	}
}

func (t *TelegramService) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}
