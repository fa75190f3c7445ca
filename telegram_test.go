package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grutapig/ytscraper/analysis"
	"github.com/grutapig/ytscraper/comments"
	"github.com/grutapig/ytscraper/youtubeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}

func (b *fakeBot) StopReceivingUpdates() {}

func (b *fakeBot) texts() []string {
	texts := []string{}
	for _, c := range b.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func (b *fakeBot) documents() []tgbotapi.DocumentConfig {
	docs := []tgbotapi.DocumentConfig{}
	for _, c := range b.sent {
		if doc, ok := c.(tgbotapi.DocumentConfig); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

type fakeScraper struct {
	requests []ScrapeRequest
	exported []string
	err      error
}

func (s *fakeScraper) result(videoID string, analytics bool) *ScrapeResult {
	rows := []analysis.AnalyzedRecord{{CommentRecord: comments.CommentRecord{Author: "alice", Text: "great <b>video</b>", LikeCount: 3}}}
	return &ScrapeResult{
		Run:      &ScrapeRunModel{UUID: "run-1", VideoID: videoID, ReplyMode: "followup", Status: RUN_STATUS_DONE, Analytics: analytics, TopLevelCount: 1},
		Rows:     rows,
		Summary:  analysis.Summarize(rows),
		CSV:      []byte("Name,Comment\nalice,great\n"),
		FileName: "youtube_comments_" + videoID + ".csv",
	}
}

func (s *fakeScraper) Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResult, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	videoID, err := comments.ResolveVideoID(req.Input)
	if err != nil {
		return nil, err
	}
	return s.result(videoID, req.Analytics), nil
}

func (s *fakeScraper) ExportRun(runUUID string) (*ScrapeResult, error) {
	s.exported = append(s.exported, runUUID)
	if s.err != nil {
		return nil, s.err
	}
	return s.result("stored", false), nil
}

type fakeRuns struct {
	runs []ScrapeRunModel
}

func (r *fakeRuns) ListRuns(limit int) ([]ScrapeRunModel, error) {
	if limit < len(r.runs) {
		return r.runs[:limit], nil
	}
	return r.runs, nil
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}}
	if strings.HasPrefix(text, "/") {
		command := strings.Fields(text)[0]
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	}
	return tgbotapi.Update{Message: msg}
}

func setupTelegram(t *testing.T, allowed string) (*TelegramService, *fakeBot, *fakeScraper) {
	bot := &fakeBot{}
	scraper := &fakeScraper{}
	runs := &fakeRuns{runs: []ScrapeRunModel{{UUID: "run-1", VideoID: "abc", Status: RUN_STATUS_DONE}}}
	return newTelegramService(bot, allowed, NewNotificationFormatter(), scraper, runs), bot, scraper
}

func TestTelegramService_ScrapeLink(t *testing.T) {
	service, bot, scraper := setupTelegram(t, "")

	service.handleUpdate(context.Background(), textUpdate(42, "https://www.youtube.com/watch?v=ABC123&t=5s"))

	require.Len(t, scraper.requests, 1)
	assert.Equal(t, "https://www.youtube.com/watch?v=ABC123&t=5s", scraper.requests[0].Input)
	assert.True(t, scraper.requests[0].Analytics)
	assert.Equal(t, SOURCE_TELEGRAM, scraper.requests[0].Source)

	docs := bot.documents()
	require.Len(t, docs, 1)
	assert.Equal(t, int64(42), docs[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, docs[0].ParseMode)
	assert.Contains(t, docs[0].Caption, "run-1")
	assert.Contains(t, docs[0].Caption, "great &lt;b&gt;video&lt;/b&gt;")

	file, ok := docs[0].File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "youtube_comments_ABC123.csv", file.Name)
}

func TestTelegramService_ScrapeCommand(t *testing.T) {
	service, _, scraper := setupTelegram(t, "")

	service.handleUpdate(context.Background(), textUpdate(1, "/scrape https://youtu.be/XYZ789 inline plain"))

	require.Len(t, scraper.requests, 1)
	assert.Equal(t, "inline", scraper.requests[0].Mode)
	assert.False(t, scraper.requests[0].Analytics)
}

func TestTelegramService_InvalidInput(t *testing.T) {
	service, bot, scraper := setupTelegram(t, "")

	t.Run("NotALink", func(t *testing.T) {
		service.handleUpdate(context.Background(), textUpdate(1, "hello there"))
		assert.Empty(t, scraper.requests)
		assert.Contains(t, bot.texts()[len(bot.texts())-1], "Invalid YouTube URL")
	})

	t.Run("UnknownMode", func(t *testing.T) {
		service.handleUpdate(context.Background(), textUpdate(1, "/scrape https://youtu.be/XYZ789 everything"))
		assert.Empty(t, scraper.requests)
	})

	t.Run("MissingArgument", func(t *testing.T) {
		service.handleUpdate(context.Background(), textUpdate(1, "/scrape"))
		assert.Contains(t, bot.texts()[len(bot.texts())-1], "Usage")
	})
}

func TestTelegramService_ScrapeError(t *testing.T) {
	service, bot, scraper := setupTelegram(t, "")
	scraper.err = &comments.RemoteAPIError{Op: "commentThreads", Err: &youtubeapi.StatusError{StatusCode: 403, Reason: youtubeapi.REASON_QUOTA_EXCEEDED}}

	service.handleUpdate(context.Background(), textUpdate(1, "https://youtu.be/XYZ789"))

	assert.Empty(t, bot.documents())
	texts := bot.texts()
	assert.Contains(t, texts[len(texts)-1], "quota exceeded")
}

func TestTelegramService_RunsAndExport(t *testing.T) {
	service, bot, scraper := setupTelegram(t, "")

	service.handleUpdate(context.Background(), textUpdate(1, "/runs 5"))
	assert.Contains(t, bot.texts()[0], "run-1")

	service.handleUpdate(context.Background(), textUpdate(1, "/export run-1"))
	assert.Equal(t, []string{"run-1"}, scraper.exported)
	assert.Len(t, bot.documents(), 1)

	scraper.err = errors.New("run run-2 not found")
	service.handleUpdate(context.Background(), textUpdate(1, "/export run-2"))
	texts := bot.texts()
	assert.Contains(t, texts[len(texts)-1], "not found")
}

func TestTelegramService_AllowedChats(t *testing.T) {
	service, bot, scraper := setupTelegram(t, "100, 200,bad")

	service.handleUpdate(context.Background(), textUpdate(300, "https://youtu.be/XYZ789"))
	assert.Empty(t, bot.sent)
	assert.Empty(t, scraper.requests)

	service.handleUpdate(context.Background(), textUpdate(200, "/help"))
	require.Len(t, bot.texts(), 1)
	assert.Contains(t, bot.texts()[0], "YouTube comment scraper")
}

func TestTelegramService_Disabled(t *testing.T) {
	service := newTelegramService(nil, "", NewNotificationFormatter(), &fakeScraper{}, &fakeRuns{})
	assert.False(t, service.Enabled())
	service.StartListening()
	service.StopListening()
}
