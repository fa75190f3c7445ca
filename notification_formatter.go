package main

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/grutapig/ytscraper/analysis"
	"github.com/grutapig/ytscraper/comments"
)

type NotificationFormatter struct{}

func NewNotificationFormatter() *NotificationFormatter {
	return &NotificationFormatter{}
}

// FormatScrapeSummary renders the Telegram caption sent with the CSV document.
func (nf *NotificationFormatter) FormatScrapeSummary(result *ScrapeResult) string {
	run := result.Run
	summary := result.Summary

	title := run.VideoID
	if run.VideoTitle != "" {
		title = run.VideoTitle
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ <b>%s</b>\n", html.EscapeString(nf.truncateText(title, 80)))
	fmt.Fprintf(&sb, "🎬 <code>%s</code> · mode %s\n", run.VideoID, run.ReplyMode)
	fmt.Fprintf(&sb, "💬 %d comments, %d replies (%d requests)\n", summary.Total-summary.Replies, summary.Replies, run.RequestCount)

	if run.Analytics && summary.Total > 0 {
		fmt.Fprintf(&sb, "%s positive %d · %s neutral %d · %s negative %d\n",
			nf.getSentimentEmoji(analysis.SentimentPositive), summary.Positive,
			nf.getSentimentEmoji(analysis.SentimentNeutral), summary.Neutral,
			nf.getSentimentEmoji(analysis.SentimentNegative), summary.Negative)
	}
	if summary.TopLiked != nil && summary.TopLiked.LikeCount > 0 {
		fmt.Fprintf(&sb, "👍 Top: <i>%s</i> - %s (%d likes)\n",
			html.EscapeString(nf.truncateText(summary.TopLiked.Text, 120)),
			html.EscapeString(summary.TopLiked.Author),
			summary.TopLiked.LikeCount)
	}
	fmt.Fprintf(&sb, "🆔 <code>%s</code>", run.UUID)
	return sb.String()
}

func (nf *NotificationFormatter) FormatRunList(runs []ScrapeRunModel) string {
	if len(runs) == 0 {
		return "No scrape runs yet. Send a YouTube link to start."
	}

	var sb strings.Builder
	sb.WriteString("📋 <b>Recent runs</b>\n\n")
	for _, run := range runs {
		title := run.VideoID
		if run.VideoTitle != "" {
			title = nf.truncateText(run.VideoTitle, 40)
		}
		fmt.Fprintf(&sb, "%s <b>%s</b> · %d rows · %s\n<code>%s</code>\n",
			nf.getStatusEmoji(run.Status),
			html.EscapeString(title),
			run.TotalCount(),
			nf.formatTime(run.StartedAt),
			run.UUID)
	}
	return sb.String()
}

// FormatError turns a scrape failure into a message for the user.
func (nf *NotificationFormatter) FormatError(err error) string {
	var remoteErr *comments.RemoteAPIError
	var malformedErr *comments.MalformedResponseError

	switch {
	case errors.Is(err, comments.ErrInvalidIdentifier):
		return "❌ Invalid YouTube URL. Send a link like https://www.youtube.com/watch?v=ID or https://youtu.be/ID"
	case errors.As(err, &remoteErr) && remoteErr.Quota():
		return "⛔ YouTube API quota exceeded. Try again after the daily quota resets."
	case errors.As(err, &remoteErr):
		return fmt.Sprintf("❌ YouTube API error: %s", html.EscapeString(nf.truncateText(remoteErr.Err.Error(), 300)))
	case errors.As(err, &malformedErr):
		return fmt.Sprintf("❌ Unexpected YouTube response: %s", html.EscapeString(malformedErr.Error()))
	default:
		return fmt.Sprintf("❌ Error: %s", html.EscapeString(nf.truncateText(err.Error(), 300)))
	}
}

func (nf *NotificationFormatter) getSentimentEmoji(sentiment analysis.Sentiment) string {
	switch sentiment {
	case analysis.SentimentPositive:
		return "😊"
	case analysis.SentimentNegative:
		return "😠"
	default:
		return "😐"
	}
}

func (nf *NotificationFormatter) getStatusEmoji(status string) string {
	switch status {
	case RUN_STATUS_DONE:
		return "✅"
	case RUN_STATUS_FAILED:
		return "❌"
	default:
		return "⏳"
	}
}

func (nf *NotificationFormatter) truncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength-3]) + "..."
}

func (nf *NotificationFormatter) formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
