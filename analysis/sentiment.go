package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/grutapig/ytscraper/comments"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

func ParseSentiment(value string) (Sentiment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "positive":
		return SentimentPositive, nil
	case "neutral":
		return SentimentNeutral, nil
	case "negative":
		return SentimentNegative, nil
	}
	return "", fmt.Errorf("unknown sentiment label %q", value)
}

// Analyzer labels each text independently; the result has one entry per input, in input order.
type Analyzer interface {
	Analyze(ctx context.Context, texts []string) ([]Sentiment, error)
}

type AnalyzedRecord struct {
	comments.CommentRecord
	Sentiment       Sentiment `json:"sentiment,omitempty"`
	EngagementScore int64     `json:"engagement_score"`
}

// EngagementScore weights a reply twice as much as a like.
func EngagementScore(record comments.CommentRecord) int64 {
	return record.LikeCount + 2*record.ReplyCount
}

// Enrich attaches engagement scores and, when analyzer is not nil, sentiment labels.
func Enrich(ctx context.Context, analyzer Analyzer, records []comments.CommentRecord) ([]AnalyzedRecord, error) {
	analyzed := make([]AnalyzedRecord, len(records))
	for i, record := range records {
		analyzed[i] = AnalyzedRecord{
			CommentRecord:   record,
			EngagementScore: EngagementScore(record),
		}
	}
	if analyzer == nil || len(records) == 0 {
		return analyzed, nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Text
	}
	labels, err := analyzer.Analyze(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("sentiment analysis failed: %w", err)
	}
	if len(labels) != len(records) {
		return nil, fmt.Errorf("sentiment analysis returned %d labels for %d comments", len(labels), len(records))
	}
	for i := range analyzed {
		analyzed[i].Sentiment = labels[i]
	}
	return analyzed, nil
}

type Summary struct {
	Total    int
	Replies  int
	Positive int
	Neutral  int
	Negative int
	TopLiked *AnalyzedRecord
}

func Summarize(records []AnalyzedRecord) Summary {
	summary := Summary{Total: len(records)}
	for i := range records {
		record := &records[i]
		if record.IsReply {
			summary.Replies++
		}
		switch record.Sentiment {
		case SentimentPositive:
			summary.Positive++
		case SentimentNeutral:
			summary.Neutral++
		case SentimentNegative:
			summary.Negative++
		}
		if summary.TopLiked == nil || record.LikeCount > summary.TopLiked.LikeCount {
			summary.TopLiked = record
		}
	}
	return summary
}
