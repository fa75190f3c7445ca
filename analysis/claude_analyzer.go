package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/grutapig/ytscraper/claude"
	"github.com/grutapig/ytscraper/metrics"
	"golang.org/x/sync/errgroup"
)

const DEFAULT_CLAUDE_BATCH_SIZE = 50
const DEFAULT_CLAUDE_CONCURRENCY = 3

// SENTIMENT_MAX_TOKENS fits the label array of a full batch.
const SENTIMENT_MAX_TOKENS = 1024

const SENTIMENT_SYSTEM_PROMPT = `You label the sentiment of YouTube comments.
You receive a JSON array of objects {"i": index, "text": comment}.
Label every comment independently as exactly one of "Positive", "Neutral" or "Negative".
Respond with JSON only, in the format {"labels":["Positive","Neutral",...]}, one label per input comment, in input order.`

type MessageSender interface {
	SendMessage(ctx context.Context, messages claude.ClaudeMessages, systemMessage string) (*claude.ClaudeMessageResponse, error)
}

type ClaudeAnalyzer struct {
	api         MessageSender
	batchSize   int
	concurrency int
}

func NewClaudeAnalyzer(api MessageSender, batchSize int, concurrency int) *ClaudeAnalyzer {
	if batchSize <= 0 {
		batchSize = DEFAULT_CLAUDE_BATCH_SIZE
	}
	if concurrency <= 0 {
		concurrency = DEFAULT_CLAUDE_CONCURRENCY
	}
	return &ClaudeAnalyzer{api: api, batchSize: batchSize, concurrency: concurrency}
}

type sentimentInput struct {
	Index int    `json:"i"`
	Text  string `json:"text"`
}

type sentimentOutput struct {
	Labels []string `json:"labels"`
}

func (a *ClaudeAnalyzer) Analyze(ctx context.Context, texts []string) ([]Sentiment, error) {
	labels := make([]Sentiment, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for start := 0; start < len(texts); start += a.batchSize {
		end := min(start+a.batchSize, len(texts))
		g.Go(func() error {
			batch, err := a.analyzeBatch(gctx, texts[start:end])
			if err != nil {
				metrics.SentimentBatches.WithLabelValues("claude", "error").Inc()
				return fmt.Errorf("batch %d-%d: %w", start, end, err)
			}
			metrics.SentimentBatches.WithLabelValues("claude", "ok").Inc()
			copy(labels[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return labels, nil
}

func (a *ClaudeAnalyzer) analyzeBatch(ctx context.Context, texts []string) ([]Sentiment, error) {
	inputs := make([]sentimentInput, len(texts))
	for i, text := range texts {
		inputs[i] = sentimentInput{Index: i, Text: text}
	}
	payload, err := json.Marshal(inputs)
	if err != nil {
		return nil, err
	}

	response, err := a.api.SendMessage(ctx, claude.ClaudeMessages{
		{Role: claude.ROLE_USER, Content: string(payload)},
		{Role: claude.ROLE_ASSISTANT, Content: "{"},
	}, SENTIMENT_SYSTEM_PROMPT)
	if err != nil {
		return nil, err
	}

	var output sentimentOutput
	if err := json.Unmarshal([]byte("{"+response.Text()), &output); err != nil {
		log.Printf("claude sentiment: unparsable response: %s", response.Text())
		return nil, fmt.Errorf("unmarshal sentiment response: %w", err)
	}
	if len(output.Labels) != len(texts) {
		return nil, fmt.Errorf("expected %d labels, got %d", len(texts), len(output.Labels))
	}

	result := make([]Sentiment, len(texts))
	for i, label := range output.Labels {
		sentiment, err := ParseSentiment(label)
		if err != nil {
			return nil, err
		}
		result[i] = sentiment
	}
	return result, nil
}
