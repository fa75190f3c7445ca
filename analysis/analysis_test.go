package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/grutapig/ytscraper/claude"
	"github.com/grutapig/ytscraper/comments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolarity(t *testing.T) {
	tests := []struct {
		text     string
		expected Sentiment
	}{
		{"This video is awesome, I love it", SentimentPositive},
		{"Worst tutorial ever, total waste of time", SentimentNegative},
		{"Uploaded at 5pm", SentimentNeutral},
		{"", SentimentNeutral},
		{"this is not good", SentimentNegative},
		{"not bad at all", SentimentPositive},
		{"🔥🔥🔥", SentimentPositive},
		{"👎", SentimentNegative},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, labelForPolarity(Polarity(tt.text)))
		})
	}

	t.Run("IntensifierStrengthens", func(t *testing.T) {
		assert.Greater(t, Polarity("very good"), Polarity("good"))
	})

	t.Run("Bounded", func(t *testing.T) {
		p := Polarity("extremely awesome absolutely perfect")
		assert.LessOrEqual(t, p, 1.0)
	})
}

func TestLexiconAnalyzer_Analyze(t *testing.T) {
	labels, err := NewLexiconAnalyzer().Analyze(context.Background(), []string{"great", "meh", "terrible"})
	require.NoError(t, err)
	assert.Equal(t, []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}, labels)
}

func TestEnrich(t *testing.T) {
	records := []comments.CommentRecord{
		{Author: "a", Text: "love this", LikeCount: 10, ReplyCount: 3},
		{Author: "b", Text: "hate this", LikeCount: 1, IsReply: true},
	}

	t.Run("WithoutAnalyzer", func(t *testing.T) {
		analyzed, err := Enrich(context.Background(), nil, records)
		require.NoError(t, err)
		require.Len(t, analyzed, 2)
		assert.Equal(t, int64(16), analyzed[0].EngagementScore)
		assert.Equal(t, int64(1), analyzed[1].EngagementScore)
		assert.Empty(t, analyzed[0].Sentiment)
		assert.Equal(t, "a", analyzed[0].Author)
	})

	t.Run("WithLexicon", func(t *testing.T) {
		analyzed, err := Enrich(context.Background(), NewLexiconAnalyzer(), records)
		require.NoError(t, err)
		assert.Equal(t, SentimentPositive, analyzed[0].Sentiment)
		assert.Equal(t, SentimentNegative, analyzed[1].Sentiment)
	})

	t.Run("LabelCountMismatch", func(t *testing.T) {
		_, err := Enrich(context.Background(), shortAnalyzer{}, records)
		assert.Error(t, err)
	})

	t.Run("Summary", func(t *testing.T) {
		analyzed, err := Enrich(context.Background(), NewLexiconAnalyzer(), records)
		require.NoError(t, err)
		summary := Summarize(analyzed)
		assert.Equal(t, 2, summary.Total)
		assert.Equal(t, 1, summary.Replies)
		assert.Equal(t, 1, summary.Positive)
		assert.Equal(t, 1, summary.Negative)
		require.NotNil(t, summary.TopLiked)
		assert.Equal(t, "a", summary.TopLiked.Author)
	})
}

type shortAnalyzer struct{}

func (shortAnalyzer) Analyze(ctx context.Context, texts []string) ([]Sentiment, error) {
	return []Sentiment{SentimentNeutral}, nil
}

type fakeSender struct {
	mu       sync.Mutex
	batches  [][]sentimentInput
	response func(inputs []sentimentInput) string
	err      error
}

func (f *fakeSender) SendMessage(ctx context.Context, messages claude.ClaudeMessages, systemMessage string) (*claude.ClaudeMessageResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	var inputs []sentimentInput
	if err := json.Unmarshal([]byte(messages[0].Content), &inputs); err != nil {
		return nil, err
	}
	if messages[1].Role != claude.ROLE_ASSISTANT || messages[1].Content != "{" {
		return nil, errors.New("missing prefill")
	}
	f.mu.Lock()
	f.batches = append(f.batches, inputs)
	f.mu.Unlock()
	return &claude.ClaudeMessageResponse{Content: []claude.Content{{Type: "text", Text: f.response(inputs)}}}, nil
}

// labelsByText answers Positive for texts containing "yes", Negative otherwise, without the prefilled brace.
func labelsByText(inputs []sentimentInput) string {
	labels := []string{}
	for _, in := range inputs {
		if strings.Contains(in.Text, "yes") {
			labels = append(labels, "positive")
		} else {
			labels = append(labels, "Negative")
		}
	}
	data, _ := json.Marshal(labels)
	return `"labels":` + string(data) + `}`
}

func TestClaudeAnalyzer_Analyze(t *testing.T) {
	texts := []string{}
	for i := 0; i < 7; i++ {
		if i%2 == 0 {
			texts = append(texts, fmt.Sprintf("yes %d", i))
		} else {
			texts = append(texts, fmt.Sprintf("no %d", i))
		}
	}

	sender := &fakeSender{response: labelsByText}
	labels, err := NewClaudeAnalyzer(sender, 3, 2).Analyze(context.Background(), texts)
	require.NoError(t, err)

	require.Len(t, labels, 7)
	for i, label := range labels {
		if i%2 == 0 {
			assert.Equal(t, SentimentPositive, label, i)
		} else {
			assert.Equal(t, SentimentNegative, label, i)
		}
	}
	assert.Len(t, sender.batches, 3)
}

func TestClaudeAnalyzer_Errors(t *testing.T) {
	t.Run("SendError", func(t *testing.T) {
		sender := &fakeSender{err: errors.New("rate limited")}
		_, err := NewClaudeAnalyzer(sender, 0, 0).Analyze(context.Background(), []string{"a"})
		assert.ErrorContains(t, err, "rate limited")
	})

	t.Run("WrongLabelCount", func(t *testing.T) {
		sender := &fakeSender{response: func(inputs []sentimentInput) string { return `"labels":["Positive"]}` }}
		_, err := NewClaudeAnalyzer(sender, 10, 1).Analyze(context.Background(), []string{"a", "b"})
		assert.ErrorContains(t, err, "expected 2 labels")
	})

	t.Run("UnknownLabel", func(t *testing.T) {
		sender := &fakeSender{response: func(inputs []sentimentInput) string { return `"labels":["Mixed"]}` }}
		_, err := NewClaudeAnalyzer(sender, 10, 1).Analyze(context.Background(), []string{"a"})
		assert.ErrorContains(t, err, "unknown sentiment label")
	})

	t.Run("Empty", func(t *testing.T) {
		sender := &fakeSender{response: labelsByText}
		labels, err := NewClaudeAnalyzer(sender, 10, 1).Analyze(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, labels)
		assert.Empty(t, sender.batches)
	})
}
