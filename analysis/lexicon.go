package analysis

import (
	"context"
	"strings"
	"unicode"
)

var lexicon = map[string]float64{
	"good": 0.7, "great": 0.8, "awesome": 1, "amazing": 0.9, "excellent": 1, "love": 0.8, "loved": 0.8,
	"like": 0.3, "nice": 0.6, "best": 1, "beautiful": 0.85, "cool": 0.35, "fun": 0.4, "funny": 0.25,
	"happy": 0.8, "helpful": 0.6, "thanks": 0.4, "thank": 0.4, "wonderful": 1, "perfect": 1,
	"brilliant": 0.9, "useful": 0.3, "interesting": 0.5, "fantastic": 0.9, "enjoyed": 0.5, "wow": 0.1,
	"bad": -0.7, "terrible": -1, "awful": -1, "worst": -1, "hate": -0.8, "hated": -0.9, "boring": -1,
	"poor": -0.4, "sad": -0.5, "stupid": -0.8, "annoying": -0.8, "useless": -0.5, "wrong": -0.5,
	"horrible": -1, "disappointing": -0.6, "disappointed": -0.75, "ugly": -0.7, "fake": -0.5,
	"dislike": -0.6, "trash": -0.8, "garbage": -0.8, "waste": -0.2, "scam": -0.8, "clickbait": -0.6,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "isn't": true, "wasn't": true, "don't": true,
	"doesn't": true, "didn't": true, "can't": true, "won't": true, "aren't": true, "nothing": true,
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "so": 1.2, "extremely": 1.5, "super": 1.3, "absolutely": 1.4, "too": 1.1,
}

var emojiScores = map[string]float64{
	"❤": 0.8, "😍": 0.9, "😂": 0.4, "👍": 0.6, "🔥": 0.6, "🙏": 0.4, "😊": 0.7,
	"😡": -0.8, "👎": -0.6, "😢": -0.5, "🤮": -0.9, "💩": -0.7,
}

// LexiconAnalyzer scores polarity offline from a fixed word list. Polarity above
// zero is Positive, below zero Negative, exactly zero Neutral.
type LexiconAnalyzer struct{}

func NewLexiconAnalyzer() *LexiconAnalyzer {
	return &LexiconAnalyzer{}
}

func (a *LexiconAnalyzer) Analyze(ctx context.Context, texts []string) ([]Sentiment, error) {
	labels := make([]Sentiment, len(texts))
	for i, text := range texts {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		labels[i] = labelForPolarity(Polarity(text))
	}
	return labels, nil
}

func labelForPolarity(polarity float64) Sentiment {
	switch {
	case polarity > 0:
		return SentimentPositive
	case polarity < 0:
		return SentimentNegative
	}
	return SentimentNeutral
}

// Polarity returns the mean score of the sentiment-bearing words in text, in [-1, 1].
func Polarity(text string) float64 {
	words := tokenize(text)
	total := 0.0
	scored := 0

	for i, word := range words {
		score, ok := lexicon[word]
		if !ok {
			continue
		}
		if i > 0 {
			if factor, ok := intensifiers[words[i-1]]; ok {
				score *= factor
			}
		}
		for back := 1; back <= 3 && i-back >= 0; back++ {
			if negators[words[i-back]] {
				score *= -0.5
				break
			}
		}
		total += score
		scored++
	}

	for emoji, score := range emojiScores {
		if n := strings.Count(text, emoji); n > 0 {
			total += score * float64(n)
			scored += n
		}
	}

	if scored == 0 {
		return 0
	}
	polarity := total / float64(scored)
	return max(-1, min(1, polarity))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}
