package csvexport

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grutapig/ytscraper/analysis"
	"github.com/grutapig/ytscraper/comments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []analysis.AnalyzedRecord {
	return []analysis.AnalyzedRecord{
		{
			CommentRecord:   comments.CommentRecord{Author: "Zoë", Text: "Great video, thanks!", LikeCount: 12, PublishedAt: "2024-05-01T10:00:00Z", ReplyCount: 1},
			Sentiment:       analysis.SentimentPositive,
			EngagementScore: 14,
		},
		{
			CommentRecord:   comments.CommentRecord{Author: "bob", Text: "agreed, \"really\"\nsecond line", LikeCount: 0, PublishedAt: "2024-05-01T11:00:00Z", IsReply: true},
			Sentiment:       analysis.SentimentNeutral,
			EngagementScore: 0,
		},
	}
}

func TestRender(t *testing.T) {
	t.Run("WithHeader", func(t *testing.T) {
		data, err := Render(sampleRows(), Options{Header: true})
		require.NoError(t, err)

		lines := strings.SplitN(string(data), "\n", 2)
		assert.Equal(t, "Name,Comment,Likes,Time,Reply Count", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "Zoë,\"Great video, thanks!\",12,2024-05-01T10:00:00Z,1\n"))
	})

	t.Run("WithoutHeader", func(t *testing.T) {
		data, err := Render(sampleRows(), Options{})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "Zoë,"))
	})

	t.Run("Analytics", func(t *testing.T) {
		data, err := Render(sampleRows(), Options{Header: true, Analytics: true})
		require.NoError(t, err)
		lines := strings.Split(string(data), "\n")
		assert.Equal(t, "Name,Comment,Likes,Time,Reply Count,Sentiment,EngagementScore", lines[0])
		assert.Equal(t, "Zoë,\"Great video, thanks!\",12,2024-05-01T10:00:00Z,1,Positive,14", lines[1])
	})

	t.Run("ReplyRowsCarryZeroByDefault", func(t *testing.T) {
		data, err := Render(sampleRows()[1:], Options{})
		require.NoError(t, err)
		assert.Equal(t, "bob,\"agreed, \"\"really\"\"\nsecond line\",0,2024-05-01T11:00:00Z,0\n", string(data))

		data, err = Render(sampleRows()[1:], Options{BlankReplyCount: true})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(string(data), "2024-05-01T11:00:00Z,\n"))
	})

	t.Run("Empty", func(t *testing.T) {
		data, err := Render(nil, Options{Header: true})
		require.NoError(t, err)
		assert.Equal(t, "Name,Comment,Likes,Time,Reply Count\n", string(data))
	})
}

func TestReadRecords(t *testing.T) {
	t.Run("RoundTripWithHeader", func(t *testing.T) {
		data, err := Render(sampleRows(), Options{Header: true, Analytics: true, BlankReplyCount: true})
		require.NoError(t, err)

		records, err := ReadRecords(bytes.NewReader(data))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Zoë", records[0].Author)
		assert.Equal(t, int64(12), records[0].LikeCount)
		assert.Equal(t, int64(1), records[0].ReplyCount)
		assert.Equal(t, analysis.SentimentPositive, records[0].Sentiment)
		assert.Equal(t, int64(14), records[0].EngagementScore)
		assert.True(t, records[1].IsReply)
		assert.Equal(t, "agreed, \"really\"\nsecond line", records[1].Text)
	})

	t.Run("DefaultExportLosesReplyMarker", func(t *testing.T) {
		data, err := Render(sampleRows(), Options{Header: true})
		require.NoError(t, err)

		records, err := ReadRecords(bytes.NewReader(data))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.False(t, records[1].IsReply)
		assert.Equal(t, int64(0), records[1].ReplyCount)
	})

	t.Run("Headerless", func(t *testing.T) {
		input := "alice,hello,3,2024-01-01T00:00:00Z,2\nbob,hi,0,2024-01-01T00:00:00Z,\n"
		records, err := ReadRecords(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, int64(2), records[0].ReplyCount)
		assert.False(t, records[0].IsReply)
		assert.True(t, records[1].IsReply)
	})

	t.Run("AliasedHeader", func(t *testing.T) {
		input := "text,author,like_count,published_at\nnice,carol,5,2024-01-01T00:00:00Z\n"
		records, err := ReadRecords(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "carol", records[0].Author)
		assert.Equal(t, "nice", records[0].Text)
		assert.False(t, records[0].IsReply)
	})

	t.Run("InvalidLikes", func(t *testing.T) {
		_, err := ReadRecords(strings.NewReader("Name,Comment,Likes,Time\na,b,many,t\n"))
		assert.ErrorContains(t, err, "invalid likes")
	})

	t.Run("MissingColumns", func(t *testing.T) {
		_, err := ReadRecords(strings.NewReader("Name,Comment\na,b\n"))
		assert.ErrorContains(t, err, "required column not found")
	})
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName("abc", true))

	require.NoError(t, WriteFile(path, sampleRows(), Options{Header: true, Analytics: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Name,Comment"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "youtube_comments.csv", FileName("", false))
	assert.Equal(t, "youtube_comments_abc.csv", FileName("abc", false))
	assert.Equal(t, "youtube_comments_abc_analytics.csv", FileName("abc", true))
}
