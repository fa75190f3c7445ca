package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grutapig/ytscraper/youtubeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(in, []byte("Name,Comment,Likes,Time,Reply Count\nalice,I love it,4,2024-05-01T10:00:00Z,1\nbob,terrible,0,2024-05-01T11:00:00Z,\n"), 0644))

	err := analyzeFile(context.Background(), options{analyzeCSV: in, out: out, header: true, analyzer: "lexicon"})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Name,Comment,Likes,Time,Reply Count,Sentiment,EngagementScore", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "alice,I love it,4,"))
	assert.True(t, strings.HasSuffix(lines[1], ",Positive,6"))
	assert.True(t, strings.HasSuffix(lines[2], ",Negative,0"))
}

func TestExport_RequiresInput(t *testing.T) {
	err := export(context.Background(), options{mode: "followup"})
	assert.Error(t, err)

	err = export(context.Background(), options{input: "https://example.com/nothing", mode: "followup"})
	assert.Error(t, err)
}

func TestNewAnalyzer(t *testing.T) {
	analyzer, err := newAnalyzer("lexicon")
	require.NoError(t, err)
	assert.NotNil(t, analyzer)

	t.Setenv(ENV_CLAUDE_API_KEY, "")
	_, err = newAnalyzer("claude")
	assert.Error(t, err)

	_, err = newAnalyzer("magic")
	assert.Error(t, err)
}

func TestExportOptions(t *testing.T) {
	opts := exportOptions(options{header: false, analytics: true, legacy: true})
	assert.False(t, opts.Header)
	assert.True(t, opts.Analytics)
	assert.True(t, opts.BlankReplyCount)
}

func TestAnalyzeFile_Stdout(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(in, []byte("alice,great stuff,1,2024-05-01T10:00:00Z,0\n"), 0644))

	var buf bytes.Buffer
	stdout = &buf
	t.Cleanup(func() { stdout = os.Stdout })

	err := analyzeFile(context.Background(), options{analyzeCSV: in, out: OUT_STDOUT, analyzer: "lexicon"})
	require.NoError(t, err)
	assert.Equal(t, "alice,great stuff,1,2024-05-01T10:00:00Z,0,Positive,1\n", buf.String())
}

func TestParseTextFormat(t *testing.T) {
	format, err := parseTextFormat("html")
	require.NoError(t, err)
	assert.Equal(t, youtubeapi.TEXT_FORMAT_HTML, format)

	format, err = parseTextFormat("")
	require.NoError(t, err)
	assert.Equal(t, youtubeapi.TEXT_FORMAT_PLAIN, format)

	_, err = parseTextFormat("markdown")
	assert.Error(t, err)
}
