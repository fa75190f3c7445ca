package csvexport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/grutapig/ytscraper/analysis"
)

var Columns = []string{"Name", "Comment", "Likes", "Time", "Reply Count"}
var AnalyticsColumns = []string{"Sentiment", "EngagementScore"}

type Options struct {
	Header    bool
	Analytics bool
	// BlankReplyCount leaves the Reply Count cell of reply rows empty instead of 0.
	BlankReplyCount bool
}

func Header(opts Options) []string {
	header := append([]string{}, Columns...)
	if opts.Analytics {
		header = append(header, AnalyticsColumns...)
	}
	return header
}

// Render builds the whole CSV in memory so a failure never leaves partial output behind.
func Render(rows []analysis.AnalyzedRecord, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if opts.Header {
		if err := writer.Write(Header(opts)); err != nil {
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}

	for i, row := range rows {
		replyCount := strconv.FormatInt(row.ReplyCount, 10)
		if row.IsReply && opts.BlankReplyCount {
			replyCount = ""
		}
		line := []string{
			row.Author,
			row.Text,
			strconv.FormatInt(row.LikeCount, 10),
			row.PublishedAt,
			replyCount,
		}
		if opts.Analytics {
			line = append(line, string(row.Sentiment), strconv.FormatInt(row.EngagementScore, 10))
		}
		if err := writer.Write(line); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func Write(w io.Writer, rows []analysis.AnalyzedRecord, opts Options) error {
	data, err := Render(rows, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile writes through a temp file and renames it into place.
func WriteFile(path string, rows []analysis.AnalyzedRecord, opts Options) error {
	data, err := Render(rows, opts)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename export file: %w", err)
	}
	return nil
}

func FileName(videoID string, analytics bool) string {
	if videoID == "" {
		return "youtube_comments.csv"
	}
	if analytics {
		return fmt.Sprintf("youtube_comments_%s_analytics.csv", videoID)
	}
	return fmt.Sprintf("youtube_comments_%s.csv", videoID)
}
