package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grutapig/ytscraper/analysis"
)

const (
	columnName       = "name"
	columnComment    = "comment"
	columnLikes      = "likes"
	columnTime       = "time"
	columnReplyCount = "reply_count"
	columnSentiment  = "sentiment"
	columnEngagement = "engagement"
)

// ReadRecords parses an export back. A headerless file is read by position.
// Reply rows are only recognised by an empty Reply Count cell, which the writer
// produces with BlankReplyCount; in a default export replies read back as
// top-level comments with a reply count of 0.
func ReadRecords(r io.Reader) ([]analysis.AnalyzedRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return []analysis.AnalyzedRecord{}, nil
	}

	columnMap := mapColumns(rows[0])
	if _, ok := columnMap[columnName]; ok {
		rows = rows[1:]
	} else {
		columnMap = positionalColumns(len(rows[0]))
	}
	if err := validateColumns(columnMap); err != nil {
		return nil, fmt.Errorf("CSV validation failed: %w", err)
	}

	records := make([]analysis.AnalyzedRecord, 0, len(rows))
	for i, row := range rows {
		record, err := parseRow(row, columnMap)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func mapColumns(header []string) map[string]int {
	columnMap := make(map[string]int)
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))) {
		case "name", "author", "author_display_name":
			columnMap[columnName] = i
		case "comment", "text", "text_display":
			columnMap[columnComment] = i
		case "likes", "like_count":
			columnMap[columnLikes] = i
		case "time", "published_at", "date":
			columnMap[columnTime] = i
		case "reply count", "reply_count", "replies":
			columnMap[columnReplyCount] = i
		case "sentiment":
			columnMap[columnSentiment] = i
		case "engagementscore", "engagement_score":
			columnMap[columnEngagement] = i
		}
	}
	return columnMap
}

func positionalColumns(width int) map[string]int {
	columnMap := map[string]int{}
	names := []string{columnName, columnComment, columnLikes, columnTime, columnReplyCount, columnSentiment, columnEngagement}
	for i, name := range names {
		if i < width {
			columnMap[name] = i
		}
	}
	return columnMap
}

func validateColumns(columnMap map[string]int) error {
	for _, field := range []string{columnName, columnComment, columnLikes, columnTime} {
		if _, exists := columnMap[field]; !exists {
			return fmt.Errorf("required column not found: %s", field)
		}
	}
	return nil
}

func cell(row []string, columnMap map[string]int, name string) string {
	i, ok := columnMap[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseRow(row []string, columnMap map[string]int) (analysis.AnalyzedRecord, error) {
	record := analysis.AnalyzedRecord{}
	record.Author = cell(row, columnMap, columnName)
	if i := columnMap[columnComment]; i < len(row) {
		record.Text = row[i]
	}
	record.PublishedAt = cell(row, columnMap, columnTime)

	likes, err := strconv.ParseInt(cell(row, columnMap, columnLikes), 10, 64)
	if err != nil {
		return record, fmt.Errorf("invalid likes: %w", err)
	}
	record.LikeCount = likes

	// an empty reply count marks a reply row in legacy exports
	_, hasReplyCount := columnMap[columnReplyCount]
	replyCount := cell(row, columnMap, columnReplyCount)
	if hasReplyCount && replyCount == "" {
		record.IsReply = true
	} else if replyCount != "" {
		record.ReplyCount, err = strconv.ParseInt(replyCount, 10, 64)
		if err != nil {
			return record, fmt.Errorf("invalid reply count: %w", err)
		}
	}

	if label := cell(row, columnMap, columnSentiment); label != "" {
		record.Sentiment, err = analysis.ParseSentiment(label)
		if err != nil {
			return record, err
		}
	}
	record.EngagementScore = analysis.EngagementScore(record.CommentRecord)
	return record, nil
}
