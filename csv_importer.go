package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/grutapig/ytscraper/comments"
	"github.com/grutapig/ytscraper/csvexport"
)

// CSVImporter loads a previous export into the database as a finished run.
type CSVImporter struct {
	dbService *DatabaseService
}

func NewCSVImporter(dbService *DatabaseService) *CSVImporter {
	return &CSVImporter{
		dbService: dbService,
	}
}

type ImportResult struct {
	RunUUID   string
	TopLevel  int
	Replies   int
	Analytics bool
}

func (r *ImportResult) String() string {
	return fmt.Sprintf("Import Result:\n  Run: %s\n  Top-level comments: %d\n  Replies: %d\n  Analytics: %t",
		r.RunUUID, r.TopLevel, r.Replies, r.Analytics)
}

func (c *CSVImporter) ImportCSV(csvFilePath string, videoInput string) (*ImportResult, error) {
	videoID := ""
	if videoInput != "" {
		var err error
		videoID, err = comments.ResolveVideoID(videoInput)
		if err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(csvFilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("CSV file not found: %s", csvFilePath)
	}

	file, err := os.Open(csvFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csvexport.ReadRecords(file)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	result := &ImportResult{}
	for _, row := range rows {
		if row.IsReply {
			result.Replies++
		} else {
			result.TopLevel++
		}
		if row.Sentiment != "" {
			result.Analytics = true
		}
	}

	if result.Replies == 0 {
		log.Printf("CSV import %s: no reply rows recognised, only exports written with a blank reply count mark replies", csvFilePath)
	}

	now := time.Now()
	run := &ScrapeRunModel{
		UUID:          uuid.New().String(),
		VideoID:       videoID,
		SourceInput:   csvFilePath,
		Source:        SOURCE_IMPORT,
		Analytics:     result.Analytics,
		Status:        RUN_STATUS_DONE,
		TopLevelCount: result.TopLevel,
		RepliesCount:  result.Replies,
		StartedAt:     now,
		FinishedAt:    &now,
	}
	if err := c.dbService.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to create import run: %w", err)
	}
	if err := c.dbService.SaveComments(run.UUID, rows); err != nil {
		return nil, fmt.Errorf("failed to save imported comments: %w", err)
	}

	result.RunUUID = run.UUID
	return result, nil
}
