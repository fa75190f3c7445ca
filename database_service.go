package main

import (
	"fmt"
	"time"

	"github.com/grutapig/ytscraper/analysis"
	"github.com/grutapig/ytscraper/comments"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const COMMENTS_BATCH_SIZE = 500

type DatabaseService struct {
	db *gorm.DB
}

// NewDatabaseService creates a new database service instance
func NewDatabaseService(dbPath string) (*DatabaseService, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	service := &DatabaseService{db: db}

	if err := service.runMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return service, nil
}

func (s *DatabaseService) runMigrations() error {
	return s.db.AutoMigrate(&ScrapeRunModel{}, &CommentModel{})
}

// Run related methods

func (s *DatabaseService) CreateRun(run *ScrapeRunModel) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = RUN_STATUS_RUNNING
	}
	return s.db.Create(run).Error
}

func (s *DatabaseService) SaveRun(run *ScrapeRunModel) error {
	return s.db.Save(run).Error
}

// GetRun retrieves a run by its UUID
func (s *DatabaseService) GetRun(uuid string) (*ScrapeRunModel, error) {
	var run ScrapeRunModel
	err := s.db.Where("uuid = ?", uuid).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetLatestRunForVideo returns the newest successful run for a video
func (s *DatabaseService) GetLatestRunForVideo(videoID string) (*ScrapeRunModel, error) {
	var run ScrapeRunModel
	err := s.db.Where("video_id = ? AND status = ?", videoID, RUN_STATUS_DONE).
		Order("started_at DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *DatabaseService) ListRuns(limit int) ([]ScrapeRunModel, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []ScrapeRunModel
	err := s.db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// Comment related methods

// SaveComments stores the run's rows with their position in the output sequence
func (s *DatabaseService) SaveComments(runUUID string, rows []analysis.AnalyzedRecord) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]CommentModel, len(rows))
	for i, row := range rows {
		models[i] = CommentModel{
			RunUUID:         runUUID,
			Position:        i,
			CommentID:       row.CommentID,
			ParentID:        row.ParentID,
			IsReply:         row.IsReply,
			Author:          row.Author,
			Text:            row.Text,
			LikeCount:       row.LikeCount,
			PublishedAt:     row.PublishedAt,
			ReplyCount:      row.ReplyCount,
			Sentiment:       string(row.Sentiment),
			EngagementScore: row.EngagementScore,
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_uuid = ?", runUUID).Delete(&CommentModel{}).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(models, COMMENTS_BATCH_SIZE).Error
	})
}

// GetRunComments returns the run's rows in output order
func (s *DatabaseService) GetRunComments(runUUID string) ([]analysis.AnalyzedRecord, error) {
	var models []CommentModel
	err := s.db.Where("run_uuid = ?", runUUID).Order("position ASC").Find(&models).Error
	if err != nil {
		return nil, err
	}

	rows := make([]analysis.AnalyzedRecord, len(models))
	for i, model := range models {
		rows[i] = analysis.AnalyzedRecord{
			CommentRecord: comments.CommentRecord{
				Author:      model.Author,
				Text:        model.Text,
				LikeCount:   model.LikeCount,
				PublishedAt: model.PublishedAt,
				ReplyCount:  model.ReplyCount,
				CommentID:   model.CommentID,
				ParentID:    model.ParentID,
				IsReply:     model.IsReply,
			},
			Sentiment:       analysis.Sentiment(model.Sentiment),
			EngagementScore: model.EngagementScore,
		}
	}
	return rows, nil
}

func (s *DatabaseService) GetCommentCount(runUUID string) (int64, error) {
	var count int64
	err := s.db.Model(&CommentModel{}).Where("run_uuid = ?", runUUID).Count(&count).Error
	return count, err
}

// Maintenance methods

// CleanupOldRuns hard-deletes runs started more than days ago together with their comments
func (s *DatabaseService) CleanupOldRuns(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var uuids []string
		if err := tx.Unscoped().Model(&ScrapeRunModel{}).Where("started_at < ?", cutoff).Pluck("uuid", &uuids).Error; err != nil {
			return err
		}
		if len(uuids) == 0 {
			return nil
		}
		if err := tx.Where("run_uuid IN ?", uuids).Delete(&CommentModel{}).Error; err != nil {
			return err
		}
		result := tx.Unscoped().Where("uuid IN ?", uuids).Delete(&ScrapeRunModel{})
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}

func (s *DatabaseService) VacuumDatabase() error {
	return s.db.Exec("VACUUM").Error
}

func (s *DatabaseService) GetDatabaseStats() (*DatabaseStats, error) {
	stats := &DatabaseStats{}
	if err := s.db.Model(&ScrapeRunModel{}).Count(&stats.Runs).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&ScrapeRunModel{}).Where("status = ?", RUN_STATUS_FAILED).Count(&stats.FailedRuns).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&CommentModel{}).Count(&stats.Comments).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// Close closes the database connection
func (s *DatabaseService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
