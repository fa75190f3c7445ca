package main

import (
	"log"
	"time"
)

type CleanupScheduler struct {
	dbService *DatabaseService
	days      int
	ticker    *time.Ticker
	stopChan  chan bool
}

func NewCleanupScheduler(dbService *DatabaseService, days int) *CleanupScheduler {
	return &CleanupScheduler{
		dbService: dbService,
		days:      days,
		stopChan:  make(chan bool),
	}
}

// Start runs the cleanup every night at midnight. A zero retention disables it.
func (cs *CleanupScheduler) Start() {
	if cs.days <= 0 {
		log.Printf("🧹 Cleanup scheduler disabled")
		return
	}
	log.Printf("🧹 Starting cleanup scheduler - runs older than %d days are removed daily at midnight", cs.days)

	now := time.Now()
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	firstRunTimer := time.NewTimer(nextMidnight.Sub(now))

	go func() {
		select {
		case <-firstRunTimer.C:
			log.Printf("🧹 Running first cleanup at midnight")
			cs.runCleanup()
		case <-cs.stopChan:
			firstRunTimer.Stop()
			return
		}

		cs.ticker = time.NewTicker(24 * time.Hour)
		defer cs.ticker.Stop()

		for {
			select {
			case <-cs.ticker.C:
				log.Printf("🧹 Running daily cleanup")
				cs.runCleanup()
			case <-cs.stopChan:
				log.Printf("🧹 Cleanup scheduler stopped")
				return
			}
		}
	}()
}

func (cs *CleanupScheduler) Stop() {
	if cs.days <= 0 {
		return
	}
	log.Printf("🧹 Stopping cleanup scheduler")
	close(cs.stopChan)
}

func (cs *CleanupScheduler) runCleanup() {
	log.Printf("🧹 Starting scheduled cleanup of old scrape runs")

	removed, err := cs.dbService.CleanupOldRuns(cs.days)
	if err != nil {
		log.Printf("❌ Error during cleanup: %v", err)
		return
	}
	log.Printf("🧹 Removed %d scrape runs", removed)

	if err := cs.dbService.VacuumDatabase(); err != nil {
		log.Printf("❌ Error during VACUUM: %v", err)
		return
	}

	stats, err := cs.dbService.GetDatabaseStats()
	if err != nil {
		log.Printf("❌ Error getting database stats: %v", err)
		return
	}

	log.Printf("✅ Cleanup completed successfully")
	log.Printf("📊 Database stats after cleanup: %+v", stats)
}
