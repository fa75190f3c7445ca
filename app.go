package main

import (
	"context"
	"log"
	"sync"
	"time"
)

const SHUTDOWN_TIMEOUT = 15 * time.Second

type Application struct {
	config           *Config
	databaseService  *DatabaseService
	scrapeService    *ScrapeService
	telegramService  *TelegramService
	httpServer       *HTTPServer
	cleanupScheduler *CleanupScheduler
}

func NewApplication(
	config *Config,
	databaseService *DatabaseService,
	scrapeService *ScrapeService,
	telegramService *TelegramService,
	httpServer *HTTPServer,
	cleanupScheduler *CleanupScheduler,
) *Application {
	return &Application{
		config:           config,
		databaseService:  databaseService,
		scrapeService:    scrapeService,
		telegramService:  telegramService,
		httpServer:       httpServer,
		cleanupScheduler: cleanupScheduler,
	}
}

func (app *Application) Initialize() error {
	log.Println("Database service initialized successfully")

	stats, err := app.databaseService.GetDatabaseStats()
	if err != nil {
		return err
	}
	log.Printf("📊 Database stats: %+v", stats)

	if app.config.ImportCSVPath != "" {
		log.Printf("CSV import path specified: %s", app.config.ImportCSVPath)
		result, err := NewCSVImporter(app.databaseService).ImportCSV(app.config.ImportCSVPath, app.config.ImportVideoID)
		if err != nil {
			log.Printf("CSV import failed: %v", err)
		} else {
			log.Printf("CSV import successful: %s", result.String())
		}
	}

	app.cleanupScheduler.Start()
	app.telegramService.StartListening()

	return nil
}

// Run serves the HTTP API until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	wg := sync.WaitGroup{}
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errCh <- app.httpServer.Start()
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	return nil
}

func (app *Application) Shutdown() {
	log.Println("Shutting down application...")

	app.telegramService.StopListening()
	app.cleanupScheduler.Stop()
	app.databaseService.Close()

	log.Println("Application shutdown completed")
}
