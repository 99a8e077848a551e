package main

import (
	"log"
	"time"

	"staffhub-report/internal/api"
	"staffhub-report/internal/config"
	"staffhub-report/internal/database"
	"staffhub-report/internal/models"
	"staffhub-report/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize MongoDB client
	log.Printf("Initializing MongoDB connection (Host: %s, Port: %s, Database: %s)",
		cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
	mongoClient, err := database.NewMongoClient(cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Close()

	// Initialize artifact storage
	artifactStore, err := services.NewArtifactStore(cfg.Artifacts.Dir, cfg.Artifacts.BaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize artifact storage: %v", err)
	}
	artifactStore.StartSweep(
		time.Duration(cfg.Artifacts.SweepIntervalHours)*time.Hour,
		time.Duration(cfg.Artifacts.MaxAgeDays)*24*time.Hour,
	)
	defer artifactStore.Stop()

	// Initialize report generation
	datasetService := services.NewDatasetService(mongoClient)
	reportService := services.NewReportService(mongoClient)
	reportService.RegisterDataset(models.DatasetCandidate, datasetService.FetchCandidates)
	reportService.RegisterDataset(models.DatasetTraining, datasetService.FetchTrainings)
	reportService.RegisterDataset(models.DatasetPayment, datasetService.FetchPayments)
	reportService.RegisterDataset(models.DatasetAnalytics, datasetService.FetchAnalytics)

	// Initialize delivery: email is optional, download links always work
	var mailer services.Mailer
	if cfg.Email.APIKey != "" {
		mailer = services.NewEmailService(cfg.Email)
	} else {
		log.Printf("SendGrid API key not configured, email delivery disabled")
	}
	notificationService := services.NewNotificationService(mongoClient)
	deliveryService := services.NewDeliveryService(
		mailer,
		notificationService,
		artifactStore,
		time.Duration(cfg.Artifacts.CleanupGraceMinutes)*time.Minute,
	)

	// Initialize the scheduler
	scheduler := services.NewSchedulerService(
		mongoClient,
		reportService,
		deliveryService,
		artifactStore,
		notificationService,
	)
	if cfg.Scheduler.AutoStart {
		if err := scheduler.Start(cfg.Scheduler.IntervalMinutes); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer func() {
			if err := scheduler.Stop(); err != nil {
				log.Printf("WARNING: Failed to stop scheduler: %v", err)
			}
		}()
	} else {
		log.Printf("Scheduler auto-start disabled, start it via POST /api/scheduler/start")
	}

	// Initialize handlers
	handlers := api.NewHandlers(
		reportService,
		scheduler,
		artifactStore,
		mongoClient,
		"schemas/template_schema.json",
		cfg.Scheduler.IntervalMinutes,
	)

	// Setup routes
	router := api.SetupRoutes(handlers)

	// Start server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
