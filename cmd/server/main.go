package main

import (
	"os"
	"path/filepath"

	"eastlens/server/config"
	"eastlens/server/internal/api"
	"eastlens/server/internal/database"
	"eastlens/server/internal/processor"
	"eastlens/server/internal/queue"
	"eastlens/server/internal/scheduler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Data.DatabasePath), 0o755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.Infof("Using database at: %s", cfg.Data.DatabasePath)

	// Initialize database
	db, err := database.NewDatabase(cfg.Data.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}
	if err := db.SeedDistricts(config.DefaultDistricts); err != nil {
		logger.WithError(err).Error("Failed to seed default districts")
	}

	// Second connection for the batch persistence path
	gormDB, err := gorm.Open(gormsqlite.Open(cfg.Data.DatabasePath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open gorm connection")
	}

	// Queue and batch processors
	recordQueue := queue.NewRecordQueue(cfg.BatchProcessing.MaxBatchSize, logger)
	batchProcessor := processor.NewBatchProcessor(gormDB, recordQueue, cfg, logger)
	batchProcessor.Start()
	recordQueue.Start()
	defer func() {
		batchProcessor.Stop()
		if err := recordQueue.Close(); err != nil {
			logger.WithError(err).Error("Failed to close record queue")
		}
	}()

	// Router and API
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	handler := api.SetupRoutes(router, db, cfg, recordQueue)

	// Daily refresh: reimport CSVs, rebuild report, notify
	if cfg.Data.ImportOnStart {
		refreshScheduler := scheduler.NewScheduler(handler.RefreshJob, cfg.Scheduler.RefreshHour, logger)
		refreshScheduler.Start()
		defer refreshScheduler.Stop()
	}

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
