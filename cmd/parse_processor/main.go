package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/colonial-ledger-parser/internal/config"
	"github.com/colonial-ledger-parser/internal/data/mongo"
	"github.com/colonial-ledger-parser/internal/data/postgres"
	"github.com/colonial-ledger-parser/internal/logger"
	"github.com/colonial-ledger-parser/internal/parse_processor/consumer"
	"github.com/colonial-ledger-parser/internal/parse_processor/service"
	"github.com/colonial-ledger-parser/internal/parser/grammar"
	"github.com/colonial-ledger-parser/internal/parser/pipeline"
	"github.com/colonial-ledger-parser/internal/parser/resolver"
	"github.com/colonial-ledger-parser/internal/platform/messaging/consumers"
	"github.com/colonial-ledger-parser/internal/platform/messaging/producers"
	"github.com/colonial-ledger-parser/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("parse_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Parse Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	batchRepo := postgres.NewBatchRepository(log, postgresDB)
	entryRepo := mongo.NewEntryRepository(log, mongoDB.Database())
	catalogRepo := mongo.NewCatalogRepository(log, mongoDB.Database())

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Handler should be nil-safe.

	// Initialize the row pipeline: master-list lookups feed the entry grammar
	entityResolver := resolver.New(catalogRepo, log)
	grammarParser := grammar.NewParser(entityResolver, log)
	rowPipeline, err := pipeline.New(grammarParser, entityResolver, cfg.WorkerPool.Size, log)
	if err != nil {
		log.Error("Failed to initialize row pipeline", "error", err)
		os.Exit(1)
	}

	// Initialize processing service
	processingService := service.NewProcessingService(log, batchRepo, entryRepo, rowPipeline)

	// Initialize batch event handler
	batchEventHandler := consumer.NewBatchEventHandler(
		log,
		processingService,
		dlqProducer, // Pass the DLQ producer
	)

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.ParseRequestTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.ParseRequestTopic, cfg.Kafka.ConsumerGroup, batchEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shut down the parsing worker pool
	log.Info("Shutting down row pipeline")
	rowPipeline.Shutdown()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close DLQ Kafka producer
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Parse Processor shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Parse Processor shutdown completed with errors")
	} else {
		log.Info("Parse Processor shutdown completed successfully")
	}
}
