package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asengupta/surveillance-server/internal/database"
	"github.com/asengupta/surveillance-server/internal/queue"
	"github.com/asengupta/surveillance-server/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Database Writer Service...")
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// One consumer per topic, same group
	eventConsumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, "dbwriter-group")
	defer eventConsumer.Close()

	metricsConsumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicMetrics, "dbwriter-group")
	defer metricsConsumer.Close()
	fmt.Println("Kafka consumers created (registering with broker...)")

	ctx := context.Background()

	// Batch writers (batch size: 100, flush interval: 5 seconds)
	eventWriter := queue.NewBatchWriter(eventConsumer, queue.NewEventHandler(db), 100, 5*time.Second)
	if err := eventWriter.Start(ctx); err != nil {
		log.Fatalf("Failed to start event writer: %v", err)
	}

	metricsWriter := queue.NewBatchWriter(metricsConsumer, queue.NewMetricsHandler(db), 100, 5*time.Second)
	if err := metricsWriter.Start(ctx); err != nil {
		log.Fatalf("Failed to start metrics writer: %v", err)
	}
	fmt.Println("Batch writers started")

	// Print consumer stats periodically
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			eventStats := eventConsumer.Stats()
			metricsStats := metricsConsumer.Stats()
			fmt.Printf("Consumer stats: Events=%d, Metrics=%d, Errors=%d\n",
				eventStats.Messages, metricsStats.Messages, eventStats.Errors+metricsStats.Errors)
		}
	}()

	fmt.Println("\n✓ Database Writer Service is running")
	fmt.Println("✓ Consuming from Kafka and writing to PostgreSQL")
	fmt.Println("✓ Batch size: 100 messages | Flush interval: 5 seconds")
	fmt.Println("✓ Press Ctrl+C to stop")
	fmt.Println("\nWaiting for messages...")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
	eventWriter.Stop()
	metricsWriter.Stop()
	fmt.Println("Database Writer Service stopped")
}
