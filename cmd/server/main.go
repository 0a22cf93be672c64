package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/asengupta/surveillance-server/internal/connection"
	"github.com/asengupta/surveillance-server/internal/database"
	"github.com/asengupta/surveillance-server/internal/queue"
	"github.com/asengupta/surveillance-server/internal/server"
	"github.com/asengupta/surveillance-server/internal/timer"
	"github.com/asengupta/surveillance-server/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Surveillance Server...")

	// Connect to database
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	// Run migrations
	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create Kafka topics
	if err := queue.CreateTopic(
		cfg.Kafka.Brokers,
		cfg.Kafka.TopicEvents,
		cfg.Kafka.NumPartitions,
		1, // replication factor
	); err != nil {
		fmt.Printf("Note: Topic creation failed (may already exist): %v\n", err)
	}

	if err := queue.CreateTopic(
		cfg.Kafka.Brokers,
		cfg.Kafka.TopicMetrics,
		cfg.Kafka.NumPartitions,
		1, // replication factor
	); err != nil {
		fmt.Printf("Note: Topic creation failed (may already exist): %v\n", err)
	}

	if err := queue.CreateTopic(
		cfg.Kafka.Brokers,
		cfg.Kafka.TopicAlerts,
		1, // single partition for alerts
		1, // replication factor
	); err != nil {
		fmt.Printf("Note: Topic creation failed (may already exist): %v\n", err)
	}

	// Create tuned Kafka producers, one per topic
	eventProducer := queue.NewProducerWithConfig(producerConfig(cfg, cfg.Kafka.TopicEvents))
	defer eventProducer.Close()

	metricsProducer := queue.NewProducerWithConfig(producerConfig(cfg, cfg.Kafka.TopicMetrics))
	defer metricsProducer.Close()

	fmt.Printf("Kafka producers initialized (batch=%d, compression=%s, async=%v)\n",
		cfg.Kafka.BatchSize, cfg.Kafka.Compression, cfg.Kafka.Async)

	// Create connection manager
	connManager := connection.NewManager(cfg.TCPServer.MaxConnections)
	fmt.Println("Connection manager initialized")

	// Create timer manager
	timerManager := timer.NewTimerManager()
	timerManager.Start()
	defer timerManager.Stop()
	fmt.Println("Timer manager started")

	// Auto-size the worker pool when not set
	if cfg.TCPServer.WorkerCount == 0 {
		cfg.TCPServer.WorkerCount = runtime.NumCPU() * 4
	}
	fmt.Printf("Starting TCP server with worker pool (%d workers, queue size %d)\n",
		cfg.TCPServer.WorkerCount, cfg.TCPServer.JobQueueSize)

	tcpServer := server.NewTCPServer(
		&cfg.TCPServer,
		connManager,
		timerManager,
		eventProducer,
		metricsProducer,
	)

	if err := tcpServer.Start(); err != nil {
		log.Fatalf("Failed to start TCP server: %v", err)
	}
	defer tcpServer.Stop()

	// Print statistics periodically
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := connManager.Stats()
			timerStats := timerManager.Stats()
			fmt.Printf("\n--- Server Statistics ---\n")
			fmt.Printf("Active Connections: %d / %d\n", stats.TotalConnections, stats.MaxConnections)
			fmt.Printf("Unique Sites: %d\n", stats.UniqueSites)
			fmt.Printf("Scheduled Timers: %d\n", timerStats.ScheduledTasks)
			fmt.Printf("------------------------\n\n")
		}
	}()

	fmt.Println("\n✓ Surveillance Server is running")
	fmt.Printf("✓ TCP Server listening on port %d\n", cfg.TCPServer.Port)
	fmt.Println("✓ Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
}

func producerConfig(cfg *config.Config, topic string) *queue.ProducerConfig {
	return &queue.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        topic,
		BatchSize:    cfg.Kafka.BatchSize,
		BatchTimeout: cfg.Kafka.BatchTimeout,
		Compression:  cfg.Kafka.Compression,
		Async:        cfg.Kafka.Async,
		MaxAttempts:  cfg.Kafka.MaxAttempts,
		RequiredAcks: cfg.Kafka.RequiredAcks,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		BatchBytes:   1048576, // 1MB
	}
}
