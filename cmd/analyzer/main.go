package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/asengupta/surveillance-server/internal/alerting"
	"github.com/asengupta/surveillance-server/internal/analyzer"
	"github.com/asengupta/surveillance-server/internal/database"
	"github.com/asengupta/surveillance-server/internal/queue"
	"github.com/asengupta/surveillance-server/internal/snapshot"
	"github.com/asengupta/surveillance-server/internal/timer"
	"github.com/asengupta/surveillance-server/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Analysis Service...")

	// Connect to database
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	fmt.Println("Connected to Redis")

	// Create alert producer
	alertProducer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts)
	defer alertProducer.Close()
	fmt.Println("Kafka alert producer initialized")

	// Create timer manager
	timerManager := timer.NewTimerManager()
	timerManager.Start()
	defer timerManager.Stop()
	fmt.Println("Timer manager started")

	// Assemble the analyzer
	loader := snapshot.NewLoader(db, cfg.Analysis.EventWindow, cfg.Analysis.HistoryDays)
	cache := alerting.NewReportCache(redisClient, cfg.Analysis.ReportTTL)
	states := alerting.NewStateManager(redisClient)

	a := analyzer.NewAnalyzer(
		loader,
		cache,
		states,
		alertProducer,
		db,
		cfg.Analysis.ForecastHorizon,
		cfg.Analysis.ConfirmWindow,
	)

	// Run a cycle immediately, then on the configured interval
	scheduleAnalysis(timerManager, a, cfg.Analysis.Interval)

	fmt.Println("\n✓ Analysis Service is running")
	fmt.Printf("✓ Analysis interval: %v | Forecast horizon: %d days\n",
		cfg.Analysis.Interval, cfg.Analysis.ForecastHorizon)
	fmt.Println("✓ Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
}

func scheduleAnalysis(tm *timer.TimerManager, a *analyzer.Analyzer, interval time.Duration) {
	taskID := "analysis-cycle"
	ctx := context.Background()

	var scheduleNext func(runAt time.Time)
	scheduleNext = func(runAt time.Time) {
		fmt.Printf("Next analysis cycle scheduled for: %s\n", runAt.Format("2006-01-02 15:04:05"))

		callback := func() {
			fmt.Println("\n--- Running Analysis Cycle ---")
			if err := a.RunCycle(ctx); err != nil {
				log.Printf("Analysis cycle failed: %v\n", err)
			}
			fmt.Println("--- Analysis Cycle Complete ---")

			// Schedule next run
			scheduleNext(time.Now().Add(interval))
		}

		tm.Schedule(taskID, runAt, callback)
	}

	scheduleNext(time.Now())
}
