package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	TCPServer TCPServerConfig
	Analysis  AnalysisConfig
	SMTP      SMTPConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	TopicEvents   string
	TopicMetrics  string
	TopicAlerts   string
	NumPartitions int
	BatchSize     int
	BatchTimeout  time.Duration
	Compression   string
	Async         bool
	MaxAttempts   int
	RequiredAcks  int
}

type TCPServerConfig struct {
	Port              int
	MaxConnections    int
	IdentifyTimeout   time.Duration
	InactivityTimeout time.Duration
	WorkerCount       int
	JobQueueSize      int
}

type AnalysisConfig struct {
	Interval        time.Duration
	EventWindow     time.Duration
	HistoryDays     int
	ForecastHorizon int
	ConfirmWindow   time.Duration
	ReportTTL       time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "surveillance_user"),
			Password: getEnv("DB_PASSWORD", "surveillance_pass"),
			DBName:   getEnv("DB_NAME", "surveillance_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicEvents:   getEnv("KAFKA_TOPIC_EVENTS", "surveillance.events.raw"),
			TopicMetrics:  getEnv("KAFKA_TOPIC_METRICS", "surveillance.metrics.raw"),
			TopicAlerts:   getEnv("KAFKA_TOPIC_ALERTS", "surveillance.alerts"),
			NumPartitions: getEnvAsInt("KAFKA_NUM_PARTITIONS", 10),
			BatchSize:     getEnvAsInt("KAFKA_BATCH_SIZE", 100),
			BatchTimeout:  getEnvAsDuration("KAFKA_BATCH_TIMEOUT", 50*time.Millisecond),
			Compression:   getEnv("KAFKA_COMPRESSION", "snappy"),
			Async:         getEnvAsBool("KAFKA_ASYNC", false),
			MaxAttempts:   getEnvAsInt("KAFKA_MAX_ATTEMPTS", 3),
			RequiredAcks:  getEnvAsInt("KAFKA_REQUIRED_ACKS", 1),
		},
		TCPServer: TCPServerConfig{
			Port:              getEnvAsInt("TCP_PORT", 8080),
			MaxConnections:    getEnvAsInt("TCP_MAX_CONNECTIONS", 10000),
			IdentifyTimeout:   getEnvAsDuration("TCP_IDENTIFY_TIMEOUT", 10*time.Second),
			InactivityTimeout: getEnvAsDuration("TCP_INACTIVITY_TIMEOUT", 2*time.Minute),
			WorkerCount:       getEnvAsInt("TCP_WORKER_COUNT", 0), // 0 = auto
			JobQueueSize:      getEnvAsInt("TCP_JOB_QUEUE_SIZE", 1000),
		},
		Analysis: AnalysisConfig{
			Interval:        getEnvAsDuration("ANALYSIS_INTERVAL", 5*time.Minute),
			EventWindow:     getEnvAsDuration("ANALYSIS_EVENT_WINDOW", 7*24*time.Hour),
			HistoryDays:     getEnvAsInt("ANALYSIS_HISTORY_DAYS", 30),
			ForecastHorizon: getEnvAsInt("ANALYSIS_FORECAST_HORIZON", 7),
			ConfirmWindow:   getEnvAsDuration("ANALYSIS_CONFIRM_WINDOW", 15*time.Minute),
			ReportTTL:       getEnvAsDuration("ANALYSIS_REPORT_TTL", 30*time.Minute),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "surveillance-server@example.com"),
			To:       getEnv("SMTP_TO", "health-ops@example.com"),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
