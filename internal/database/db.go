package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Connect establishes a connection to the database
func Connect(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &DB{db}, nil
}

// RunMigrations executes all SQL migration files in order
func (db *DB) RunMigrations(migrationsDir string) error {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, file.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, filename := range sqlFiles {
		fmt.Printf("Running migration: %s\n", filename)

		filePath := filepath.Join(migrationsDir, filename)
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	fmt.Println("All migrations completed successfully")
	return nil
}

// UpsertSite inserts or updates a site
func (db *DB) UpsertSite(site *Site) error {
	query := `
		INSERT INTO sites (site_id, district)
		VALUES ($1, $2)
		ON CONFLICT (site_id) DO UPDATE
		SET district = EXCLUDED.district,
		    updated_at = CURRENT_TIMESTAMP
	`
	_, err := db.Exec(query, site.SiteID, site.District)
	return err
}

// GetSite retrieves a site by its ID
func (db *DB) GetSite(siteID string) (*Site, error) {
	query := `
		SELECT site_id, district, created_at, updated_at
		FROM sites
		WHERE site_id = $1
	`

	var site Site
	err := db.QueryRow(query, siteID).Scan(
		&site.SiteID,
		&site.District,
		&site.CreatedAt,
		&site.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	return &site, nil
}

// InsertEvent stores a surveillance event
func (db *DB) InsertEvent(event *EventRecord) error {
	query := `
		INSERT INTO surveillance_events (
			site_id, timestamp, category, severity, risk_score,
			accuracy_drop_percentage, model_version, received_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := db.Exec(query,
		event.SiteID,
		event.Timestamp,
		event.Category,
		event.Severity,
		event.RiskScore,
		event.AccuracyDrop,
		event.ModelVersion,
		event.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// InsertSiteMetrics stores a local-model snapshot
func (db *DB) InsertSiteMetrics(metrics *SiteMetricsRecord) error {
	query := `
		INSERT INTO site_metrics (
			site_id, reported_at, local_accuracy, drift_percentage,
			risk_score, severity, patient_count, model_version, received_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := db.Exec(query,
		metrics.SiteID,
		metrics.ReportedAt,
		metrics.LocalAccuracy,
		metrics.DriftPercentage,
		metrics.RiskScore,
		metrics.Severity,
		metrics.PatientCount,
		metrics.ModelVersion,
		metrics.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert site metrics: %w", err)
	}

	return nil
}

// GetEventsSince retrieves all events observed at or after the given time,
// ordered oldest first
func (db *DB) GetEventsSince(since time.Time) ([]*EventRecord, error) {
	query := `
		SELECT id, site_id, timestamp, category, severity, risk_score,
		       accuracy_drop_percentage, model_version, received_at
		FROM surveillance_events
		WHERE timestamp >= $1
		ORDER BY timestamp ASC
	`

	rows, err := db.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*EventRecord
	for rows.Next() {
		var event EventRecord
		err := rows.Scan(
			&event.ID,
			&event.SiteID,
			&event.Timestamp,
			&event.Category,
			&event.Severity,
			&event.RiskScore,
			&event.AccuracyDrop,
			&event.ModelVersion,
			&event.ReceivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

// GetLatestSiteMetrics retrieves the most recent metrics snapshot per site
func (db *DB) GetLatestSiteMetrics() ([]*SiteMetricsRecord, error) {
	query := `
		SELECT DISTINCT ON (site_id)
		       id, site_id, reported_at, local_accuracy, drift_percentage,
		       risk_score, severity, patient_count, model_version, received_at
		FROM site_metrics
		ORDER BY site_id, reported_at DESC
	`

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query site metrics: %w", err)
	}
	defer rows.Close()

	var metrics []*SiteMetricsRecord
	for rows.Next() {
		var m SiteMetricsRecord
		err := rows.Scan(
			&m.ID,
			&m.SiteID,
			&m.ReportedAt,
			&m.LocalAccuracy,
			&m.DriftPercentage,
			&m.RiskScore,
			&m.Severity,
			&m.PatientCount,
			&m.ModelVersion,
			&m.ReceivedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site metrics: %w", err)
		}
		metrics = append(metrics, &m)
	}

	return metrics, rows.Err()
}

// GetDailyRiskAverages returns the network-wide average event risk per day
// since the given date, scaled to 0-100 for the forecaster
func (db *DB) GetDailyRiskAverages(since time.Time) ([]DailyRisk, error) {
	query := `
		SELECT DATE_TRUNC('day', timestamp) AS day,
		       AVG(risk_score) * 100 AS avg_risk
		FROM surveillance_events
		WHERE timestamp >= $1 AND risk_score IS NOT NULL
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := db.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily risk: %w", err)
	}
	defer rows.Close()

	var series []DailyRisk
	for rows.Next() {
		var dr DailyRisk
		if err := rows.Scan(&dr.Date, &dr.AvgRisk); err != nil {
			return nil, fmt.Errorf("failed to scan daily risk: %w", err)
		}
		series = append(series, dr)
	}

	return series, rows.Err()
}

// InsertOutbreakLog creates an outbreak log entry and returns its ID
func (db *DB) InsertOutbreakLog(outbreak *OutbreakLog) error {
	query := `
		INSERT INTO outbreak_log (
			category, severity, slope, peak_count, trend_config,
			start_time, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING outbreak_id
	`
	err := db.QueryRow(query,
		outbreak.Category,
		outbreak.Severity,
		outbreak.Slope,
		outbreak.PeakCount,
		outbreak.TrendConfig,
		outbreak.StartTime,
		outbreak.Status,
	).Scan(&outbreak.OutbreakID)
	if err != nil {
		return fmt.Errorf("failed to insert outbreak log: %w", err)
	}

	return nil
}

// UpdateOutbreakLogCleared marks an outbreak as cleared
func (db *DB) UpdateOutbreakLogCleared(outbreakID int64, endTime time.Time) error {
	query := `
		UPDATE outbreak_log
		SET status = $1, end_time = $2, updated_at = CURRENT_TIMESTAMP
		WHERE outbreak_id = $3
	`
	_, err := db.Exec(query, OutbreakStatusCleared, endTime, outbreakID)
	if err != nil {
		return fmt.Errorf("failed to update outbreak log: %w", err)
	}

	return nil
}
