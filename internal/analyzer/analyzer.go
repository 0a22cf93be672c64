package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/asengupta/surveillance-server/internal/alerting"
	"github.com/asengupta/surveillance-server/internal/analytics"
	"github.com/asengupta/surveillance-server/internal/database"
	"github.com/asengupta/surveillance-server/internal/protocol"
	"github.com/asengupta/surveillance-server/internal/queue"
	"github.com/asengupta/surveillance-server/internal/snapshot"
)

// Analyzer runs periodic analysis cycles: build a report from a fresh
// snapshot, cache it for the dashboard, and drive outbreak alerts through
// the CLEAR -> PENDING -> ACTIVE state machine.
type Analyzer struct {
	loader        *snapshot.Loader
	cache         *alerting.ReportCache
	states        *alerting.StateManager
	alertProducer *queue.Producer
	db            *database.DB
	horizon       int
	confirmWindow time.Duration
}

// NewAnalyzer creates an analyzer. confirmWindow is how long a detected
// trend must persist before an outbreak alert fires.
func NewAnalyzer(
	loader *snapshot.Loader,
	cache *alerting.ReportCache,
	states *alerting.StateManager,
	alertProducer *queue.Producer,
	db *database.DB,
	horizon int,
	confirmWindow time.Duration,
) *Analyzer {
	return &Analyzer{
		loader:        loader,
		cache:         cache,
		states:        states,
		alertProducer: alertProducer,
		db:            db,
		horizon:       horizon,
		confirmWindow: confirmWindow,
	}
}

// RunCycle executes one full analysis cycle
func (a *Analyzer) RunCycle(ctx context.Context) error {
	start := time.Now()

	snap, err := a.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	report := BuildReport(snap, a.horizon)

	if err := a.cache.StoreLatest(ctx, report); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}

	if err := a.evaluateOutbreaks(ctx, report.Outbreaks); err != nil {
		fmt.Printf("Outbreak evaluation error: %v\n", err)
	}

	fmt.Printf("Analysis cycle complete: %d events, %d sites, %d categories detected (took %v)\n",
		report.EventCount, report.SiteCount, report.Outbreaks.DetectedCount, time.Since(start))

	return nil
}

// evaluateOutbreaks advances the per-category outbreak state machine.
// Only detected trends of HIGH severity or worse are alert-worthy.
func (a *Analyzer) evaluateOutbreaks(ctx context.Context, report analytics.OutbreakReport) error {
	now := time.Now()

	for _, trend := range report.Categories {
		alertWorthy := trend.Detected && trend.Severity.Rank() >= analytics.SeverityHigh.Rank()

		state, err := a.states.GetState(ctx, trend.Category)
		if err != nil {
			fmt.Printf("Failed to get outbreak state for %s: %v\n", trend.Category, err)
			continue
		}

		if alertWorthy {
			err = a.handleDetected(ctx, trend, state, now)
		} else {
			err = a.handleNotDetected(ctx, trend, state, now)
		}
		if err != nil {
			fmt.Printf("Failed to advance outbreak state for %s: %v\n", trend.Category, err)
		}
	}

	return nil
}

func (a *Analyzer) handleDetected(ctx context.Context, trend analytics.CategoryTrend, state *alerting.OutbreakState, now time.Time) error {
	switch state.Status {
	case alerting.OutbreakStateClear:
		// New detection, wait for confirmation
		newState := &alerting.OutbreakState{
			Status:        alerting.OutbreakStatePending,
			FirstDetected: now,
			LastChecked:   now,
			Slope:         trend.Slope,
			LastCount:     trend.LastCount,
		}
		return a.states.SetState(ctx, trend.Category, newState)

	case alerting.OutbreakStatePending:
		confirmed := now.Sub(state.FirstDetected) >= a.confirmWindow

		if confirmed {
			return a.triggerOutbreak(ctx, trend, state, now)
		}

		state.LastChecked = now
		state.Slope = trend.Slope
		state.LastCount = trend.LastCount
		return a.states.SetState(ctx, trend.Category, state)

	case alerting.OutbreakStateActive:
		// Outbreak already active, keep tracking
		state.LastChecked = now
		state.Slope = trend.Slope
		state.LastCount = trend.LastCount
		return a.states.SetState(ctx, trend.Category, state)
	}

	return nil
}

func (a *Analyzer) handleNotDetected(ctx context.Context, trend analytics.CategoryTrend, state *alerting.OutbreakState, now time.Time) error {
	switch state.Status {
	case alerting.OutbreakStateClear:
		// Nothing to do
		return nil

	case alerting.OutbreakStatePending:
		// Trend faded before confirmation
		return a.states.DeleteState(ctx, trend.Category)

	case alerting.OutbreakStateActive:
		return a.clearOutbreak(ctx, trend, state, now)
	}

	return nil
}

func (a *Analyzer) triggerOutbreak(ctx context.Context, trend analytics.CategoryTrend, state *alerting.OutbreakState, now time.Time) error {
	fmt.Printf("OUTBREAK DETECTED: %s (severity=%s, slope=%.2f, last_count=%.0f)\n",
		trend.Category, trend.Severity, trend.Slope, trend.LastCount)

	trendConfig, _ := json.Marshal(trend)
	outbreakLog := &database.OutbreakLog{
		Category:    trend.Category,
		Severity:    string(trend.Severity),
		Slope:       trend.Slope,
		PeakCount:   trend.LastCount,
		TrendConfig: string(trendConfig),
		StartTime:   state.FirstDetected,
		Status:      database.OutbreakStatusActive,
	}

	if err := a.db.InsertOutbreakLog(outbreakLog); err != nil {
		return fmt.Errorf("failed to insert outbreak log: %w", err)
	}

	state.Status = alerting.OutbreakStateActive
	state.OutbreakID = outbreakLog.OutbreakID
	state.LastChecked = now
	state.Slope = trend.Slope
	state.LastCount = trend.LastCount
	if err := a.states.SetState(ctx, trend.Category, state); err != nil {
		return err
	}

	notification := &protocol.OutbreakNotification{
		Type:       protocol.OutbreakTypeDetected,
		Category:   trend.Category,
		Severity:   string(trend.Severity),
		Slope:      trend.Slope,
		LastCount:  trend.LastCount,
		StartTime:  state.FirstDetected,
		OutbreakID: outbreakLog.OutbreakID,
	}

	return a.sendNotification(ctx, notification)
}

func (a *Analyzer) clearOutbreak(ctx context.Context, trend analytics.CategoryTrend, state *alerting.OutbreakState, now time.Time) error {
	fmt.Printf("OUTBREAK CLEARED: %s\n", trend.Category)

	if state.OutbreakID > 0 {
		if err := a.db.UpdateOutbreakLogCleared(state.OutbreakID, now); err != nil {
			return fmt.Errorf("failed to update outbreak log: %w", err)
		}
	}

	if err := a.states.DeleteState(ctx, trend.Category); err != nil {
		return err
	}

	notification := &protocol.OutbreakNotification{
		Type:       protocol.OutbreakTypeCleared,
		Category:   trend.Category,
		Severity:   string(trend.Severity),
		Slope:      trend.Slope,
		LastCount:  trend.LastCount,
		StartTime:  state.FirstDetected,
		OutbreakID: state.OutbreakID,
	}

	return a.sendNotification(ctx, notification)
}

func (a *Analyzer) sendNotification(ctx context.Context, notification *protocol.OutbreakNotification) error {
	data, err := protocol.EncodeOutbreakNotification(notification)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	return a.alertProducer.Publish(ctx, notification.Category, data)
}
