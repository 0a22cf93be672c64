package analytics

import (
	"testing"
	"time"
)

func riskSeries(values ...float64) []SeriesPoint {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	points := make([]SeriesPoint, len(values))
	for i, v := range values {
		points[i] = SeriesPoint{Date: start.AddDate(0, 0, i), Value: v}
	}
	return points
}

func TestForecastSeries_LinearRiskSeries(t *testing.T) {
	// Historical risk 10,20,30,40,50: slope 10, intercept 0. The 7-day
	// projection crosses 100 at step 6 (10*(4+6)=100) and clamps after.
	history := riskSeries(10, 20, 30, 40, 50)

	result := ForecastSeries(history, DefaultForecastHorizon)
	if !result.HasData {
		t.Fatal("Expected a forecast for 5-point history")
	}

	if !almostEqual(result.Slope, 10) {
		t.Errorf("Expected slope 10, got %f", result.Slope)
	}
	if result.Direction != DirectionIncreasing {
		t.Errorf("Expected direction increasing, got %s", result.Direction)
	}
	if result.Current != 50 {
		t.Errorf("Expected current value 50, got %f", result.Current)
	}

	expected := []float64{60, 70, 80, 90, 100, 100, 100}
	if len(result.Forecast) != len(expected) {
		t.Fatalf("Expected %d forecast points, got %d", len(expected), len(result.Forecast))
	}
	for i, want := range expected {
		if !almostEqual(result.Forecast[i], want) {
			t.Errorf("Forecast[%d]: expected %f, got %f", i, want, result.Forecast[i])
		}
	}
	if result.Projected != 100 {
		t.Errorf("Expected projected value 100, got %f", result.Projected)
	}
}

func TestForecastSeries_NeverLeavesDisplayRange(t *testing.T) {
	cases := [][]float64{
		{90, 95, 99, 100, 100},
		{10, 5, 1, 0, 0},
		{100, 50, 0, 100, 50},
	}

	for _, values := range cases {
		result := ForecastSeries(riskSeries(values...), 30)
		for i, v := range result.Forecast {
			if v < 0 || v > 100 {
				t.Errorf("Forecast[%d] for %v out of range: %f", i, values, v)
			}
		}
	}
}

func TestForecastSeries_InsufficientData(t *testing.T) {
	result := ForecastSeries(riskSeries(10, 20), 7)

	if result.HasData {
		t.Error("Expected no forecast for 2-point history")
	}
	if len(result.Forecast) != 0 {
		t.Errorf("Expected empty forecast, got %d points", len(result.Forecast))
	}
	if result.Direction != DirectionStable {
		t.Errorf("Expected stable direction for empty result, got %s", result.Direction)
	}
	if len(result.History) != 2 {
		t.Error("History must be returned unchanged")
	}
}

func TestForecastSeries_DirectionClassification(t *testing.T) {
	// Slope exactly at the cutoff is stable; the threshold is exclusive.
	flat := ForecastSeries(riskSeries(10, 10.5, 11), 7)
	if flat.Direction != DirectionStable {
		t.Errorf("Slope 0.5 should be stable, got %s", flat.Direction)
	}

	down := ForecastSeries(riskSeries(30, 20, 10), 7)
	if down.Direction != DirectionDecreasing {
		t.Errorf("Expected decreasing, got %s", down.Direction)
	}

	constant := ForecastSeries(riskSeries(25, 25, 25, 25), 7)
	if constant.Direction != DirectionStable {
		t.Errorf("Expected stable, got %s", constant.Direction)
	}
	if constant.RSquared != 0 {
		t.Errorf("Constant series should carry zero confidence, got %f", constant.RSquared)
	}
}

func TestForecastSeries_DefaultHorizon(t *testing.T) {
	result := ForecastSeries(riskSeries(10, 20, 30), 0)
	if len(result.Forecast) != DefaultForecastHorizon {
		t.Errorf("Expected default horizon %d, got %d points", DefaultForecastHorizon, len(result.Forecast))
	}
}
