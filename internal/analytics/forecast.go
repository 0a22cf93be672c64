package analytics

// DefaultForecastHorizon is the number of future steps projected when the
// caller does not ask for a specific horizon.
const DefaultForecastHorizon = 7

// MinForecastPoints is the smallest history a forecast can be built from.
const MinForecastPoints = 3

// Direction slope cutoffs, in series units per step (not percent).
const (
	slopeIncreasing = 0.5
	slopeDecreasing = -0.5
)

// TrendDirection classifies which way a series is heading
type TrendDirection string

const (
	DirectionIncreasing TrendDirection = "increasing"
	DirectionDecreasing TrendDirection = "decreasing"
	DirectionStable     TrendDirection = "stable"
)

// ForecastResult is the output of extrapolating a historical risk series.
// HasData is false when the history was too short; the forecast is then
// empty and the summary fields are zero.
type ForecastResult struct {
	History   []SeriesPoint  `json:"history"`
	Forecast  []float64      `json:"forecast"`
	Direction TrendDirection `json:"direction"`
	Current   float64        `json:"current"`
	Projected float64        `json:"projected"`
	Slope     float64        `json:"slope"`
	RSquared  float64        `json:"r_squared"`
	HasData   bool           `json:"has_data"`
}

// ForecastSeries fits a trend line to the historical series and projects it
// horizon steps forward. Values are risk percentages, so every projected
// point is clamped to the 0-100 display range. A horizon <= 0 selects the
// default.
func ForecastSeries(history []SeriesPoint, horizon int) ForecastResult {
	if horizon <= 0 {
		horizon = DefaultForecastHorizon
	}

	result := ForecastResult{
		History:   history,
		Forecast:  []float64{},
		Direction: DirectionStable,
	}

	if len(history) < MinForecastPoints {
		return result
	}

	values := make([]float64, len(history))
	for i, p := range history {
		values[i] = p.Value
	}

	line, ok := EstimateTrend(values)
	if !ok {
		return result
	}

	n := len(values)
	forecast := make([]float64, 0, horizon)
	for i := 1; i <= horizon; i++ {
		v := line.Intercept + line.Slope*float64(n-1+i)
		forecast = append(forecast, clampPercent(v))
	}

	direction := DirectionStable
	switch {
	case line.Slope > slopeIncreasing:
		direction = DirectionIncreasing
	case line.Slope < slopeDecreasing:
		direction = DirectionDecreasing
	}

	result.Forecast = forecast
	result.Direction = direction
	result.Current = values[n-1]
	result.Projected = forecast[len(forecast)-1]
	result.Slope = line.Slope
	result.RSquared = line.RSquared
	result.HasData = true

	return result
}

// clampPercent bounds a value to the 0-100 display range
func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
