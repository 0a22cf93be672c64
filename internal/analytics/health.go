package analytics

import "math"

// Network health status bands.
const (
	StatusInitializing = "Initializing"
	StatusOptimal      = "Optimal"
	StatusStable       = "Stable"
	StatusVolatile     = "Volatile"
	StatusCritical     = "Critical"
)

// HealthFactors breaks the composite score into its capped components
type HealthFactors struct {
	Diversity      float64 `json:"diversity"`       // participation, max 30
	Accuracy       float64 `json:"accuracy"`        // mean model accuracy, max 50
	DriftStability float64 `json:"drift_stability"` // inverse mean drift, max 20
}

// NetworkHealth is the composite 0-100 health of the whole site network
type NetworkHealth struct {
	Score     int           `json:"score"`
	Status    string        `json:"status"`
	Factors   HealthFactors `json:"factors"`
	SiteCount int           `json:"site_count"`
}

// ScoreNetworkHealth combines site participation, mean model accuracy, and
// mean drift into one bounded score. Absent readings are excluded from the
// means rather than counted as zero. With no sites at all the network is
// still initializing and scores 0.
func ScoreNetworkHealth(sites []SiteMetrics) NetworkHealth {
	siteCount := len(sites)
	if siteCount == 0 {
		return NetworkHealth{Status: StatusInitializing}
	}

	diversity := math.Min(float64(siteCount)/4*100, 30)

	var accuracySum float64
	accuracyCount := 0
	var driftSum float64
	driftCount := 0
	for _, site := range sites {
		if site.LocalAccuracy != nil && *site.LocalAccuracy > 0 {
			accuracySum += *site.LocalAccuracy
			accuracyCount++
		}
		if site.DriftPercentage != nil && *site.DriftPercentage >= 0 {
			driftSum += *site.DriftPercentage
			driftCount++
		}
	}

	accuracy := 0.0
	if accuracyCount > 0 {
		accuracy = math.Min(accuracySum/float64(accuracyCount)*100, 50)
	}

	meanDrift := 0.0
	if driftCount > 0 {
		meanDrift = driftSum / float64(driftCount)
	}
	driftStability := math.Max(20-math.Abs(meanDrift), 0)

	score := int(math.Round(diversity + accuracy + driftStability))

	var status string
	switch {
	case score >= 80:
		status = StatusOptimal
	case score >= 60:
		status = StatusStable
	case score >= 40:
		status = StatusVolatile
	default:
		status = StatusCritical
	}

	return NetworkHealth{
		Score:     score,
		Status:    status,
		SiteCount: siteCount,
		Factors: HealthFactors{
			Diversity:      diversity,
			Accuracy:       accuracy,
			DriftStability: driftStability,
		},
	}
}
