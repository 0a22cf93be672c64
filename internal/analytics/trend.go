package analytics

// TrendLine is the ordinary least squares fit of a series whose x values
// are the indices 0..n-1.
type TrendLine struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"` // goodness of fit, 0..100
}

// EstimateTrend fits a least squares line to the ordered series. It returns
// false when the series has fewer than two points; there is no fit to report
// and callers must treat the result as absent, not as a flat line.
func EstimateTrend(values []float64) (TrendLine, bool) {
	n := len(values)
	if n < 2 {
		return TrendLine{}, false
	}

	xMean := float64(n-1) / 2
	var yMean float64
	for _, v := range values {
		yMean += v
	}
	yMean /= float64(n)

	var num, den float64
	for i, v := range values {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}

	// den is zero only for a degenerate index range; slope 0 guards the
	// division, it is not a statistical claim
	slope := 0.0
	if den != 0 {
		slope = num / den
	}
	intercept := yMean - slope*xMean

	var ssRes, ssTot float64
	for i, v := range values {
		fit := intercept + slope*float64(i)
		ssRes += (v - fit) * (v - fit)
		dy := v - yMean
		ssTot += dy * dy
	}

	// constant series: no variance to explain, report zero confidence
	rSquared := 0.0
	if ssTot != 0 {
		rSquared = (1 - ssRes/ssTot) * 100
		if rSquared < 0 {
			rSquared = 0
		}
	}

	return TrendLine{Slope: slope, Intercept: intercept, RSquared: rSquared}, true
}
