package analytics

import "testing"

func sitesWithCategories(sets map[string][]string, order ...string) []SiteMetrics {
	sites := make([]SiteMetrics, 0, len(order))
	for _, siteID := range order {
		sites = append(sites, SiteMetrics{SiteID: siteID, Categories: sets[siteID]})
	}
	return sites
}

func TestBuildSimilarityMatrix_OverlappingSets(t *testing.T) {
	sites := sitesWithCategories(map[string][]string{
		"PHC-001": {"A", "B", "C"},
		"PHC-002": {"A", "B"},
	}, "PHC-001", "PHC-002")

	matrix := BuildSimilarityMatrix(sites)

	// Jaccard 2/3 rounds to 67.
	if matrix.Scores[0][1] != 67 {
		t.Errorf("Expected similarity 67, got %d", matrix.Scores[0][1])
	}
	if matrix.Scores[1][0] != 67 {
		t.Errorf("Matrix not symmetric: got %d", matrix.Scores[1][0])
	}
}

func TestBuildSimilarityMatrix_DiagonalIs100(t *testing.T) {
	sites := sitesWithCategories(map[string][]string{
		"PHC-001": {"A"},
		"PHC-002": {},
		"PHC-003": {"B", "C"},
	}, "PHC-001", "PHC-002", "PHC-003")

	matrix := BuildSimilarityMatrix(sites)

	for i := range matrix.Scores {
		if matrix.Scores[i][i] != 100 {
			t.Errorf("Diagonal cell (%d,%d) = %d, expected 100", i, i, matrix.Scores[i][i])
		}
	}
}

func TestBuildSimilarityMatrix_DisjointAndEmptySets(t *testing.T) {
	sites := sitesWithCategories(map[string][]string{
		"PHC-001": {"A", "B"},
		"PHC-002": {"C", "D"},
		"PHC-003": {},
		"PHC-004": {},
	}, "PHC-001", "PHC-002", "PHC-003", "PHC-004")

	matrix := BuildSimilarityMatrix(sites)

	if matrix.Scores[0][1] != 0 {
		t.Errorf("Disjoint sets should score 0, got %d", matrix.Scores[0][1])
	}
	// Two empty sets have an empty union: score 0 by convention, even
	// though the diagonal stays 100.
	if matrix.Scores[2][3] != 0 {
		t.Errorf("Empty union should score 0, got %d", matrix.Scores[2][3])
	}
}

func TestBuildSimilarityMatrix_Symmetric(t *testing.T) {
	sites := sitesWithCategories(map[string][]string{
		"PHC-001": {"A", "B", "C", "D"},
		"PHC-002": {"B", "C"},
		"PHC-003": {"C", "D", "E"},
	}, "PHC-001", "PHC-002", "PHC-003")

	matrix := BuildSimilarityMatrix(sites)

	for i := range matrix.Scores {
		for j := range matrix.Scores[i] {
			if matrix.Scores[i][j] != matrix.Scores[j][i] {
				t.Errorf("Asymmetry at (%d,%d): %d vs %d",
					i, j, matrix.Scores[i][j], matrix.Scores[j][i])
			}
		}
	}
}

func TestBuildSimilarityMatrix_Empty(t *testing.T) {
	matrix := BuildSimilarityMatrix(nil)
	if len(matrix.SiteIDs) != 0 || len(matrix.Scores) != 0 {
		t.Error("Expected empty matrix for no sites")
	}
}
