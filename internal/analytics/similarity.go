package analytics

import "math"

// SimilarityMatrix holds pairwise Jaccard similarity scores (0-100) between
// sites, indexed in the same order as SiteIDs. Symmetric, with 100 on the
// diagonal.
type SimilarityMatrix struct {
	SiteIDs []string `json:"site_ids"`
	Scores  [][]int  `json:"scores"`
}

// BuildSimilarityMatrix computes pairwise similarity between the sites'
// category sets, in the order the sites are given.
func BuildSimilarityMatrix(sites []SiteMetrics) SimilarityMatrix {
	n := len(sites)
	matrix := SimilarityMatrix{
		SiteIDs: make([]string, n),
		Scores:  make([][]int, n),
	}

	sets := make([]map[string]struct{}, n)
	for i, site := range sites {
		matrix.SiteIDs[i] = site.SiteID
		sets[i] = categorySet(site.Categories)
	}

	for i := 0; i < n; i++ {
		matrix.Scores[i] = make([]int, n)
		matrix.Scores[i][i] = 100
		for j := 0; j < i; j++ {
			score := jaccardScore(sets[i], sets[j])
			matrix.Scores[i][j] = score
			matrix.Scores[j][i] = score
		}
	}

	return matrix
}

func categorySet(labels []string) map[string]struct{} {
	set := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		set[label] = struct{}{}
	}
	return set
}

// jaccardScore is round(100 * |a∩b| / |a∪b|); an empty union scores 0
func jaccardScore(a, b map[string]struct{}) int {
	intersection := 0
	union := len(b)
	for label := range a {
		if _, ok := b[label]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return int(math.Round(100 * float64(intersection) / float64(union)))
}
