package training

import "github.com/ironsheep/manga-bubble-detector/internal/labels"

// ClassWeights assigns each observed category the weight
// total / (categories * count), so rare categories weigh more and the
// weighted sum of counts equals the total number of annotations.
// Categories with a zero count are left out. An empty input gives an empty map.
func ClassWeights(counts labels.Counts) map[int]float64 {
	weights := make(map[int]float64, len(counts))

	observed := 0
	for _, n := range counts {
		if n > 0 {
			observed++
		}
	}
	if observed == 0 {
		return weights
	}

	total := float64(counts.Total())
	for class, n := range counts {
		if n <= 0 {
			continue
		}
		weights[class] = total / (float64(observed) * float64(n))
	}
	return weights
}
