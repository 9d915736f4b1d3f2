package vectorstore

import "math"

// CosineSimilarity computes cosine similarity between two vectors. Returns 0
// for mismatched or zero-magnitude inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	// Vectors are normalized upstream, but don't rely on it.
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// MaximalMarginalRelevance selects up to k indices from candidates,
// balancing relevance to the query against redundancy among the selected
// set. lambda weighs relevance; (1-lambda) weighs diversity.
func MaximalMarginalRelevance(queryVec []float32, candidateVecs [][]float32, lambda float64, k int) []int {
	n := len(candidateVecs)
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}

	relevance := make([]float64, n)
	for i, vec := range candidateVecs {
		relevance[i] = CosineSimilarity(queryVec, vec)
	}

	selected := make([]int, 0, k)
	picked := make([]bool, n)

	for len(selected) < k {
		best := -1
		bestScore := 0.0
		for i := 0; i < n; i++ {
			if picked[i] {
				continue
			}
			maxRedundancy := 0.0
			for _, s := range selected {
				if sim := CosineSimilarity(candidateVecs[i], candidateVecs[s]); sim > maxRedundancy {
					maxRedundancy = sim
				}
			}
			score := lambda*relevance[i] - (1-lambda)*maxRedundancy
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best == -1 {
			break
		}
		picked[best] = true
		selected = append(selected, best)
	}

	return selected
}
