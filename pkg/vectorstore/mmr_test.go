package vectorstore

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched lengths", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMaximalMarginalRelevancePicksRelevantFirst(t *testing.T) {
	query := []float32{1, 0, 0}
	candidates := [][]float32{
		{0, 1, 0},       // orthogonal
		{1, 0, 0},       // exact match
		{0.9, 0.1, 0.1}, // close
	}

	picked := MaximalMarginalRelevance(query, candidates, 0.5, 2)

	if len(picked) != 2 {
		t.Fatalf("picked %d, want 2", len(picked))
	}
	if picked[0] != 1 {
		t.Errorf("first pick = %d, want the exact match (1)", picked[0])
	}
}

func TestMaximalMarginalRelevanceDiversity(t *testing.T) {
	query := []float32{1, 0}
	// c1 and c2 are equally relevant to the query; c1 sits close to c0, c2
	// on the opposite side.
	candidates := [][]float32{
		{0.970, 0.243},
		{0.9, 0.436},
		{0.9, -0.436},
	}

	picked := MaximalMarginalRelevance(query, candidates, 0.5, 2)

	if len(picked) != 2 {
		t.Fatalf("picked %d, want 2", len(picked))
	}
	if picked[0] != 0 {
		t.Fatalf("first pick = %d, want the most relevant (0)", picked[0])
	}
	// With diversity weighting the near-duplicate loses to the distinct one
	if picked[1] != 2 {
		t.Errorf("second pick = %d, want the diverse candidate (2)", picked[1])
	}
}

func TestMaximalMarginalRelevanceBounds(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{{1, 0}, {0, 1}}

	if got := MaximalMarginalRelevance(query, candidates, 0.5, 10); len(got) != 2 {
		t.Errorf("k beyond candidate count: picked %d, want 2", len(got))
	}
	if got := MaximalMarginalRelevance(query, candidates, 0.5, 0); got != nil {
		t.Errorf("k=0: picked %v, want nil", got)
	}
	if got := MaximalMarginalRelevance(query, nil, 0.5, 3); got != nil {
		t.Errorf("no candidates: picked %v, want nil", got)
	}
}
