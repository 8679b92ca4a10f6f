package vector

import "github.com/hyperjump/baheth/pkg/utils"

// InnerProduct returns the inner product of two vectors, or 0 when their
// lengths differ.
func InnerProduct(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

// CosineSimilarity returns the similarity of two L2-normalized vectors,
// clamped to [0,1]. Nil or mismatched vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if a == nil || b == nil || len(a) != len(b) {
		return 0
	}
	return utils.Clamp(InnerProduct(a, b), 0, 1)
}
