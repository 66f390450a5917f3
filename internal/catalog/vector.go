package catalog

import (
	"fmt"
	"math"
)

// DocumentVector is a sparse non-negative term-weight vector with term
// indices in strictly ascending order.
type DocumentVector struct {
	terms   []int
	weights []float64
	norm    float64
}

// NewDocumentVector validates terms and weights and precomputes the norm.
func NewDocumentVector(terms []int, weights []float64) (DocumentVector, error) {
	if len(terms) != len(weights) {
		return DocumentVector{}, fmt.Errorf("%d terms but %d weights", len(terms), len(weights))
	}
	var sum float64
	for i, t := range terms {
		if t < 0 {
			return DocumentVector{}, fmt.Errorf("negative term index %d", t)
		}
		if i > 0 && t <= terms[i-1] {
			return DocumentVector{}, fmt.Errorf("term indices not strictly ascending at position %d", i)
		}
		w := weights[i]
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return DocumentVector{}, fmt.Errorf("invalid weight %v for term %d", w, t)
		}
		sum += w * w
	}
	return DocumentVector{
		terms:   append([]int(nil), terms...),
		weights: append([]float64(nil), weights...),
		norm:    math.Sqrt(sum),
	}, nil
}

// Norm returns the Euclidean length.
func (v DocumentVector) Norm() float64 { return v.norm }

// Len returns the number of non-zero entries.
func (v DocumentVector) Len() int { return len(v.terms) }

// Dot computes the inner product by merging the two sorted term lists.
func (v DocumentVector) Dot(o DocumentVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.terms) && j < len(o.terms) {
		switch {
		case v.terms[i] == o.terms[j]:
			sum += v.weights[i] * o.weights[j]
			i++
			j++
		case v.terms[i] < o.terms[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Cosine returns the cosine similarity, or 0 when either vector is zero.
func (v DocumentVector) Cosine(o DocumentVector) float64 {
	if v.norm == 0 || o.norm == 0 {
		return 0
	}
	return v.Dot(o) / (v.norm * o.norm)
}
