package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentVectorValidation(t *testing.T) {
	_, err := NewDocumentVector([]int{0, 1}, []float64{1})
	assert.Error(t, err)
	_, err = NewDocumentVector([]int{2, 1}, []float64{1, 1})
	assert.Error(t, err)
	_, err = NewDocumentVector([]int{1, 1}, []float64{1, 1})
	assert.Error(t, err)
	_, err = NewDocumentVector([]int{-1}, []float64{1})
	assert.Error(t, err)
	_, err = NewDocumentVector([]int{0}, []float64{-0.5})
	assert.Error(t, err)
	_, err = NewDocumentVector([]int{0}, []float64{math.NaN()})
	assert.Error(t, err)
}

func TestDocumentVectorCosine(t *testing.T) {
	a, err := NewDocumentVector([]int{0, 2}, []float64{3, 4})
	require.NoError(t, err)
	b, err := NewDocumentVector([]int{0, 1}, []float64{1, 1})
	require.NoError(t, err)
	zero, err := NewDocumentVector(nil, nil)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, a.Norm(), 1e-12)
	assert.InDelta(t, 3.0, a.Dot(b), 1e-12)
	assert.InDelta(t, 3.0/(5*math.Sqrt2), a.Cosine(b), 1e-12)
	assert.InDelta(t, 1.0, a.Cosine(a), 1e-12)
	assert.Equal(t, 0.0, a.Cosine(zero))
	assert.Equal(t, 0.0, zero.Cosine(zero))
	assert.Equal(t, 2, a.Len())
}

func TestDocumentVectorCopiesInput(t *testing.T) {
	terms := []int{0, 1}
	weights := []float64{1, 1}
	v, err := NewDocumentVector(terms, weights)
	require.NoError(t, err)
	weights[0] = 100
	assert.InDelta(t, math.Sqrt2, v.Norm(), 1e-12)
	assert.InDelta(t, 2.0, v.Dot(v), 1e-12)
}
