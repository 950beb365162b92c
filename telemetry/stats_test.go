package telemetry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Summary
	}{
		{"empty slice", []float64{}, Summary{}},
		{"single element", []float64{5}, Summary{Mean: 5, P10: 5, P50: 5, P90: 5}},
		{
			"unsorted ten",
			[]float64{10, 1, 9, 2, 8, 3, 7, 4, 6, 5},
			Summary{Mean: 5.5, Std: math.Sqrt(55.0 / 6.0), P10: 1, P50: 5, P90: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.values)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-9)
			assert.InDelta(t, tt.want.Std, got.Std, 1e-9)
			assert.Equal(t, tt.want.P10, got.P10)
			assert.Equal(t, tt.want.P50, got.P50)
			assert.Equal(t, tt.want.P90, got.P90)
		})
	}
}

func TestSummarizeOrdersQuantiles(t *testing.T) {
	values := []float64{3.5, 0.2, 99, 12, 12, 40, 7}
	s := Summarize(values)

	assert.LessOrEqual(t, s.P10, s.P50)
	assert.LessOrEqual(t, s.P50, s.P90)
	assert.IsNonDecreasing(t, values, "values are sorted in place")
}
