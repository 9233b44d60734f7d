package experimentService

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTwoProportionZ(t *testing.T) {
	// 6% vs 4% over 1000 shows each clears the 1.96 significance bar.
	z := twoProportionZ(60, 1000, 40, 1000)
	assert.Greater(t, z, 1.96)
	assert.Less(t, z, 2.2)

	// Symmetric inputs flip the sign.
	assert.InDelta(t, -z, twoProportionZ(40, 1000, 60, 1000), 1e-9)

	// Identical proportions score zero.
	assert.Equal(t, 0.0, twoProportionZ(50, 1000, 50, 1000))

	// Degenerate sample sizes never divide by zero.
	assert.Equal(t, 0.0, twoProportionZ(10, 0, 5, 100))
	assert.Equal(t, 0.0, twoProportionZ(0, 100, 0, 100))
}

func TestConfidenceFromZ(t *testing.T) {
	assert.InDelta(t, 0.95, confidenceFromZ(1.96), 0.001)
	assert.InDelta(t, 0.99, confidenceFromZ(2.576), 0.001)
	assert.Equal(t, 0.0, confidenceFromZ(0))

	// Two-sided, so the sign does not matter.
	assert.Equal(t, confidenceFromZ(2.0), confidenceFromZ(-2.0))
}

func TestIncrementalMean(t *testing.T) {
	assert.Equal(t, 15.0, incrementalMean(10, 20, 2))
	assert.Equal(t, 20.0, incrementalMean(0, 20, 1))

	// First observation replaces the running average.
	assert.Equal(t, 7.5, incrementalMean(99, 7.5, 0))

	// Folding observations one at a time matches the batch mean.
	values := []float64{3, -1, 8, 12, 0}
	avg := 0.0
	for i, v := range values {
		avg = incrementalMean(avg, v, i+1)
	}
	assert.InDelta(t, 4.4, avg, 1e-9)
}
