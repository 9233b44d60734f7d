package experimentService

import "math"

// twoProportionZ computes the two-proportion z-score for conversion counts
// of a variant against its control.
func twoProportionZ(variantConv, variantN, controlConv, controlN int) float64 {
	if variantN == 0 || controlN == 0 {
		return 0
	}

	p1 := float64(variantConv) / float64(variantN)
	p2 := float64(controlConv) / float64(controlN)
	pooled := float64(variantConv+controlConv) / float64(variantN+controlN)

	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(variantN) + 1/float64(controlN)))
	if se == 0 {
		return 0
	}

	return (p1 - p2) / se
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// confidenceFromZ maps a z-score to a two-sided confidence level in [0,1).
func confidenceFromZ(z float64) float64 {
	return 2*normalCDF(math.Abs(z)) - 1
}

// incrementalMean folds one new observation into a running average without
// storing the history.
func incrementalMean(oldAvg, newValue float64, n int) float64 {
	if n <= 0 {
		return newValue
	}
	return oldAvg + (newValue-oldAvg)/float64(n)
}
