package quant

import "math"

const adaptiveSampleCap = 10000

// adaptiveThreshold derives the ternary decision threshold from the
// sampled coefficient of variation of the weights: wide distributions
// push the threshold up, tight ones pull it down.
func adaptiveThreshold(weights []float32, fallback float32) float32 {
	count := len(weights)
	if count == 0 {
		return fallback
	}

	step := 1
	if count > adaptiveSampleCap {
		step = count / adaptiveSampleCap
	}

	var sum, sumSq, maxAbsVal float64
	n := 0
	for i := 0; i < count; i += step {
		v := float64(weights[i])
		av := math.Abs(v)
		sum += v
		sumSq += v * v
		if av > maxAbsVal {
			maxAbsVal = av
		}
		n++
	}
	if maxAbsVal == 0 {
		return fallback
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	cv := math.Sqrt(variance) / maxAbsVal

	switch {
	case cv > 0.5:
		return 0.35
	case cv < 0.2:
		return 0.28
	default:
		return 0.33
	}
}
