// Package stats computes reaction-time statistics over a session's latencies.
//
// Every function is pure and works on the slice it is given; inputs are never
// reordered. Latencies are milliseconds.
package stats

import (
	"math"
	"sort"
)

// Fastest returns the smallest latency.
func Fastest(samples []float64) Value {
	if len(samples) == 0 {
		return Unavailable()
	}
	minVal := samples[0]
	for _, s := range samples[1:] {
		if s < minVal {
			minVal = s
		}
	}
	return Of(minVal)
}

// Slowest returns the largest latency.
func Slowest(samples []float64) Value {
	if len(samples) == 0 {
		return Unavailable()
	}
	maxVal := samples[0]
	for _, s := range samples[1:] {
		if s > maxVal {
			maxVal = s
		}
	}
	return Of(maxVal)
}

// Average returns the arithmetic mean.
func Average(samples []float64) Value {
	if len(samples) == 0 {
		return Unavailable()
	}
	return Of(mean(samples))
}

// Median returns the middle latency, or the mean of the two middle ones for
// an even count.
func Median(samples []float64) Value {
	if len(samples) == 0 {
		return Unavailable()
	}
	sorted := sortedCopy(samples)
	mid := len(sorted) / 2
	if len(sorted)%2 != 0 {
		return Of(sorted[mid])
	}
	return Of((sorted[mid-1] + sorted[mid]) / 2)
}

// Stdev returns the sample standard deviation (n-1 denominator). It needs at
// least two samples.
func Stdev(samples []float64) Value {
	n := len(samples)
	if n < 2 {
		return Unavailable()
	}
	m := mean(samples)
	var sq float64
	for _, s := range samples {
		d := s - m
		sq += d * d
	}
	return Of(math.Sqrt(sq / float64(n-1)))
}

// Percentile returns the p-th percentile by linear interpolation between the
// two sorted values bracketing rank (n-1)*p/100. p is clamped to [0, 100].
func Percentile(samples []float64, p float64) Value {
	if len(samples) == 0 {
		return Unavailable()
	}
	if math.IsNaN(p) || p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	sorted := sortedCopy(samples)
	k := float64(len(sorted)-1) * (p / 100)
	f := int(math.Floor(k))
	c := f + 1
	if c > len(sorted)-1 {
		c = len(sorted) - 1
	}
	if f == c {
		return Of(sorted[int(math.Trunc(k))])
	}
	d0 := sorted[f] * (float64(c) - k)
	d1 := sorted[c] * (k - float64(f))
	return Of(d0 + d1)
}

// Percentile25 is the lower quartile.
func Percentile25(samples []float64) Value { return Percentile(samples, 25) }

// Percentile75 is the upper quartile.
func Percentile75(samples []float64) Value { return Percentile(samples, 75) }

// Accuracy is correct over total inputs, as a percentage.
func Accuracy(correct, totalInputs int) Value {
	if totalInputs <= 0 {
		return Unavailable()
	}
	return Of(float64(correct) / float64(totalInputs) * 100)
}

// PromptRatio is correct responses over prompts shown.
func PromptRatio(correct, totalPrompts int) Ratio {
	r := Ratio{Correct: correct, Prompts: totalPrompts}
	if totalPrompts > 0 {
		r.Pct = Of(float64(correct) / float64(totalPrompts) * 100)
	}
	return r
}

// Summary bundles every statistic shown for a session.
type Summary struct {
	Fastest     Value `json:"fastest_ms"`
	Slowest     Value `json:"slowest_ms"`
	Average     Value `json:"average_ms"`
	Median      Value `json:"median_ms"`
	Stdev       Value `json:"stdev_ms"`
	P25         Value `json:"p25_ms"`
	P75         Value `json:"p75_ms"`
	Accuracy    Value `json:"accuracy_pct"`
	PromptRatio Ratio `json:"prompt_ratio"`
}

// Summarize computes the full Summary.
func Summarize(samples []float64, correct, totalInputs, totalPrompts int) Summary {
	return Summary{
		Fastest:     Fastest(samples),
		Slowest:     Slowest(samples),
		Average:     Average(samples),
		Median:      Median(samples),
		Stdev:       Stdev(samples),
		P25:         Percentile25(samples),
		P75:         Percentile75(samples),
		Accuracy:    Accuracy(correct, totalInputs),
		PromptRatio: PromptRatio(correct, totalPrompts),
	}
}

func mean(samples []float64) float64 {
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}

func sortedCopy(samples []float64) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)
	sort.Float64s(out)
	return out
}
