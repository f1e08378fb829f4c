package bench

import "slices"

// TrimmedMedian denoises timing samples. With three or more samples it
// drops roughly 20% from each tail (at least one sample per tail) and
// takes the median of the remainder; with fewer it takes the median of
// whatever is there. Zero samples yield 0, which callers must read as
// "unmeasured", never as a real near-zero duration.
func TrimmedMedian(samples []float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	if n >= 3 {
		trim := n / 5
		if trim < 1 {
			trim = 1
		}
		sorted = sorted[trim : n-trim]
	}

	return median(sorted)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
