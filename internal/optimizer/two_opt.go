package optimizer

import "time"

// DefaultEpsilon is the smallest gain (in km) accepted as an improvement.
const DefaultEpsilon = 1e-9

// Budget bounds a 2-opt run. Zero values mean unbounded.
type Budget struct {
	// MaxIterations caps the number of accepted moves.
	MaxIterations int
	// Deadline stops refinement once the wall clock passes it.
	Deadline time.Time
	// Epsilon is the minimum gain for a move to count as an improvement.
	Epsilon float64
}

// Stats describes a 2-opt run.
type Stats struct {
	Iterations int
	Sweeps     int
	Truncated  bool
}

// TwoOpt refines a closed tour with best-improvement 2-opt.
//
// Each sweep evaluates every reversal of an interior segment [i..k], applies
// the one with the largest gain, and repeats until no reversal improves the
// tour by more than the budget's epsilon. Both endpoints stay fixed.
//
// The gain accounts for direction: when the matrix is asymmetric the legs
// inside the reversed segment are re-costed in the new direction. The input
// tour is not modified. If the budget runs out the best tour found so far is
// returned with Stats.Truncated set.
func TwoOpt(m Matrix, initial Tour, budget Budget) (Tour, Stats) {
	tour := initial.Clone()
	var stats Stats

	if len(tour) < 4 {
		return tour, stats
	}

	eps := budget.Epsilon
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	symmetric := m.Symmetric()
	last := len(tour) - 1

	for {
		if !budget.Deadline.IsZero() && time.Now().After(budget.Deadline) {
			stats.Truncated = true
			return tour, stats
		}
		stats.Sweeps++

		bestGain := eps
		bestI, bestK := -1, -1

		for i := 1; i < last-1; i++ {
			for k := i + 1; k < last; k++ {
				a, b, c, d := tour[i-1], tour[i], tour[k], tour[k+1]
				delta := m[a][c] + m[b][d] - m[a][b] - m[c][d]
				if !symmetric {
					delta += segmentReversalDelta(m, tour, i, k)
				}

				if -delta > bestGain {
					bestGain = -delta
					bestI, bestK = i, k
				}
			}
		}

		if bestI == -1 {
			return tour, stats
		}

		reverseSegment(tour, bestI, bestK)
		stats.Iterations++

		if budget.MaxIterations > 0 && stats.Iterations >= budget.MaxIterations {
			stats.Truncated = true
			return tour, stats
		}
	}
}

// segmentReversalDelta is the change in cost of the legs inside [i..k] when
// they are traversed backwards.
func segmentReversalDelta(m Matrix, t Tour, i, k int) float64 {
	delta := 0.0
	for p := i; p < k; p++ {
		delta += m[t[p+1]][t[p]] - m[t[p]][t[p+1]]
	}
	return delta
}
