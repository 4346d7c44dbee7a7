package optimizer

import "fmt"

// Tour is a closed visiting order over matrix indices. For n points a valid
// tour has n+1 entries, starts and ends at the same index, and visits every
// other index exactly once in between.
type Tour []int

// Clone returns an independent copy of t.
func (t Tour) Clone() Tour {
	out := make(Tour, len(t))
	copy(out, t)
	return out
}

// Interior returns the positions strictly between the two endpoints.
func (t Tour) Interior() []int {
	if len(t) < 2 {
		return nil
	}
	return t[1 : len(t)-1]
}

// Validate enforces the closed-tour invariant for n points.
func (t Tour) Validate(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: tour over %d points", ErrInvalidTour, n)
	}
	if len(t) != n+1 {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidTour, len(t), n+1)
	}
	if t[0] != t[n] {
		return fmt.Errorf("%w: starts at %d but ends at %d", ErrInvalidTour, t[0], t[n])
	}

	seen := make([]bool, n)
	for _, v := range t[:n] {
		if v < 0 || v >= n {
			return fmt.Errorf("%w: index %d out of range", ErrInvalidTour, v)
		}
		if seen[v] {
			return fmt.Errorf("%w: index %d visited twice", ErrInvalidTour, v)
		}
		seen[v] = true
	}
	return nil
}

func reverseSegment(t Tour, i, k int) {
	for i < k {
		t[i], t[k] = t[k], t[i]
		i++
		k--
	}
}
