package optimizer

// NearestNeighbor builds a closed tour from start by repeatedly moving to
// the closest unvisited point, then returning to start.
//
// Ties go to the lowest index in the scan, so the result is deterministic.
// An unvisited point is always selected, even when every remaining leg is
// unreachable, which keeps the tour valid.
func NearestNeighbor(m Matrix, start int) Tour {
	n := len(m)
	if n == 0 {
		return Tour{}
	}

	visited := make([]bool, n)
	tour := make(Tour, 0, n+1)
	tour = append(tour, start)
	visited[start] = true

	current := start
	for step := 1; step < n; step++ {
		next := -1
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			if next == -1 || m[current][j] < m[current][next] {
				next = j
			}
		}

		tour = append(tour, next)
		visited[next] = true
		current = next
	}

	return append(tour, start)
}
