package domain

// A single geo-located item being ordered by the optimizer.
// ID must be unique within one optimization call.
type Stop struct {
	ID          string
	Name        string
	Coordinates Coordinates
}

// Fixed start and end of a day's tour, typically the lodging.
// An Origin anchors the tour but is never returned as a reorderable stop.
type Origin struct {
	Name        string
	Coordinates Coordinates
}
