package optimizer

import "errors"

var (
	ErrInvalidCoordinates = errors.New("optimizer: invalid coordinates")
	ErrDuplicateStop      = errors.New("optimizer: duplicate stop id")
	ErrDuplicateDay       = errors.New("optimizer: duplicate day number")
	ErrInvalidMatrix      = errors.New("optimizer: invalid distance matrix")
	ErrInvalidTour        = errors.New("optimizer: invalid tour")
)
