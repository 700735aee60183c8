package sheets

import "errors"

// Sentinel kinds for sheet source errors.
var (
	ErrAuth  = errors.New("sheets auth failed")
	ErrFetch = errors.New("sheets fetch failed")
)
