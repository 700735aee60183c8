package service

import "errors"

// Sentinel kinds for service lifecycle errors.
var (
	ErrNotStarted = errors.New("service not started")
	ErrNoSource   = errors.New("service has no row source")
	ErrNoStore    = errors.New("service has no snapshot store")
)
