package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrOpen    = errors.New("store open failed")
	ErrMigrate = errors.New("store migration failed")
)
