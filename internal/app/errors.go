package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoSource     = errors.New("no data source configured")
	ErrNotStarted   = errors.New("service not started")
	ErrEmptyEventID = errors.New("event id must not be empty")
	ErrQueueFull    = errors.New("load queue full")
)
