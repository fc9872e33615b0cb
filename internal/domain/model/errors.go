package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrUnknownTab = errors.New("unknown tab")
)
