package testapi

import "errors"

// Sentinel kinds for the synthetic API.
var (
	ErrUnknownVariant = errors.New("unknown variant")
)

// Messages returned in failed envelopes.
const (
	msgUnknownEndpoint = "Unknown endpoint"
	msgMissingEventID  = "Missing event_id"
	msgEventNotFound   = "Event not found"
)
