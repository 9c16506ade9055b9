package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and clients return these
// (optionally wrapped) so the dispatcher can decide between a failure response
// and an internal error.
//
// - ErrNotFound: record does not exist in the store
// - ErrUnavailable: backend or upstream temporarily unavailable
// - ErrInvalidState: value cannot be used in its current form
var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
