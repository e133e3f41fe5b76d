package bracket

import "errors"

var (
	ErrValidation  = errors.New("validation failed")
	ErrState       = errors.New("illegal state transition")
	ErrNotReady    = errors.New("game is not ready")
	ErrConflict    = errors.New("bracket conflict")
	ErrUndoExpired = errors.New("undo window expired")
	ErrInvariant   = errors.New("bracket invariant violated")
	ErrNotFound    = errors.New("not found")
)
