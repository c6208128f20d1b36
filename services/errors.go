package services

import "errors"

// Kesalahan domain yang dipetakan controller ke status HTTP.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("no permission to perform this action")
	ErrInvalidState      = errors.New("invalid project state for this operation")
	ErrInvalidTransition = errors.New("invalid bid status transition")
	ErrDuplicateBid      = errors.New("an active bid for this project already exists")
	ErrProjectNotOpen    = errors.New("project is not open for bidding")
	ErrInvalidInput      = errors.New("invalid input")
)
