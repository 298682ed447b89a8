package util

import "errors"

// Error taxonomy shared by services and controllers. Services wrap these
// with context via %w; controllers translate them into HTTP responses.
var (
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrUnsupportedFormat   = errors.New("unsupported file format")
	ErrExtractionEmpty     = errors.New("no text extracted from file")
	ErrNoSupportedSources  = errors.New("no supported source files")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrGenerationMalformed = errors.New("generated content is malformed")
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInternal            = errors.New("internal error")
)
