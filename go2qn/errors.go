package go2qn

import "errors"

// Errors
var (
	ErrInvalidGate        = errors.New("invalid gate encoding")
	ErrDepthMismatch      = errors.New("network depth mismatch")
	ErrQubitCountMismatch = errors.New("qubit count mismatch")
	ErrWorkerFailure      = errors.New("enumeration worker failure")
	ErrBadCatalogParam    = errors.New("bad catalog param")
	ErrCatalogReadOnly    = errors.New("catalog is read-only")
	ErrBadEncoding        = errors.New("bad net encoding")
	ErrBadPermutation     = errors.New("bad qubit permutation")
	ErrBadSeed            = errors.New("bad seed file")
	ErrNilNet             = errors.New("nil net")
)
