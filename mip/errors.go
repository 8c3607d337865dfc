package mip

import "errors"

var (
	// ErrInvalidModel is returned when a model fails validation.
	ErrInvalidModel = errors.New("invalid model")

	// ErrBackendFailed is returned when a solver backend cannot run or its output
	// cannot be read.
	ErrBackendFailed = errors.New("solver backend failed")
)
