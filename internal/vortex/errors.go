package vortex

import "errors"

// Sentinel errors returned (wrapped) by the resampler, projector and corrector.
var (
	// ErrDimension reports a field that lacks a required dimension or whose
	// coordinate values cannot address it.
	ErrDimension = errors.New("missing or invalid dimension")

	// ErrShapeMismatch reports inputs whose dimensions cannot be aligned.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUnsupportedSource reports a Source that is not one of the
	// single, collection or named variants.
	ErrUnsupportedSource = errors.New("unsupported source type")

	// ErrTimeMismatch reports a center track whose length does not match
	// the time dimension of a field.
	ErrTimeMismatch = errors.New("track and field time steps differ")

	ErrInvalidGrid     = errors.New("invalid cylindrical grid")
	ErrInvalidTrack    = errors.New("invalid center track")
	ErrMissingVelocity = errors.New("center velocity missing")
	ErrTrackOrder      = errors.New("track times must be strictly increasing")
)
