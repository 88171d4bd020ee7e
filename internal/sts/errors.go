package sts

import "errors"

// Sentinel errors for conditions that must abort a dataset run.
var (
	// ErrAntagonicArea indicates an area has no configured antagonic
	// counterpart, or the counterpart is absent from the corpus.
	ErrAntagonicArea = errors.New("sts: antagonic area not available")

	// ErrUnknownVariant indicates the requested dataset variant does not exist.
	ErrUnknownVariant = errors.New("sts: unknown dataset variant")

	// ErrUnknownSource indicates a variant references an unconfigured source.
	ErrUnknownSource = errors.New("sts: unknown corpus source")

	// ErrInvalidSplit indicates a split fraction outside (0, 1).
	ErrInvalidSplit = errors.New("sts: invalid split fraction")

	// ErrEmptyDataset indicates the rules produced no samples at all.
	ErrEmptyDataset = errors.New("sts: no samples generated")
)
