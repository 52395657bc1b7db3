package extract

import "errors"

// Sentinel errors for the failure modes a run can hit before, during, and
// after recognition. Call sites wrap them with detail; match with errors.Is.
var (
	// ErrInvalidInput means the input folder is missing, unreadable, or not
	// a directory.
	ErrInvalidInput = errors.New("invalid input folder")

	// ErrNoImagesFound means the folder holds no PNG files after filtering.
	ErrNoImagesFound = errors.New("no PNG files found")

	// ErrOutputWrite means the combined output file could not be written.
	ErrOutputWrite = errors.New("cannot write output file")
)
