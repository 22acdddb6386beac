package app

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput rejects a submission without text, URL or image
	ErrEmptyInput = errors.New("please enter text/URL or upload an image")
	// ErrImageTooLarge rejects images over the upload bound
	ErrImageTooLarge = errors.New("image file is too large")
	// ErrNotAnImage rejects uploads whose content is not an image
	ErrNotAnImage = errors.New("file is not a supported image")
	// ErrSubmissionInFlight rejects a submission while another one is running
	ErrSubmissionInFlight = errors.New("a fact-check is already in progress")
)

// ValidationError is an input problem detected before anything is sent
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
