package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidURL    = errors.New("invalid url")
	ErrInvalidName   = errors.New("invalid journey name")
)
