package errors

import "errors"

var (
	ErrNotFound = errors.New("doctor not found")
)
