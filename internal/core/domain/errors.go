package domain

import "errors"

// ErrInvalidInput is returned when a caller passes input an operation cannot act on.
var ErrInvalidInput = errors.New("invalid input")
