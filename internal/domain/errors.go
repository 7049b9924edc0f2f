package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrDuplicateEmail = fmt.Errorf("%w: existing user found with same email address", ErrConflict)
	ErrDuplicateID    = fmt.Errorf("%w: product id already taken", ErrConflict)

	ErrUnknownEmail  = fmt.Errorf("%w: Wrong Email ID", ErrUnauthorized)
	ErrWrongPassword = fmt.Errorf("%w: Wrong Password", ErrUnauthorized)
	ErrMissingToken  = fmt.Errorf("%w: missing session token", ErrUnauthorized)
	ErrInvalidToken  = fmt.Errorf("%w: invalid session token", ErrUnauthorized)
)
