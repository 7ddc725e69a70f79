package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrDuplicateRole      = errors.New("role already exists")
	ErrInvalidCredentials = errors.New("bad username or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrServiceUnavailable = errors.New("service unavailable")
)

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
}

func unauthorized(err error) error {
	return fmt.Errorf("%w: %v", ErrUnauthorized, err)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
