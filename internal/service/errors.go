package service

import (
	"errors"
	"f2fit/gym-manager/internal/repository"
	"fmt"
)

// ErrInvalidInput is wrapped by every input validation failure.
var ErrInvalidInput = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// notFoundAs translates repository.ErrNotFound into a service sentinel.
func notFoundAs(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
