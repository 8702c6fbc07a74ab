package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/workguide/guide-server/internal/errors"
	"github.com/workguide/guide-server/internal/store"
)

// translate maps a store error to a domain error with the given message.
// Errors that are already domain errors, and context errors, pass through.
func translate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}

	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, store.ErrSlugTaken), errors.Is(err, store.ErrConflict):
		return domainerrors.Wrap(err, domainerrors.CodeConflict, msg)
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.Wrap(err, domainerrors.CodeNotFound, msg)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.Wrap(err, domainerrors.CodeAlreadyExists, msg)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Wrap(err, domainerrors.CodeValidation, msg)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}
