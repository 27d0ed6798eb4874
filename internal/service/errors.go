package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/littbk/rpg-battle/internal/engine"
	"github.com/littbk/rpg-battle/internal/storage"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	// ErrLinkContention is returned when a record's link kept changing
	// while an update waited for its locks.
	ErrLinkContention = errors.New("link changed concurrently")
)

// storageErr maps repository sentinels onto the service taxonomy.
func storageErr(err error, name string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("combatant %q: %w", name, ErrNotFound)
	case errors.Is(err, storage.ErrDuplicateName):
		return fmt.Errorf("combatant %q: %w", name, ErrAlreadyExists)
	case errors.Is(err, storage.ErrInvalidKey):
		return fmt.Errorf("combatant %q: %w", name, ErrInvalidInput)
	}
	return err
}

func rejectedErr(rejected []engine.FieldError) error {
	if len(rejected) == 0 {
		return fmt.Errorf("%w: no fields to apply", ErrInvalidInput)
	}
	parts := make([]string, 0, len(rejected))
	for _, r := range rejected {
		parts = append(parts, r.Error())
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(parts, "; "))
}
