package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/moderation-backend/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidStatus      = errors.New("status must be one of: received, approved, rejected")
	ErrInvalidRole        = errors.New("role must be one of: user, representative")
	ErrHasDependents      = errors.New("still referenced by dependent records")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ParseStatus turns a client-supplied value into a Status.
func ParseStatus(s string) (models.Status, error) {
	status := models.Status(strings.TrimSpace(s))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return status, nil
}

// ParseUserRole turns a client-supplied value into a UserRole.
func ParseUserRole(s string) (models.UserRole, error) {
	role := models.UserRole(strings.TrimSpace(s))
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return role, nil
}

func notFound(entity string, id uint) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, entity, id)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
