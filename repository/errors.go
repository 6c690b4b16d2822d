package repository

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidGroup  = errors.New("invalid band group")
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateName = errors.New("name already in use")
	ErrValidation    = errors.New("validation failed")
)

// InvalidGroupError is returned when a grouping change would break the one-level alias
// structure. Nothing has been written when it is returned.
type InvalidGroupError struct {
	Reason string
}

func (e *InvalidGroupError) Error() string {
	return "invalid band group: " + e.Reason
}

func (e *InvalidGroupError) Is(target error) bool {
	return target == ErrInvalidGroup
}

// NotFoundError names the entity that could not be found, by id or by Name when the
// lookup was by name.
type NotFoundError struct {
	Entity string
	ID     uint
	Name   string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s '%s' not found", e.Entity, e.Name)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateNameError is returned when a rename collides with another band's name.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a band named '%s' already exists", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// ValidationError reports bad caller input such as an empty lineup.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidGroup(format string, args ...interface{}) error {
	return &InvalidGroupError{Reason: fmt.Sprintf(format, args...)}
}
