// Package repository holds the data access layer of the catalog. Queries are
// plain SQL over the shared database handle; sentinel errors let handlers map
// failures to HTTP statuses with errors.Is.
package repository

import "errors"

// ErrNotFound is returned when the addressed movie, list or membership row
// does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a list
// they do not own. Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write would duplicate an existing row, such
// as adding a movie to a list twice.
var ErrConflict = errors.New("conflict")

// ErrInvalidInput is returned for writes that fail validation (empty title,
// unknown content type).
var ErrInvalidInput = errors.New("invalid input")
