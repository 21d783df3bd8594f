package domain

import "errors"

// Not-found errors: referenced entity absent, or excluded by an
// active-only lookup
var (
	ErrBookNotFound   = errors.New("book not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrBorrowNotFound = errors.New("borrow record not found")
)

// Bad-request errors: business rule violations
var (
	ErrBookUnavailable  = errors.New("book is not available for borrowing")
	ErrAlreadyBorrowed  = errors.New("user already has this book borrowed")
	ErrAlreadyReturned  = errors.New("book is already returned")
	ErrNotDeleted       = errors.New("record is not deleted")
	ErrCopiesExceeded   = errors.New("available copies cannot exceed total copies")
	ErrInvalidInput     = errors.New("invalid input")
	ErrOverCapacity     = errors.New("release would exceed total copies")
)

// Conflict errors: unique key collisions on create/update/restore
var (
	ErrDuplicateISBN = errors.New("book with this ISBN already exists")
	ErrUsernameTaken = errors.New("username is already taken")
)

// ErrTransient marks persistence-layer failures (lock timeouts, dropped
// connections) that the caller may retry. Never returned for rule violations.
var ErrTransient = errors.New("transient storage failure")

// IsNotFound reports whether err is a not-found failure
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBookNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrBorrowNotFound)
}

// IsBadRequest reports whether err is a business rule violation
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBookUnavailable) ||
		errors.Is(err, ErrAlreadyBorrowed) ||
		errors.Is(err, ErrAlreadyReturned) ||
		errors.Is(err, ErrNotDeleted) ||
		errors.Is(err, ErrCopiesExceeded) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrOverCapacity)
}

// IsConflict reports whether err is a unique key collision
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateISBN) || errors.Is(err, ErrUsernameTaken)
}

// IsTransient reports whether err is a retryable storage failure
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
