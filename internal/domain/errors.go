package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog is returned when no questions exist for the requested selection.
	ErrEmptyCatalog = errors.New("no questions available for this selection")
	// ErrSessionNotFound is returned when a user has no live quiz session.
	ErrSessionNotFound = errors.New("no live quiz session for this user")
	// ErrSessionExhausted is returned when a session has no questions left to present.
	ErrSessionExhausted = errors.New("quiz session has no questions left")
	// ErrStaleAnswer is returned when a submission targets a question other than
	// the current one (duplicate or out-of-order delivery).
	ErrStaleAnswer = errors.New("answer does not match the current question")
	// ErrInvalidChoice is returned when a choice does not belong to the answered question.
	ErrInvalidChoice = errors.New("choice does not belong to this question")
	// ErrTopicNotFound indicates an unknown topic name or id.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrQuestionNotFound indicates the question content could not be loaded.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUserNotFound indicates no profile exists for the external identity.
	ErrUserNotFound = errors.New("user not found")
	// ErrAttemptNotFound indicates a write targeted an unknown attempt.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrGroupNotFound indicates the chat has not been bound as a group.
	ErrGroupNotFound = errors.New("group not found")
)

// StorageError marks a durable read/write failure. The engine performs no
// retries; the error is propagated to the transport with the failed operation
// attached.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err as a storage failure of the named operation.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
