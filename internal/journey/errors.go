package journey

import (
	"errors"

	"journey/internal/catalog"
)

var (
	// ErrOutOfRange means a caller passed a chapter index the navigation
	// surface should never offer.
	ErrOutOfRange = catalog.ErrOutOfRange
	// ErrInvalidTransition is returned for events the current screen does
	// not accept. Callers treat it as a no-op.
	ErrInvalidTransition = errors.New("event not accepted in current screen")
	// ErrAnswerMismatch is the recoverable wrong-answer case. Retries are
	// unlimited.
	ErrAnswerMismatch = errors.New("answer does not match passphrase")
	// ErrChapterLocked rejects navigation to a chapter not yet unlocked.
	ErrChapterLocked = errors.New("chapter is locked")
	// ErrPersistenceUnavailable wraps storage failures. The controller
	// never returns it from an event; it only shows up in logs.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
)
