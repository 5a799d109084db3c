package logbook

import "errors"

// ErrInvalidState is returned when a payload is not an object and cannot become a ledger.
var ErrInvalidState = errors.New("invalid ledger state")

// ErrInvalidBackup indicates a backup file that is not parsable JSON.
var ErrInvalidBackup = errors.New("invalid backup file")

// ErrEmptyPosition is returned when an entry is added without a complete position.
var ErrEmptyPosition = errors.New("enter a position (degrees + minutes)")

// ErrInvalidFuel is returned when a total fuel reading is neither blank nor numeric.
var ErrInvalidFuel = errors.New("total fuel must be a number (or blank)")

// ErrEmptyNote is returned when a note has no text.
var ErrEmptyNote = errors.New("note text is required")

// ErrInvalidCoords is returned when the scratch position does not convert to decimal degrees.
var ErrInvalidCoords = errors.New("enter valid degrees & minutes")

// ErrUnknownMovement is returned for a movement kind outside the known set.
var ErrUnknownMovement = errors.New("unknown movement")

// ErrEntryNotFound is returned when no entry matches the key.
var ErrEntryNotFound = errors.New("entry not found")

// ErrDayNotFound is returned when the targeted archived day does not exist.
var ErrDayNotFound = errors.New("archived day not found")

// ErrCancelled is returned when the operator declines a confirmation.
var ErrCancelled = errors.New("cancelled")

// IsValidation reports whether err rejects operator input rather than signalling a failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyPosition) ||
		errors.Is(err, ErrInvalidFuel) ||
		errors.Is(err, ErrEmptyNote) ||
		errors.Is(err, ErrInvalidCoords) ||
		errors.Is(err, ErrUnknownMovement)
}
