package domain

import (
	"fmt"
	"time"
)

// MonthCount is the number of generation units per project, one per
// calendar month.
const MonthCount = 12

// MonthStatus enumerates the per-month generation states.
type MonthStatus string

const (
	MonthStatusPending    MonthStatus = "pending"
	MonthStatusProcessing MonthStatus = "processing"
	MonthStatusCompleted  MonthStatus = "completed"
	MonthStatusFailed     MonthStatus = "failed"
)

// MonthUnit is one independently retryable generation unit. ImageData is set
// only when completed; ErrorMessage only when failed. Tier records which
// prompt tier produced the stored image.
type MonthUnit struct {
	MonthNumber  int
	Prompt       string
	Status       MonthStatus
	ImageData    []byte
	ErrorMessage string
	Tier         int
	GeneratedAt  *time.Time
}

// MonthUpdate carries a status transition for a single month unit.
// Stores apply it atomically: a completed update stores the image and clears
// any prior error, a failed update stores the error, and a processing update
// preserves the previous attempt's image and error until a terminal result
// overwrites them.
type MonthUpdate struct {
	Status       MonthStatus
	ImageData    []byte
	ErrorMessage string
	Tier         int
}

// Validate enforces the payload requirements of each target status.
func (u MonthUpdate) Validate() error {
	switch u.Status {
	case MonthStatusCompleted:
		if len(u.ImageData) == 0 {
			return fmt.Errorf("%w: completed month requires image data", ErrInput)
		}
	case MonthStatusFailed:
		if u.ErrorMessage == "" {
			return fmt.Errorf("%w: failed month requires an error message", ErrInput)
		}
	case MonthStatusPending, MonthStatusProcessing:
	default:
		return fmt.Errorf("%w: unknown month status %q", ErrInput, u.Status)
	}
	return nil
}

// ValidMonth reports whether n is a calendar month number.
func ValidMonth(n int) bool {
	return n >= 1 && n <= MonthCount
}
