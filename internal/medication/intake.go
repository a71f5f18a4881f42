package medication

import (
	"time"

	"github.com/google/uuid"
)

// TimestampLayout formats takenAt in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DateLayout is the layout of the calendar date compared against takenAt.
const DateLayout = "2006-01-02"

// FormatTimestamp renders t the way takenAt is stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Today returns the calendar date of now in the same frame as FormatTimestamp.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// Confirm builds the record for a dose taken at now. It does not look at the
// existing log; confirming the same slot twice yields two records.
func Confirm(medicationID, scheduledTime string, now time.Time) IntakeRecord {
	return IntakeRecord{
		ID:            uuid.NewString(),
		MedicationID:  medicationID,
		TakenAt:       FormatTimestamp(now),
		Status:        StatusTaken,
		ScheduledTime: scheduledTime,
	}
}
