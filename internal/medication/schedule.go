package medication

import (
	"cmp"
	"slices"
	"strings"
)

// ScheduledInstance is one dose slot of one medication for a given day.
type ScheduledInstance struct {
	Medication Medication
	Time       string
	Taken      bool
}

// DatePart returns the calendar date of an ISO-8601 timestamp, i.e. everything
// before the first "T". No timezone normalization is applied.
func DatePart(timestamp string) string {
	date, _, _ := strings.Cut(timestamp, "T")
	return date
}

// Project expands every medication time into a ScheduledInstance for today and
// marks the slots that have a matching intake record dated today. The result is
// stably sorted by the HH:mm string, so equal times keep medication order.
func Project(medications []Medication, records []IntakeRecord, today string) []ScheduledInstance {
	type slot struct {
		medicationID string
		time         string
	}

	taken := make(map[slot]struct{})
	for _, r := range records {
		if r.ScheduledTime == "" || DatePart(r.TakenAt) != today {
			continue
		}
		taken[slot{medicationID: r.MedicationID, time: r.ScheduledTime}] = struct{}{}
	}

	items := make([]ScheduledInstance, 0, countSlots(medications))
	for _, med := range medications {
		for _, t := range med.Times {
			_, done := taken[slot{medicationID: med.ID, time: t}]
			items = append(items, ScheduledInstance{Medication: med, Time: t, Taken: done})
		}
	}

	slices.SortStableFunc(items, func(a, b ScheduledInstance) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return items
}

func countSlots(medications []Medication) int {
	n := 0
	for _, med := range medications {
		n += len(med.Times)
	}
	return n
}
