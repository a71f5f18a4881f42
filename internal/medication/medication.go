// Package medication holds the medication and intake log model together with
// the pure functions that derive today's schedule and adherence statistics.
package medication

import (
	"errors"
	"fmt"
	"strings"
)

// Frequency tags how a medication is meant to be taken. Only the daily list of
// times is consulted when projecting a schedule.
type Frequency string

const (
	FrequencyDaily    Frequency = "DAILY"
	FrequencyAsNeeded Frequency = "AS_NEEDED"
	FrequencyInterval Frequency = "INTERVAL"
)

// IntakeStatus records whether a dose was taken or skipped.
type IntakeStatus string

const (
	StatusTaken   IntakeStatus = "taken"
	StatusSkipped IntakeStatus = "skipped"
)

const (
	// DefaultIcon is assigned to new medications.
	DefaultIcon = "pill"
	// DefaultTime is used when a medication is created without any time.
	DefaultTime = "08:00"
)

// Palette lists the colors offered for new medications, first entry is the default.
var Palette = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#EC4899"}

var (
	// ErrInvalidTimeOfDay is returned for a time that is not HH:mm in 24-hour form.
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	// ErrInvalidFrequency is returned for an unknown frequency tag.
	ErrInvalidFrequency = errors.New("invalid frequency")
)

// Medication is a user-registered drug with its daily dosing times.
type Medication struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Dosage       string    `json:"dosage" yaml:"dosage"`
	Instructions string    `json:"instructions" yaml:"instructions"`
	Frequency    Frequency `json:"frequency" yaml:"frequency"`
	Times        []string  `json:"times" yaml:"times"`
	Color        string    `json:"color" yaml:"color"`
	Icon         string    `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// IntakeRecord is one append-only log entry for a dose.
type IntakeRecord struct {
	ID            string       `json:"id" yaml:"id"`
	MedicationID  string       `json:"medicationId" yaml:"medicationId"`
	TakenAt       string       `json:"takenAt" yaml:"takenAt"`
	Status        IntakeStatus `json:"status" yaml:"status"`
	ScheduledTime string       `json:"scheduledTime,omitempty" yaml:"scheduledTime,omitempty"`
}

// ParseFrequency accepts the frequency tags case-insensitively. An empty value
// means daily.
func ParseFrequency(raw string) (Frequency, error) {
	switch Frequency(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", FrequencyDaily:
		return FrequencyDaily, nil
	case FrequencyAsNeeded:
		return FrequencyAsNeeded, nil
	case FrequencyInterval:
		return FrequencyInterval, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, raw)
}

// NormalizeTimeOfDay returns the zero-padded HH:mm form of raw. A single digit
// hour such as "8:30" is padded, anything else must already be HH:mm.
func NormalizeTimeOfDay(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if len(value) == 4 && value[1] == ':' {
		value = "0" + value
	}
	if len(value) != 5 || value[2] != ':' {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
		}
	}
	hour := int(value[0]-'0')*10 + int(value[1]-'0')
	minute := int(value[3]-'0')*10 + int(value[4]-'0')
	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, raw)
	}
	return value, nil
}

// NormalizeTimes normalizes every entry, keeping order and duplicates.
func NormalizeTimes(times []string) ([]string, error) {
	out := make([]string, 0, len(times))
	for _, raw := range times {
		value, err := NormalizeTimeOfDay(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}
