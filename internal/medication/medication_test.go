package medication

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimeOfDay(t *testing.T) {
	valid := map[string]string{
		"08:00":  "08:00",
		"8:30":   "08:30",
		" 23:59": "23:59",
		"00:00":  "00:00",
	}
	for input, want := range valid {
		got, err := NormalizeTimeOfDay(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	for _, input := range []string{"", "24:00", "12:60", "0800", "8am", "12:3", "ab:cd", "123:00"} {
		_, err := NormalizeTimeOfDay(input)
		assert.True(t, errors.Is(err, ErrInvalidTimeOfDay), "expected invalid for %q", input)
	}
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency("")
	require.NoError(t, err)
	assert.Equal(t, FrequencyDaily, f)

	f, err = ParseFrequency("as_needed")
	require.NoError(t, err)
	assert.Equal(t, FrequencyAsNeeded, f)

	_, err = ParseFrequency("weekly")
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestConfirm(t *testing.T) {
	now := time.Date(2024, 1, 1, 15, 5, 0, 123000000, time.FixedZone("ICT", 7*3600))

	first := Confirm("m1", "08:00", now)
	second := Confirm("m1", "08:00", now)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "m1", first.MedicationID)
	assert.Equal(t, "08:00", first.ScheduledTime)
	assert.Equal(t, StatusTaken, first.Status)
	assert.Equal(t, "2024-01-01T08:05:00.123Z", first.TakenAt)
	assert.Equal(t, "2024-01-01", Today(now))
}

func TestAggregate(t *testing.T) {
	assert.Equal(t, AdherenceStats{}, Aggregate(nil, CountsTaken))

	sameDay := []IntakeRecord{
		{ID: "1", TakenAt: "2024-01-01T08:00:00Z", Status: StatusTaken},
		{ID: "2", TakenAt: "2024-01-01T12:00:00Z", Status: StatusTaken},
		{ID: "3", TakenAt: "2024-01-01T20:00:00Z", Status: StatusTaken},
	}
	assert.Equal(t, AdherenceStats{TotalTaken: 3, ActiveDays: 1}, Aggregate(sameDay, CountsTaken))

	mixed := append(sameDay, IntakeRecord{ID: "4", TakenAt: "2024-01-02T08:00:00Z", Status: StatusSkipped})
	assert.Equal(t, AdherenceStats{TotalTaken: 3, ActiveDays: 1, Skipped: 1}, Aggregate(mixed, CountsTaken))
	assert.Equal(t, AdherenceStats{TotalTaken: 4, ActiveDays: 2, Skipped: 1}, Aggregate(mixed, CountsAll))
	assert.Equal(t, Aggregate(mixed, CountsAll), Aggregate(mixed, nil))
}

func TestStateTransitionsCopyOnWrite(t *testing.T) {
	base := State{
		Medications: make([]Medication, 1, 4),
		Records:     make([]IntakeRecord, 0, 4),
	}
	base.Medications[0] = Medication{ID: "m1"}

	withMed := base.AddMedication(Medication{ID: "m2"})
	other := base.AddMedication(Medication{ID: "m3"})
	require.Len(t, base.Medications, 1)
	assert.Equal(t, "m2", withMed.Medications[1].ID)
	assert.Equal(t, "m3", other.Medications[1].ID)

	withRecord := withMed.RecordIntake(IntakeRecord{ID: "r1", MedicationID: "m2"})
	assert.Empty(t, withMed.Records)
	require.Len(t, withRecord.Records, 1)
	assert.Len(t, withRecord.Medications, 2)

	med, ok := withRecord.FindMedication("m2")
	assert.True(t, ok)
	assert.Equal(t, "m2", med.ID)
	_, ok = withRecord.FindMedication("missing")
	assert.False(t, ok)
}

func TestStateHistory(t *testing.T) {
	state := State{Medications: []Medication{{ID: "m1", Name: "Paracetamol"}}}
	for _, id := range []string{"r1", "r2", "r3"} {
		state = state.RecordIntake(IntakeRecord{ID: id, MedicationID: "m1"})
	}
	state = state.RecordIntake(IntakeRecord{ID: "orphan", MedicationID: "gone"})

	entries := state.History(10)
	require.Len(t, entries, 3)
	assert.Equal(t, "r3", entries[0].Record.ID)
	assert.Equal(t, "r1", entries[2].Record.ID)
	assert.Equal(t, "Paracetamol", entries[0].Medication.Name)

	entries = state.History(2)
	require.Len(t, entries, 1)
	assert.Equal(t, "r3", entries[0].Record.ID)

	assert.Empty(t, state.History(0))
}
