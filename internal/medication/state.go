package medication

// State is the whole application data set. Transitions return a new State and
// never write into the slices of the receiver.
type State struct {
	Medications []Medication
	Records     []IntakeRecord
}

// HistoryEntry pairs a record with the medication it refers to.
type HistoryEntry struct {
	Record     IntakeRecord
	Medication Medication
}

// AddMedication returns a copy of s with m appended.
func (s State) AddMedication(m Medication) State {
	meds := make([]Medication, len(s.Medications), len(s.Medications)+1)
	copy(meds, s.Medications)
	return State{Medications: append(meds, m), Records: s.Records}
}

// RecordIntake returns a copy of s with r appended to the log.
func (s State) RecordIntake(r IntakeRecord) State {
	records := make([]IntakeRecord, len(s.Records), len(s.Records)+1)
	copy(records, s.Records)
	return State{Medications: s.Medications, Records: append(records, r)}
}

// FindMedication looks a medication up by id.
func (s State) FindMedication(id string) (Medication, bool) {
	for _, m := range s.Medications {
		if m.ID == id {
			return m, true
		}
	}
	return Medication{}, false
}

// History looks at the limit most recent records, newest first, and drops the
// ones whose medication is gone. Dropped records still occupy the window.
func (s State) History(limit int) []HistoryEntry {
	if limit <= 0 {
		return nil
	}

	byID := make(map[string]Medication, len(s.Medications))
	for _, m := range s.Medications {
		byID[m.ID] = m
	}

	window := s.Records
	if len(window) > limit {
		window = window[len(window)-limit:]
	}

	entries := make([]HistoryEntry, 0, len(window))
	for i := len(window) - 1; i >= 0; i-- {
		med, ok := byID[window[i].MedicationID]
		if !ok {
			continue
		}
		entries = append(entries, HistoryEntry{Record: window[i], Medication: med})
	}
	return entries
}
