package medication

// AdherenceStats summarizes the intake log.
type AdherenceStats struct {
	TotalTaken int `json:"total_taken"`
	ActiveDays int `json:"active_days"`
	Skipped    int `json:"skipped"`
}

// Predicate selects the records that count toward TotalTaken and ActiveDays.
type Predicate func(IntakeRecord) bool

// CountsAll counts every record whatever its status.
func CountsAll(IntakeRecord) bool { return true }

// CountsTaken counts only records with status taken.
func CountsTaken(r IntakeRecord) bool { return r.Status == StatusTaken }

// Aggregate walks the log once. A nil predicate behaves like CountsAll.
func Aggregate(records []IntakeRecord, counts Predicate) AdherenceStats {
	if counts == nil {
		counts = CountsAll
	}

	var stats AdherenceStats
	days := make(map[string]struct{})
	for _, r := range records {
		if r.Status == StatusSkipped {
			stats.Skipped++
		}
		if !counts(r) {
			continue
		}
		stats.TotalTaken++
		days[DatePart(r.TakenAt)] = struct{}{}
	}
	stats.ActiveDays = len(days)
	return stats
}
