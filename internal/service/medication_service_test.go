package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medimate/internal/db"
	"github.com/medimate/internal/medication"
	"github.com/medimate/internal/storage"
)

func newTestMedicationService(t *testing.T) (*MedicationService, *storage.MemoryKV) {
	t.Helper()
	kv := storage.NewMemoryKV()
	svc := NewMedicationService(storage.NewSnapshotStore(kv))
	svc.SetClock(func() time.Time {
		return time.Date(2024, 1, 1, 8, 5, 0, 0, time.UTC)
	})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return svc, kv
}

func TestMedicationServiceCreateDefaults(t *testing.T) {
	svc, kv := newTestMedicationService(t)
	ctx := context.Background()

	med, err := svc.Create(ctx, MedicationInput{Name: "  Aspirin ", Dosage: "1 tablet"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if med.ID == "" {
		t.Fatal("expected generated id")
	}
	if med.Frequency != medication.FrequencyDaily {
		t.Fatalf("expected DAILY, got %q", med.Frequency)
	}
	if len(med.Times) != 1 || med.Times[0] != "08:00" {
		t.Fatalf("expected default time, got %v", med.Times)
	}
	if med.Color != medication.Palette[0] || med.Icon != medication.DefaultIcon {
		t.Fatalf("unexpected defaults color=%q icon=%q", med.Color, med.Icon)
	}

	raw, ok, _ := kv.Get(ctx, db.BlobKeyMedications)
	if !ok || raw == "" {
		t.Fatal("expected medications blob to be written")
	}

	got, err := svc.Get(med.ID)
	if err != nil || got.Name != "Aspirin" {
		t.Fatalf("Get returned %+v, %v", got, err)
	}
}

func TestMedicationServiceCreateValidation(t *testing.T) {
	svc, _ := newTestMedicationService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, MedicationInput{Name: " "}); !errors.Is(err, ErrMedicationNameRequired) {
		t.Fatalf("expected ErrMedicationNameRequired, got %v", err)
	}
	if _, err := svc.Create(ctx, MedicationInput{Name: "A", Times: []string{"25:00"}}); !errors.Is(err, ErrInvalidTimeOfDay) {
		t.Fatalf("expected ErrInvalidTimeOfDay, got %v", err)
	}
	if _, err := svc.Create(ctx, MedicationInput{Name: "A", Frequency: "WEEKLY"}); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}

	med, err := svc.Create(ctx, MedicationInput{Name: "Vitamin", Frequency: "AS_NEEDED"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(med.Times) != 0 {
		t.Fatalf("as-needed medication should not get default times, got %v", med.Times)
	}
	if len(svc.List()) != 1 {
		t.Fatalf("expected one medication, got %d", len(svc.List()))
	}
}

func TestMedicationServiceScheduleAndConfirm(t *testing.T) {
	svc, _ := newTestMedicationService(t)
	ctx := context.Background()

	med, err := svc.Create(ctx, MedicationInput{Name: "A", Times: []string{"20:00", "8:00"}})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	view := svc.Today("")
	if view.Date != "2024-01-01" || view.MedicationCount != 1 {
		t.Fatalf("unexpected view header %+v", view)
	}
	if len(view.Items) != 2 || view.Items[0].Time != "08:00" || view.Items[0].Taken {
		t.Fatalf("unexpected schedule %+v", view.Items)
	}

	record, err := svc.ConfirmDose(ctx, med.ID, "08:00")
	if err != nil {
		t.Fatalf("ConfirmDose returned error: %v", err)
	}
	if record.TakenAt != "2024-01-01T08:05:00.000Z" || record.Status != medication.StatusTaken {
		t.Fatalf("unexpected record %+v", record)
	}

	view = svc.Today("")
	if !view.Items[0].Taken || view.Items[1].Taken {
		t.Fatalf("expected only 08:00 to be taken, got %+v", view.Items)
	}

	if other := svc.Today("2024-01-02"); other.Items[0].Taken {
		t.Fatal("confirmation must not carry over to another date")
	}

	if _, err := svc.ConfirmDose(ctx, med.ID, "08:00"); err != nil {
		t.Fatalf("second ConfirmDose returned error: %v", err)
	}
	stats := svc.Stats()
	if stats.TotalTaken != 2 || stats.ActiveDays != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if !svc.Today("").Items[0].Taken {
		t.Fatal("duplicate confirmation should keep the slot taken")
	}
}

func TestMedicationServiceConfirmErrors(t *testing.T) {
	svc, _ := newTestMedicationService(t)
	ctx := context.Background()

	if _, err := svc.ConfirmDose(ctx, "missing", "08:00"); !errors.Is(err, ErrMedicationNotFound) {
		t.Fatalf("expected ErrMedicationNotFound, got %v", err)
	}

	med, err := svc.Create(ctx, MedicationInput{Name: "A"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := svc.ConfirmDose(ctx, med.ID, "8am"); !errors.Is(err, ErrInvalidTimeOfDay) {
		t.Fatalf("expected ErrInvalidTimeOfDay, got %v", err)
	}

	record, err := svc.ConfirmDose(ctx, med.ID, "")
	if err != nil {
		t.Fatalf("ConfirmDose without slot returned error: %v", err)
	}
	if record.ScheduledTime != "" {
		t.Fatalf("expected empty scheduled time, got %q", record.ScheduledTime)
	}
	if svc.Today("").Items[0].Taken {
		t.Fatal("a record without scheduled time must not mark any slot")
	}
}

func TestMedicationServiceFailedPersistKeepsState(t *testing.T) {
	svc, kv := newTestMedicationService(t)
	ctx := context.Background()

	med, err := svc.Create(ctx, MedicationInput{Name: "A"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	before := svc.Snapshot()

	kv.SetErr = errors.New("disk full")

	if _, err := svc.ConfirmDose(ctx, med.ID, "08:00"); err == nil {
		t.Fatal("expected persist error")
	}
	if _, err := svc.Create(ctx, MedicationInput{Name: "B"}); err == nil {
		t.Fatal("expected persist error")
	}

	after := svc.Snapshot()
	if len(after.Records) != len(before.Records) || len(after.Medications) != len(before.Medications) {
		t.Fatalf("state changed after failed persist: %+v", after)
	}
	if svc.Stats().TotalTaken != 0 {
		t.Fatalf("unexpected stats %+v", svc.Stats())
	}
}

func TestMedicationServiceReloadAndHistory(t *testing.T) {
	svc, kv := newTestMedicationService(t)
	ctx := context.Background()

	a, _ := svc.Create(ctx, MedicationInput{Name: "A"})
	b, _ := svc.Create(ctx, MedicationInput{Name: "B", Times: []string{"21:00"}})
	for i := 0; i < 6; i++ {
		if _, err := svc.ConfirmDose(ctx, a.ID, "08:00"); err != nil {
			t.Fatalf("ConfirmDose returned error: %v", err)
		}
		if _, err := svc.ConfirmDose(ctx, b.ID, "21:00"); err != nil {
			t.Fatalf("ConfirmDose returned error: %v", err)
		}
	}

	reloaded := NewMedicationService(storage.NewSnapshotStore(kv))
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(reloaded.List()) != 2 {
		t.Fatalf("expected 2 medications after reload, got %d", len(reloaded.List()))
	}

	history := reloaded.History(0)
	if len(history) != defaultHistoryLimit {
		t.Fatalf("expected %d entries, got %d", defaultHistoryLimit, len(history))
	}
	if history[0].Medication.ID != b.ID || history[1].Medication.ID != a.ID {
		t.Fatalf("expected newest first, got %s then %s", history[0].Medication.Name, history[1].Medication.Name)
	}
	if got := reloaded.History(3); len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
}

func TestMedicationServiceCountPredicate(t *testing.T) {
	svc, kv := newTestMedicationService(t)
	ctx := context.Background()

	blob := `[{"id":"r1","medicationId":"m","takenAt":"2024-01-01T08:00:00.000Z","status":"taken"},` +
		`{"id":"r2","medicationId":"m","takenAt":"2024-01-02T08:00:00.000Z","status":"skipped"}]`
	if err := kv.Set(ctx, db.BlobKeyIntakeRecords, blob); err != nil {
		t.Fatalf("seed records: %v", err)
	}
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	stats := svc.Stats()
	if stats.TotalTaken != 1 || stats.ActiveDays != 1 || stats.Skipped != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	svc.SetCountPredicate(medication.CountsAll)
	stats = svc.Stats()
	if stats.TotalTaken != 2 || stats.ActiveDays != 2 {
		t.Fatalf("unexpected stats with CountsAll %+v", stats)
	}

	if history := svc.History(10); len(history) != 0 {
		t.Fatalf("orphaned records should be skipped, got %d", len(history))
	}
}
