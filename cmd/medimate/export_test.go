package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/medimate/internal/medication"
	"gopkg.in/yaml.v3"
)

func sampleState() medication.State {
	return medication.State{
		Medications: []medication.Medication{
			{ID: "m1", Name: "Aspirin", Frequency: medication.FrequencyDaily, Times: []string{"08:00"}, Color: "#3B82F6", Icon: "pill"},
		},
		Records: []medication.IntakeRecord{
			{ID: "r1", MedicationID: "m1", TakenAt: "2024-01-01T08:05:00.000Z", Status: medication.StatusTaken, ScheduledTime: "08:00"},
		},
	}
}

func TestWriteExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeExport(&buf, sampleState(), "json"); err != nil {
		t.Fatalf("writeExport returned error: %v", err)
	}

	var doc exportDocument
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(doc.Medications) != 1 || doc.IntakeRecords[0].MedicationID != "m1" {
		t.Fatalf("unexpected document %+v", doc)
	}
	if !strings.Contains(buf.String(), `"medicationId": "m1"`) {
		t.Fatalf("expected blob field names, got %s", buf.String())
	}
}

func TestWriteExportYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeExport(&buf, sampleState(), "YAML"); err != nil {
		t.Fatalf("writeExport returned error: %v", err)
	}

	var doc exportDocument
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}
	if doc.Medications[0].Name != "Aspirin" || doc.IntakeRecords[0].TakenAt != "2024-01-01T08:05:00.000Z" {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestWriteExportEmptyAndUnknown(t *testing.T) {
	var buf bytes.Buffer
	if err := writeExport(&buf, medication.State{}, ""); err != nil {
		t.Fatalf("writeExport returned error: %v", err)
	}
	if !strings.Contains(buf.String(), `"medications": []`) {
		t.Fatalf("expected empty arrays, got %s", buf.String())
	}

	if err := writeExport(&buf, medication.State{}, "csv"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "owner"); got != "owner" {
		t.Fatalf("unexpected value %q", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
