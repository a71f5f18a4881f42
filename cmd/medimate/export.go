package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/medimate/internal/db"
	"github.com/medimate/internal/medication"
	"github.com/medimate/internal/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print medications and intake records",
	Long: `Print both collections to stdout as JSON or YAML.

The JSON field names match the stored blobs, so the output can be
inspected or archived as-is.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Output format: json or yaml")
}

type exportDocument struct {
	Medications   []medication.Medication   `json:"medications" yaml:"medications"`
	IntakeRecords []medication.IntakeRecord `json:"intakeRecords" yaml:"intakeRecords"`
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := db.Init(cfg.DatabasePath); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	state, err := storage.NewSnapshotStore(storage.NewGormKV(db.DB)).Load(cmd.Context())
	if err != nil {
		return err
	}
	return writeExport(cmd.OutOrStdout(), state, exportFormat)
}

func writeExport(w io.Writer, state medication.State, format string) error {
	doc := exportDocument{
		Medications:   state.Medications,
		IntakeRecords: state.Records,
	}
	if doc.Medications == nil {
		doc.Medications = []medication.Medication{}
	}
	if doc.IntakeRecords == nil {
		doc.IntakeRecords = []medication.IntakeRecord{}
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
