package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/medimate/internal/db"
	"github.com/medimate/internal/medication"
	"golang.org/x/sync/errgroup"
)

// SnapshotStore reads and writes the two collections as whole JSON arrays.
type SnapshotStore struct {
	kv KV
}

// NewSnapshotStore builds a SnapshotStore over kv.
func NewSnapshotStore(kv KV) *SnapshotStore {
	return &SnapshotStore{kv: kv}
}

// Load reads both blobs concurrently. Missing keys load as empty collections.
func (s *SnapshotStore) Load(ctx context.Context) (medication.State, error) {
	var state medication.State

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.read(ctx, db.BlobKeyMedications, &state.Medications)
	})
	g.Go(func() error {
		return s.read(ctx, db.BlobKeyIntakeRecords, &state.Records)
	})
	if err := g.Wait(); err != nil {
		return medication.State{}, err
	}
	return state, nil
}

// SaveMedications replaces the medications blob.
func (s *SnapshotStore) SaveMedications(ctx context.Context, meds []medication.Medication) error {
	if meds == nil {
		meds = []medication.Medication{}
	}
	return s.write(ctx, db.BlobKeyMedications, meds)
}

// SaveRecords replaces the intake records blob.
func (s *SnapshotStore) SaveRecords(ctx context.Context, records []medication.IntakeRecord) error {
	if records == nil {
		records = []medication.IntakeRecord{}
	}
	return s.write(ctx, db.BlobKeyIntakeRecords, records)
}

func (s *SnapshotStore) read(ctx context.Context, key string, dst any) error {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if !ok || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return nil
}

func (s *SnapshotStore) write(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
