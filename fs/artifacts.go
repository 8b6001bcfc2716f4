// Package fs provides filesystem-based artifact storage for pipeline runs.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/autofinder"
)

// Artifact file names within the output directory.
const (
	DealersFile   = "dealers.json"
	PagesFile     = "pages.json"
	RecordsFile   = "records.json"
	SnapshotFile  = "inventory.json"
	tempSuffix    = ".tmp"
	dirPermission = 0755
)

// Ensure ArtifactStore implements autofinder.ArtifactStore at compile time.
var _ autofinder.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore persists stage artifacts as JSON files in a directory.
// Each file is written to a temporary path first and moved into place, so
// a crash mid-write never leaves a truncated artifact behind.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates a store writing into dir. The directory is
// created on the first save.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Dir returns the output directory.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

func (s *ArtifactStore) SaveDealers(ctx context.Context, dealers []autofinder.DealerCandidate) error {
	if dealers == nil {
		dealers = []autofinder.DealerCandidate{}
	}
	return s.writeJSON(ctx, DealersFile, dealers)
}

func (s *ArtifactStore) SavePages(ctx context.Context, pages []autofinder.InventoryPageCandidate) error {
	if pages == nil {
		pages = []autofinder.InventoryPageCandidate{}
	}
	return s.writeJSON(ctx, PagesFile, pages)
}

func (s *ArtifactStore) SaveRecords(ctx context.Context, records []autofinder.RawVehicleRecord) error {
	if records == nil {
		records = []autofinder.RawVehicleRecord{}
	}
	return s.writeJSON(ctx, RecordsFile, records)
}

func (s *ArtifactStore) SaveSnapshot(ctx context.Context, snapshot *autofinder.InventorySnapshot) error {
	return s.writeJSON(ctx, SnapshotFile, snapshot)
}

// LoadSnapshot reads the most recently saved snapshot.
func (s *ArtifactStore) LoadSnapshot(ctx context.Context) (*autofinder.InventorySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, SnapshotFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, autofinder.Errorf(autofinder.ENOTFOUND, "no inventory snapshot found in %s", s.dir)
	}
	if err != nil {
		return nil, err
	}

	var snapshot autofinder.InventorySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, autofinder.Errorf(autofinder.EINTERNAL, "corrupt inventory snapshot: %v", err)
	}
	return &snapshot, nil
}

// writeJSON marshals v and atomically replaces the named artifact file.
func (s *ArtifactStore) writeJSON(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, dirPermission); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	final := filepath.Join(s.dir, name)
	temp := final + tempSuffix
	if err := os.WriteFile(temp, data, 0644); err != nil {
		return err
	}
	return os.Rename(temp, final)
}
