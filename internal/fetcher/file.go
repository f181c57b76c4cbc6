package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileSource reads a snapshot from a JSON document on disk.
type FileSource struct {
	Path string
}

// NewFileSource builds a file-backed source.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// FetchSnapshot loads the file. A pool id in the file must match poolID when both are set.
func (f *FileSource) FetchSnapshot(ctx context.Context, poolID string) (PoolSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return PoolSnapshot{}, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return PoolSnapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	var snap PoolSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return PoolSnapshot{}, fmt.Errorf("decode snapshot %s: %w", f.Path, err)
	}
	if poolID != "" && snap.PoolID != "" && snap.PoolID != poolID {
		return PoolSnapshot{}, fmt.Errorf("snapshot %s is for pool %s, not %s", f.Path, snap.PoolID, poolID)
	}
	if snap.PoolID == "" {
		snap.PoolID = poolID
	}
	return snap, nil
}

var _ SnapshotSource = (*FileSource)(nil)
