package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/maheshrc27/reelpost/internal/models"
)

type jsonResultRepository struct {
	path string
	mu   sync.Mutex
}

// NewJSONResultRepository stores results as one JSON array at path. The file
// is read on every call, so other processes appending to the same path are
// seen by the next List or Create. Every Create rewrites the whole array
// through a temp file and rename, so a crash leaves either the old or the
// new file, never a partial one.
func NewJSONResultRepository(path string) PostingResultRepository {
	return &jsonResultRepository{path: path}
}

func (r *jsonResultRepository) List(ctx context.Context) ([]*models.PostResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.read()
}

func (r *jsonResultRepository) Create(ctx context.Context, result *models.PostResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	results, err := r.read()
	if err != nil {
		return err
	}
	return r.write(append(results, result))
}

func (r *jsonResultRepository) read() ([]*models.PostResult, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []*models.PostResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	var results []*models.PostResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decode results %s: %w", r.path, err)
	}
	if results == nil {
		results = []*models.PostResult{}
	}
	return results, nil
}

func (r *jsonResultRepository) write(results []*models.PostResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return writeFileAtomic(r.path, data)
}

// writeFileAtomic writes data to a sibling temp file, syncs it and renames
// it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
