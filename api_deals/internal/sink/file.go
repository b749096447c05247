package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gfdeals/api_deals/internal/deals"
)

// FileSink keeps the collection as a JSON array on disk.
type FileSink struct {
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Load returns nil when the file does not exist yet.
func (s *FileSink) Load(_ context.Context) ([]deals.Deal, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var ds []deals.Deal
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return ds, nil
}

// Persist writes ds through a temp file and rename so readers never see a
// partial array.
func (s *FileSink) Persist(ctx context.Context, ds []deals.Deal) (Result, error) {
	previous, _ := s.Load(ctx)

	if ds == nil {
		ds = []deals.Deal{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return Result{}, fmt.Errorf("encode deals: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return Result{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return Result{}, fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return Result{}, fmt.Errorf("replace %s: %w", s.path, err)
	}
	return Result{Deleted: len(previous), Inserted: len(ds)}, nil
}
