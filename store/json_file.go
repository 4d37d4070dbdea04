package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/lixenwraith/composure/metrics"
)

// JSONFile keeps all records as one indented JSON array
// Every append rewrites the whole array through a temp file and rename
type JSONFile struct {
	mu   sync.Mutex
	path string
}

// NewJSONFile creates a store backed by the file at path
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Load reads the array, treating a missing or corrupt file as empty
func (s *JSONFile) Load(ctx context.Context) ([]metrics.AssessmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(), nil
}

// Append adds rec to the array and writes the whole array back
func (s *JSONFile) Append(ctx context.Context, rec metrics.AssessmentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records := append(s.read(), rec)
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode assessments: %w", err)
	}
	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("write assessments %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op, the file is not held open
func (s *JSONFile) Close() error {
	return nil
}

func (s *JSONFile) read() []metrics.AssessmentRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("store: reading %s failed, starting empty: %v", s.path, err)
		}
		return []metrics.AssessmentRecord{}
	}

	var records []metrics.AssessmentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("store: %s is not a valid assessment array, starting empty: %v", s.path, err)
		return []metrics.AssessmentRecord{}
	}
	if records == nil {
		records = []metrics.AssessmentRecord{}
	}
	return records
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
