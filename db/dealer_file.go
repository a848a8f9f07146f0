// ABOUTME: JSON file backing the remote dealer resource
// ABOUTME: Whole-collection reads and atomic temp-file-and-rename writes
package db

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harperreed/dealerdesk/models"
)

// DealerDocument is the on-disk shape of the dealer file.
type DealerDocument struct {
	LastUpdated string                `json:"lastUpdated"`
	Dealers     []models.DealerRecord `json:"dealers"`
}

// DealerFile stores the dealer collection as one JSON document.
type DealerFile struct {
	path string
	mu   sync.RWMutex
	now  func() time.Time
}

func NewDealerFile(path string) *DealerFile {
	return &DealerFile{path: path, now: time.Now}
}

// Path returns the file location.
func (f *DealerFile) Path() string {
	return f.path
}

// Load reads the collection. A missing file is an empty collection. Both the
// wrapped document and a bare array are accepted.
func (f *DealerFile) Load() ([]models.DealerRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.DealerRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dealer file: %w", err)
	}

	return DecodeDealers(data)
}

// DecodeDealers parses a dealer document or a bare array of dealers.
func DecodeDealers(data []byte) ([]models.DealerRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []models.DealerRecord{}, nil
	}

	if trimmed[0] == '[' {
		var dealers []models.DealerRecord
		if err := json.Unmarshal(trimmed, &dealers); err != nil {
			return nil, fmt.Errorf("failed to parse dealers: %w", err)
		}
		return dealers, nil
	}

	var doc struct {
		Dealers *[]models.DealerRecord `json:"dealers"`
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse dealer document: %w", err)
	}
	if doc.Dealers == nil {
		return nil, fmt.Errorf("dealer document has no dealers field")
	}
	return *doc.Dealers, nil
}

// Save replaces the file with the given collection.
func (f *DealerFile) Save(dealers []models.DealerRecord) error {
	if dealers == nil {
		dealers = []models.DealerRecord{}
	}

	data, err := json.MarshalIndent(DealerDocument{
		LastUpdated: f.now().Format(models.DateLayout),
		Dealers:     dealers,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dealers: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
