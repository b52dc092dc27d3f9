// Package runlog persists finished run states as JSON audit records,
// scoped per author under the user config directory.
package runlog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/quillworks/quill/internal/orchestrator"
)

// Record is one archived run: the request, the final state snapshot and
// the result handed to the caller.
type Record struct {
	RunID      string                             `json:"runId"`
	AuthorKey  string                             `json:"authorKey"`
	Request    *orchestrator.GenerationRequest    `json:"request"`
	State      *orchestrator.OrchestrationState   `json:"state"`
	Result     *orchestrator.Result               `json:"result"`
	FinishedAt time.Time                          `json:"finishedAt"`
}

// Meta is the lightweight listing view of a record.
type Meta struct {
	RunID      string                `json:"runId"`
	StopReason orchestrator.StopReason `json:"stopReason"`
	Success    bool                  `json:"success"`
	FinishedAt time.Time             `json:"finishedAt"`
}

// Store writes run records to disk.
type Store struct {
	basePath string
}

// NewStore creates a run-log store rooted at configPath (typically the
// application's user config dir).
func NewStore(configPath string) *Store {
	return &Store{basePath: filepath.Join(configPath, "runs")}
}

// AuthorKey derives the directory-scoping hash for an author identity.
func (s *Store) AuthorKey(requesterID string) string {
	hash := sha256.Sum256([]byte(requesterID))
	return hex.EncodeToString(hash[:])[:12]
}

// Save archives one finished run.
func (s *Store) Save(rec *Record) error {
	if rec.AuthorKey == "" {
		rec.AuthorKey = s.AuthorKey(rec.Request.RequesterID)
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now()
	}

	dir := filepath.Join(s.basePath, rec.AuthorKey)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create run log directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	filename := filepath.Join(dir, rec.RunID+".json")
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write run record: %w", err)
	}
	return nil
}

// Load retrieves one archived run.
func (s *Store) Load(requesterID, runID string) (*Record, error) {
	filename := filepath.Join(s.basePath, s.AuthorKey(requesterID), runID+".json")
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read run record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
	}
	return &rec, nil
}

// List returns an author's archived runs, newest first.
func (s *Store) List(requesterID string) ([]Meta, error) {
	dir := filepath.Join(s.basePath, s.AuthorKey(requesterID))

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []Meta{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list run log directory: %w", err)
	}

	var metas []Meta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		meta := Meta{RunID: rec.RunID, FinishedAt: rec.FinishedAt}
		if rec.Result != nil {
			meta.StopReason = rec.Result.StopReason
			meta.Success = rec.Result.Success
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].FinishedAt.After(metas[j].FinishedAt)
	})
	return metas, nil
}
