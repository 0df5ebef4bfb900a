package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/norwichevents/eventpipe/internal/event"
)

// Storage handles the on-disk side of a run: the backup/export document
// written when the gateway is unreachable or unconfigured, and raw
// candidate files consumed by file sources.
type Storage struct {
	dataDir string
}

// New creates a Storage rooted at dataDir, expanding a leading ~ and
// creating the directory if needed.
func New(dataDir string) (*Storage, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

// Dir returns the resolved data directory.
func (s *Storage) Dir() string { return s.dataDir }

// Backup is the export document written to disk as the gateway
// fallback.
type Backup struct {
	RunID     string         `json:"run_id"`
	Timestamp string         `json:"timestamp"` // RFC3339
	Total     int            `json:"total"`
	Events    []*event.Event `json:"events"`
}

// WriteBackup writes the backup document for a run and returns its
// path. Filenames carry the run timestamp so successive runs never
// clobber each other.
func (s *Storage) WriteBackup(runID string, events []*event.Event) (string, error) {
	now := time.Now().UTC()
	backup := Backup{
		RunID:     runID,
		Timestamp: now.Format(time.RFC3339),
		Total:     len(events),
		Events:    events,
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding backup: %w", err)
	}

	path := filepath.Join(s.dataDir, fmt.Sprintf("events_%s.json", now.Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}

	return path, nil
}

// LatestBackup returns the path of the most recent backup document, or
// an error when none exist. Filenames sort chronologically.
func (s *Storage) LatestBackup() (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dataDir, "events_*.json"))
	if err != nil {
		return "", fmt.Errorf("listing backups: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no backup documents in %s", s.dataDir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// LoadBackup reads a backup document back from disk.
func (s *Storage) LoadBackup(path string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}

	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("parsing backup: %w", err)
	}
	return &backup, nil
}

// rawRecord is the on-disk shape of a candidate for file sources:
// either free text or a field bag.
type rawRecord struct {
	Text      string            `json:"text,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	SourceURL string            `json:"source_url,omitempty"`
}

// LoadCandidates reads a JSON array of raw candidate records, used by
// file sources for fixtures and manual submissions.
func LoadCandidates(path, sourceName string) ([]event.RawCandidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading candidates: %w", err)
	}

	var records []rawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing candidates: %w", err)
	}

	now := time.Now().UTC()
	candidates := make([]event.RawCandidate, 0, len(records))
	for _, r := range records {
		var payload event.Payload
		switch {
		case len(r.Fields) > 0:
			payload = event.StructuredPayload(r.Fields)
		case r.Text != "":
			payload = event.TextPayload(r.Text)
		default:
			continue // empty record
		}
		candidates = append(candidates, event.RawCandidate{
			Source:    sourceName,
			Payload:   payload,
			SourceURL: r.SourceURL,
			FetchedAt: now,
		})
	}
	return candidates, nil
}
