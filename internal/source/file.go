package source

import (
	"context"

	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/event"
	"github.com/norwichevents/eventpipe/internal/storage"
)

// FileSource reads raw candidates from a JSON file on disk. Used for
// fixtures and manually collected submissions that should flow through
// the same pipeline as scraped events.
type FileSource struct {
	name string
	path string
}

// NewFileSource creates a file-backed source adapter.
func NewFileSource(sc config.SourceConfig) *FileSource {
	return &FileSource{name: sc.Name, path: sc.Path}
}

// Name returns the configured source name.
func (s *FileSource) Name() string { return s.name }

// Fetch loads the candidate file.
func (s *FileSource) Fetch(_ context.Context) ([]event.RawCandidate, error) {
	return storage.LoadCandidates(s.path, s.name)
}
