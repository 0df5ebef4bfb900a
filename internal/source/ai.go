package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/norwichevents/eventpipe/internal/ai"
	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/event"
)

// maxExtractionChars bounds how much page text is handed to the
// extractor in one call.
const maxExtractionChars = 12000

// AISource fetches a page, strips it down to visible text and hands it
// to the extraction collaborator. Useful for listing pages whose markup
// is too irregular for selector-based scraping.
type AISource struct {
	name      string
	url       string
	context   string
	client    *http.Client
	extractor *ai.Extractor
}

// NewAISource creates an AI-backed source adapter.
func NewAISource(sc config.SourceConfig, timeout time.Duration, extractor *ai.Extractor) *AISource {
	return &AISource{
		name:      sc.Name,
		url:       sc.URL,
		context:   sc.Context,
		client:    &http.Client{Timeout: timeout},
		extractor: extractor,
	}
}

// Name returns the configured source name.
func (s *AISource) Name() string { return s.name }

// Fetch downloads the page and delegates structuring to the extractor.
func (s *AISource) Fetch(ctx context.Context) ([]event.RawCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}

	text := stripHTML(string(body))
	if len(text) > maxExtractionChars {
		text = text[:maxExtractionChars]
	}

	return s.extractor.Structure(ctx, text, s.context, s.name, s.url)
}

var (
	scriptBlocks = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	tags         = regexp.MustCompile(`<[^>]+>`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// stripHTML reduces markup to readable text good enough for extraction.
func stripHTML(html string) string {
	text := scriptBlocks.ReplaceAllString(html, "")
	text = tags.ReplaceAllString(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	return strings.TrimSpace(blankRuns.ReplaceAllString(text, "\n\n"))
}
