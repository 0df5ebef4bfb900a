package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/event"
)

// UserAgent identifies the pipeline to the sites it scrapes.
const UserAgent = "eventpipe/1.0 (github.com/norwichevents/eventpipe)"

const defaultMaxItems = 25

// HTMLSource scrapes one listing page using configured CSS selectors
// and emits structured candidates. Selector quirks live entirely in
// configuration; this adapter carries no per-venue logic.
type HTMLSource struct {
	name   string
	url    string
	sel    config.SelectorConfig
	venue  string
	cat    string
	client *http.Client
}

// NewHTMLSource creates an HTML source adapter.
func NewHTMLSource(sc config.SourceConfig, timeout time.Duration) *HTMLSource {
	return &HTMLSource{
		name:   sc.Name,
		url:    sc.URL,
		sel:    sc.Selectors,
		venue:  sc.DefaultVenue,
		cat:    sc.DefaultCategory,
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the configured source name.
func (s *HTMLSource) Name() string { return s.name }

// Fetch downloads the listing page and extracts one candidate per item
// selector match.
func (s *HTMLSource) Fetch(ctx context.Context) ([]event.RawCandidate, error) {
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

	return s.parse(resp.Body)
}

func (s *HTMLSource) parse(r io.Reader) ([]event.RawCandidate, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	max := s.sel.MaxItems
	if max <= 0 {
		max = defaultMaxItems
	}

	now := time.Now().UTC()
	candidates := make([]event.RawCandidate, 0, max)

	doc.Find(s.sel.Item).EachWithBreak(func(i int, item *goquery.Selection) bool {
		if len(candidates) >= max {
			return false
		}

		fields := map[string]string{
			"name":        s.text(item, s.sel.Title),
			"date":        s.dateText(item),
			"time":        s.text(item, s.sel.Time),
			"location":    s.text(item, s.sel.Venue),
			"price":       s.text(item, s.sel.Price),
			"description": s.text(item, s.sel.Summary),
			"category":    s.cat,
		}

		if fields["name"] == "" {
			// Fall back to the item's own leading text.
			fields["name"] = firstSegment(item.Text())
		}
		if fields["location"] == "" {
			fields["location"] = s.venue
		}
		if link := s.attr(item, s.sel.Link, "href"); link != "" {
			fields["ticketLink"] = absoluteURL(s.url, link)
		}
		if img := s.attr(item, s.sel.Image, "src"); img != "" {
			fields["image"] = absoluteURL(s.url, img)
		}

		candidates = append(candidates, event.RawCandidate{
			Source:    s.name,
			Payload:   event.StructuredPayload(fields),
			SourceURL: s.url,
			FetchedAt: now,
		})
		return true
	})

	return candidates, nil
}

// dateText prefers a machine-readable datetime attribute over the
// element's display text.
func (s *HTMLSource) dateText(item *goquery.Selection) string {
	if s.sel.Date == "" {
		return ""
	}
	el := item.Find(s.sel.Date).First()
	if dt, ok := el.Attr("datetime"); ok && dt != "" {
		return dt
	}
	return strings.TrimSpace(el.Text())
}

func (s *HTMLSource) text(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(item.Find(selector).First().Text())
}

func (s *HTMLSource) attr(item *goquery.Selection, selector, name string) string {
	if selector == "" {
		return ""
	}
	v, _ := item.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

// firstSegment returns the first non-empty line of text.
func firstSegment(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// absoluteURL resolves href against the page URL when it is relative.
func absoluteURL(page, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base := page
	if i := strings.Index(base, "://"); i >= 0 {
		if j := strings.Index(base[i+3:], "/"); j >= 0 {
			base = base[:i+3+j]
		}
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return base + href
}
