// Package ai wraps an OpenAI-compatible chat-completions endpoint as
// the pipeline's extraction collaborator: it turns raw page text into
// structured candidate records. Extraction failures degrade to zero
// candidates; nothing here can abort a run.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/event"
)

const extractionPrompt = `Extract every public event from the text below as a JSON array.
Each element must have: name, date (YYYY-MM-DD), time (HH:MM or null),
location, category, description, ticketLink, price. Use null for
unknown fields. Output only the JSON array, no commentary.

Context: %s

Text:
%s`

// Extractor calls the configured model to structure raw listing text.
type Extractor struct {
	cfg    config.AIConfig
	client *http.Client
}

// New creates an Extractor from the AI section of the config.
func New(cfg config.AIConfig) *Extractor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Extractor{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an API key is available.
func (x *Extractor) Configured() bool { return x.cfg.APIKey != "" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Structure extracts candidate records from raw text. sourceCtx is a
// short hint about what the text is ("Norwich theatre listings"). Each
// extracted object becomes one structured candidate; items the model
// could not shape are simply absent.
func (x *Extractor) Structure(ctx context.Context, rawText, sourceCtx, sourceName, sourceURL string) ([]event.RawCandidate, error) {
	if !x.Configured() {
		return nil, fmt.Errorf("extractor not configured: missing API key")
	}

	body, err := json.Marshal(chatRequest{
		Model: x.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(extractionPrompt, sourceCtx, rawText)},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimSuffix(x.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+x.cfg.APIKey)

	resp, err := x.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling extraction API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction API error (status %d)", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("extraction API returned no choices")
	}

	return parseExtraction(cr.Choices[0].Message.Content, sourceName, sourceURL)
}

// parseExtraction decodes the model's JSON array into candidates.
// Models sometimes wrap the array in a markdown fence; strip it.
func parseExtraction(content, sourceName, sourceURL string) ([]event.RawCandidate, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		return nil, fmt.Errorf("parsing extraction output: %w", err)
	}

	now := time.Now().UTC()
	candidates := make([]event.RawCandidate, 0, len(items))
	for _, item := range items {
		fields := make(map[string]string, len(item))
		for k, raw := range item {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				continue // null or non-string value
			}
			if s != "" {
				fields[k] = s
			}
		}
		if len(fields) == 0 {
			continue
		}
		candidates = append(candidates, event.RawCandidate{
			Source:    sourceName,
			Payload:   event.StructuredPayload(fields),
			SourceURL: sourceURL,
			FetchedAt: now,
		})
	}
	return candidates, nil
}
