package event

import "time"

// PayloadKind discriminates the two shapes a source payload can take.
type PayloadKind int

const (
	// PayloadText is unstructured free text (AI-extracted blobs, plain
	// listing lines).
	PayloadText PayloadKind = iota
	// PayloadStructured is a loosely-typed key/value bag (pre-parsed
	// listing fields, API responses).
	PayloadStructured
)

// Payload is a tagged variant: exactly one of Text or Fields is
// meaningful, selected by Kind.
type Payload struct {
	Kind   PayloadKind
	Text   string
	Fields map[string]string
}

// TextPayload wraps free text as a payload.
func TextPayload(text string) Payload {
	return Payload{Kind: PayloadText, Text: text}
}

// StructuredPayload wraps a key/value bag as a payload.
func StructuredPayload(fields map[string]string) Payload {
	return Payload{Kind: PayloadStructured, Fields: fields}
}

// IsZero reports whether the payload carries no usable content.
func (p Payload) IsZero() bool {
	switch p.Kind {
	case PayloadText:
		return p.Text == ""
	case PayloadStructured:
		return len(p.Fields) == 0
	}
	return true
}

// Field returns the named field from a structured payload, or "" for
// text payloads and missing keys.
func (p Payload) Field(key string) string {
	if p.Kind != PayloadStructured {
		return ""
	}
	return p.Fields[key]
}

// RawCandidate is one unvalidated record fetched by a source adapter.
// It is immutable once created and consumed exactly once by the
// normalizer.
type RawCandidate struct {
	Source    string
	Payload   Payload
	SourceURL string
	FetchedAt time.Time
}
