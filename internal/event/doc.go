// Package event defines the data model shared by every pipeline stage.
//
// A RawCandidate is the untrusted record a source adapter produces. Its
// payload is a tagged variant: either free text or a loosely-typed
// key/value bag, so the normalizer's contract is explicit rather than
// relying on runtime shape-sniffing.
//
// An Event is the normalized form derived from exactly one RawCandidate.
// Events carry a deterministic SHA1-based ID generated from their
// provenance and a dedup key canonicalized from name, date and location,
// enabling reliable duplicate detection across sources.
package event
