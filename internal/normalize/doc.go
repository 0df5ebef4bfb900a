// Package normalize converts raw source candidates into typed events.
//
// The normalizer accepts both payload shapes (free text and structured
// key/value bags), extracts the name from the most specific available
// field, resolves dates through a fixed heuristic chain of absolute
// formats, relative terms and weekday names, and maps free-text
// category hints onto the configured closed category set. Candidates
// that yield no usable name, no mappable category, or no parseable date
// (with the fallback disabled) are dropped, not errored.
package normalize
