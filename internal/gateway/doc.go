// Package gateway submits curated events to the external publication
// API: JSON over HTTP POST, timeout-bound, one attempt per event by
// default. A dry-run implementation prints submissions for local
// inspection.
package gateway
