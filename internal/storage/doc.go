// Package storage persists run artifacts: the JSON backup/export
// document written when the submission gateway is unreachable or
// unconfigured, and raw candidate files read back by file sources.
package storage
