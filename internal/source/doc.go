// Package source defines the adapter boundary between the pipeline and
// the listings it ingests. Each adapter fetches raw candidates from one
// place: an HTML listing page scraped with configured CSS selectors, a
// page whose text is structured by the AI extraction collaborator, or a
// JSON file on disk. Adapters are the unit of failure isolation; a
// fetch error never escapes past the orchestrator's per-source handling.
package source
