// Package pipeline orchestrates one batch from source fetch to gateway
// handoff. The batch is single-threaded and synchronous: sources are
// fetched sequentially with an inter-request delay, each candidate is
// normalized and validated on arrival, the accumulated set is deduped
// once, and the survivors are scored, classified and submitted. Every
// failure short of "no sources at all" degrades gracefully to a smaller
// output set with accurate counters.
package pipeline
