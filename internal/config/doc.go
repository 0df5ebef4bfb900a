// Package config loads the pipeline's single explicit configuration
// structure from a YAML file. Everything tunable lives here: the closed
// category set, the category hint table, trusted sources, the scoring
// weight table, classification thresholds, source adapter definitions
// and network settings. Components receive the structure by reference
// at construction and never read ambient process state.
package config
