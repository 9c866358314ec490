package model

// CoverageLineRecord is one JSON object appended to the coverage side file
// by a test-file worker. Multiple workers append concurrently, so a file
// holds an unbounded, unordered list of records and the same test id may
// appear in several of them.
type CoverageLineRecord struct {
	// PerTest maps a test identifier to the mutant ids it exercised.
	PerTest map[string][]string `json:"perTest"`

	// Static lists mutant ids exercised outside any test boundary.
	Static []string `json:"static"`
}

// MutantCoverage is the merged, presence-only view over all records.
// Every hit count is exactly 1; sets, not frequencies, are meaningful.
type MutantCoverage struct {
	PerTest map[string]map[string]int `yaml:"perTest"`
	Static  map[string]int            `yaml:"static"`
}
