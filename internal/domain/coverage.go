package domain

import (
	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

// MergeCoverageRecords unions the coverage records of every test-file worker
// into one presence map. The union is commutative, associative, and
// idempotent, so worker ordering and duplicated flushes cannot change the
// result. Returns nil when there are no records.
func MergeCoverageRecords(records []m.CoverageLineRecord) *m.MutantCoverage {
	if len(records) == 0 {
		return nil
	}

	perTest := map[string]map[string]struct{}{}
	static := map[string]struct{}{}

	for _, record := range records {
		for testID, mutants := range record.PerTest {
			if perTest[testID] == nil {
				perTest[testID] = map[string]struct{}{}
			}

			for _, mutantID := range mutants {
				perTest[testID][mutantID] = struct{}{}
			}
		}

		for _, mutantID := range record.Static {
			static[mutantID] = struct{}{}
		}
	}

	merged := &m.MutantCoverage{
		PerTest: make(map[string]map[string]int, len(perTest)),
		Static:  make(map[string]int, len(static)),
	}

	// Presence is all the engine needs; hit counts are pinned to 1.
	for testID, mutants := range perTest {
		hits := make(map[string]int, len(mutants))
		for mutantID := range mutants {
			hits[mutantID] = 1
		}

		merged.PerTest[testID] = hits
	}

	for mutantID := range static {
		merged.Static[mutantID] = 1
	}

	return merged
}
