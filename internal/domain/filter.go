package domain

import (
	"regexp"
	"strings"
)

// BuildTestNamePattern builds the exact-match alternation handed to bun's
// --test-name-pattern flag. Names are quoted so metacharacters in display
// names stay literal, and the anchors keep a name from matching its own
// prefix or suffix. Empty input yields an empty pattern, which runs
// everything.
func BuildTestNamePattern(names []string) string {
	if len(names) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, regexp.QuoteMeta(name))
	}

	return "^(" + strings.Join(quoted, "|") + ")$"
}
