package domain

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTestNamePattern_Empty(t *testing.T) {
	assert.Empty(t, BuildTestNamePattern(nil))
	assert.Empty(t, BuildTestNamePattern([]string{}))
}

func TestBuildTestNamePattern_MatchesLiteralNamesOnly(t *testing.T) {
	names := []string{
		"adds 1 + 1",
		"matches a.b (sometimes)",
		"handles [weird] * names? ^$",
	}

	pattern := BuildTestNamePattern(names)
	compiled, err := regexp.Compile(pattern)
	require.NoError(t, err)

	for _, name := range names {
		assert.True(t, compiled.MatchString(name), "pattern must match %q", name)
	}

	// The metacharacters must not widen the match into a superset.
	assert.False(t, compiled.MatchString("adds 1 X 1"))
	assert.False(t, compiled.MatchString("matches aXb (sometimes)"))
	assert.False(t, compiled.MatchString("handles w * names? ^$"))
	assert.False(t, compiled.MatchString("adds 1 + 1 again"))
	assert.False(t, compiled.MatchString("prefix adds 1 + 1"))
}

func TestBuildTestNamePattern_JoinsAlternatives(t *testing.T) {
	pattern := BuildTestNamePattern([]string{"a", "b"})

	compiled := regexp.MustCompile(pattern)
	assert.True(t, compiled.MatchString("a"))
	assert.True(t, compiled.MatchString("b"))
	assert.False(t, compiled.MatchString("c"))
}
