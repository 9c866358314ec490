package adapter

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize_WritesScriptOnce(t *testing.T) {
	generator := NewFilePreloadGenerator()
	t.Cleanup(func() { generator.Dispose(context.Background()) })

	first, err := generator.Materialize(context.Background())
	require.NoError(t, err)

	content, err := os.ReadFile(string(first))
	require.NoError(t, err)
	assert.Contains(t, string(content), EnvActiveMutant)
	assert.Contains(t, string(content), EnvCoverageFile)
	assert.Contains(t, string(content), EnvSyncPort)
	assert.True(t, strings.HasSuffix(string(first), ".js"))

	second, err := generator.Materialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDispose_RemovesScriptAndRepeats(t *testing.T) {
	generator := NewFilePreloadGenerator()

	path, err := generator.Materialize(context.Background())
	require.NoError(t, err)

	generator.Dispose(context.Background())
	_, statErr := os.Stat(string(path))
	assert.True(t, os.IsNotExist(statErr))

	generator.Dispose(context.Background())
}

func TestMaterializeAfterDispose_YieldsAFreshFile(t *testing.T) {
	generator := NewFilePreloadGenerator()
	t.Cleanup(func() { generator.Dispose(context.Background()) })

	first, err := generator.Materialize(context.Background())
	require.NoError(t, err)
	generator.Dispose(context.Background())

	second, err := generator.Materialize(context.Background())
	require.NoError(t, err)

	_, statErr := os.Stat(string(second))
	assert.NoError(t, statErr)
	assert.NotEqual(t, first, second)
}
