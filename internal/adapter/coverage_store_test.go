package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/hughescr/stryker-bun-runner/internal/model"
)

func writeCoverageFile(t *testing.T, content string) m.Path {
	t.Helper()

	path := filepath.Join(t.TempDir(), "coverage.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return m.Path(path)
}

func TestReadRecords_ParsesOneRecordPerLine(t *testing.T) {
	store := NewLocalCoverageStore()

	path := writeCoverageFile(t,
		`{"perTest":{"t1":["1","2"]},"static":["5"]}`+"\n"+
			`{"perTest":{"t2":["3"]},"static":[]}`+"\n")

	records := store.ReadRecords(context.Background(), path)

	require.Len(t, records, 2)
	assert.Equal(t, []string{"1", "2"}, records[0].PerTest["t1"])
	assert.Equal(t, []string{"5"}, records[0].Static)
	assert.Equal(t, []string{"3"}, records[1].PerTest["t2"])
}

func TestReadRecords_SkipsCorruptLines(t *testing.T) {
	store := NewLocalCoverageStore()

	// A worker killed mid-write leaves a truncated trailing line.
	path := writeCoverageFile(t,
		`{"perTest":{"t1":["1"]},"static":[]}`+"\n"+
			`{"perTest":{"t2":`+"\n"+
			`{"perTest":{"t3":["9"]},"static":["4"]}`+"\n")

	records := store.ReadRecords(context.Background(), path)

	require.Len(t, records, 2)
	assert.Equal(t, []string{"1"}, records[0].PerTest["t1"])
	assert.Equal(t, []string{"9"}, records[1].PerTest["t3"])
}

func TestReadRecords_MissingFileIsNil(t *testing.T) {
	store := NewLocalCoverageStore()

	records := store.ReadRecords(context.Background(), m.Path(filepath.Join(t.TempDir(), "absent.json")))

	assert.Nil(t, records)
}

func TestReadRecords_EmptyFileIsNil(t *testing.T) {
	store := NewLocalCoverageStore()

	records := store.ReadRecords(context.Background(), writeCoverageFile(t, "\n\n"))

	assert.Nil(t, records)
}

func TestCleanup_RemovesFileAndSwallowsRepeats(t *testing.T) {
	store := NewLocalCoverageStore()
	path := writeCoverageFile(t, "{}")

	store.Cleanup(context.Background(), path)
	_, err := os.Stat(string(path))
	assert.True(t, os.IsNotExist(err))

	store.Cleanup(context.Background(), path)
}
