package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/scoremerge/pkg/errors"
)

func TestArenaLifecycle(t *testing.T) {
	a, err := NewArena()
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.DirExists(t, a.Dir)

	b, err := NewArena()
	require.NoError(t, err)
	defer func() { _ = b.Close() }()
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Dir, b.Dir)

	require.NoError(t, a.Close())
	assert.NoDirExists(t, a.Dir)
}

func TestArenaExtract(t *testing.T) {
	a, err := NewArena()
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	data := zipBytes(t, map[string]string{
		"export/2024-01/score_a.csv":  scoreA,
		"__MACOSX/export/._score_a":   "junk",
		"export/2024-01/sub/deep.csv": "x",
	})
	dir, err := a.Extract(context.Background(), "upload.zip", bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "export", "2024-01", "score_a.csv"))
	require.NoError(t, err)
	assert.Equal(t, scoreA, string(content))
	assert.NoDirExists(t, filepath.Join(dir, "__MACOSX"))
}

func TestArenaExtractRejectsEscapingEntries(t *testing.T) {
	a, err := NewArena()
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	data := zipBytes(t, map[string]string{"../evil.csv": "x"})
	_, err = a.Extract(context.Background(), "evil.zip", bytes.NewReader(data), int64(len(data)))
	require.Error(t, err)
	assert.True(t, errors.IsArchive(err))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(a.Dir), "evil.csv"))
}

func TestArenaExtractInvalidArchive(t *testing.T) {
	a, err := NewArena()
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	data := []byte("not a zip")
	_, err = a.Extract(context.Background(), "bad.zip", bytes.NewReader(data), int64(len(data)))
	assert.True(t, errors.IsArchive(err))
}
