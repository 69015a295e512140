package months

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/scoremerge/internal/appcontext"
	"github.com/agentstation/scoremerge/pkg/errors"
)

func execute(t *testing.T, format, path string) (string, error) {
	t.Helper()
	cmd := NewCommand(&appcontext.Mock{OutputFormatFunc: func() string { return format }})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{path})
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMonthsDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2024-02"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2024-01"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "2024-01", "score_a.csv"), []byte("id\n"), 0o644))

	out, err := execute(t, "json", root)
	require.NoError(t, err)

	var list []Summary
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Equal(t, []Summary{
		{Month: "2024-01", Path: "2024-01", Files: []string{"score_a.csv"}},
		{Month: "2024-02", Path: "2024-02", Files: []string{}},
	}, list)
}

func TestMonthsArchive(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"export/2024-03/score_a.csv", "export/2024-04/score_b.xlsx"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("id\n"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	path := filepath.Join(t.TempDir(), "scores.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	out, err := execute(t, "table", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03")
	assert.Contains(t, out, "2024-04")
}

func TestMonthsRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.csv")
	require.NoError(t, os.WriteFile(path, []byte("id\n"), 0o644))

	_, err := execute(t, "table", path)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}
