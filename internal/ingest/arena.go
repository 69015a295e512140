package ingest

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/agentstation/scoremerge/pkg/constants"
	"github.com/agentstation/scoremerge/pkg/errors"
	"github.com/agentstation/scoremerge/pkg/logging"
)

// Arena is the scratch directory of one run. Every run gets its own so
// concurrent runs never see each other's files.
type Arena struct {
	ID  string
	Dir string
}

// NewArena creates a scratch directory tagged with a fresh run ID.
func NewArena() (*Arena, error) {
	id := uuid.NewString()
	dir, err := os.MkdirTemp("", "scoremerge-"+id[:8]+"-")
	if err != nil {
		return nil, errors.WrapIO("create", os.TempDir(), err)
	}
	return &Arena{ID: id, Dir: dir}, nil
}

// Close removes the scratch directory and everything in it.
func (a *Arena) Close() error {
	if a == nil || a.Dir == "" {
		return nil
	}
	return os.RemoveAll(a.Dir)
}

// ExtractFile unpacks a zip archive on disk into the arena.
func (a *Arena) ExtractFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // user supplied archive
	if err != nil {
		return "", errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", errors.WrapIO("stat", path, err)
	}
	return a.Extract(ctx, filepath.Base(path), f, info.Size())
}

// Extract unpacks a zip archive into a fresh directory inside the arena
// and returns that directory. Entries escaping the destination, symlinks
// and entries larger than the size cap are rejected.
func (a *Arena) Extract(ctx context.Context, name string, r io.ReaderAt, size int64) (string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", errors.WrapArchive(name, err)
	}

	dest, err := os.MkdirTemp(a.Dir, "input-")
	if err != nil {
		return "", errors.WrapIO("create", a.Dir, err)
	}

	logger := logging.FromContext(ctx)
	for _, zf := range zr.File {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if strings.HasPrefix(zf.Name, "__MACOSX/") {
			continue
		}
		if err := extractEntry(dest, zf); err != nil {
			return "", errors.WrapArchive(name, err)
		}
	}
	logger.Debug().Str("archive", name).Int("entries", len(zr.File)).Str("dir", dest).Msg("archive extracted")
	return dest, nil
}

func extractEntry(dest string, zf *zip.File) error {
	target := filepath.Join(dest, filepath.FromSlash(zf.Name))
	if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
		return fmt.Errorf("entry %q escapes the archive root", zf.Name)
	}

	mode := zf.Mode()
	switch {
	case mode.IsDir():
		return os.MkdirAll(target, constants.DirPermissions)
	case mode&os.ModeSymlink != 0:
		return fmt.Errorf("entry %q is a symlink", zf.Name)
	}

	if zf.UncompressedSize64 > constants.MaxArchiveEntrySize {
		return fmt.Errorf("entry %q exceeds %d bytes", zf.Name, constants.MaxArchiveEntrySize)
	}
	if err := os.MkdirAll(filepath.Dir(target), constants.DirPermissions); err != nil {
		return err
	}

	src, err := zf.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions) //nolint:gosec // path checked above
	if err != nil {
		return err
	}
	n, err := io.Copy(out, io.LimitReader(src, constants.MaxArchiveEntrySize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if n > constants.MaxArchiveEntrySize {
		return fmt.Errorf("entry %q exceeds %d bytes", zf.Name, constants.MaxArchiveEntrySize)
	}
	return nil
}
