package ingest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentstation/scoremerge/pkg/errors"
)

// Month is one month folder and its readable source files.
type Month struct {
	Name  string
	Dir   string
	Files []string
}

// DiscoverMonths lists the month folders under root, sorted by name. Each
// immediate subdirectory is a month. When root holds nothing but a single
// directory it is treated as a wrapper and the scan descends into it, which
// is how most archive tools pack a folder.
func DiscoverMonths(root string) ([]Month, error) {
	root, err := unwrapRoot(root)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.WrapIO("list", root, err)
	}

	var months []Month
	for _, e := range entries {
		if !e.IsDir() || ignored(e.Name()) {
			continue
		}
		dir := filepath.Join(root, e.Name())
		files, err := SourceFiles(dir)
		if err != nil {
			return nil, err
		}
		months = append(months, Month{Name: e.Name(), Dir: dir, Files: files})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Name < months[j].Name })
	return months, nil
}

// SourceFiles lists the supported files directly inside dir, sorted by name.
func SourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("list", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || ignored(e.Name()) || !Supported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func unwrapRoot(root string) (string, error) {
	for {
		entries, err := os.ReadDir(root)
		if err != nil {
			return "", errors.WrapIO("list", root, err)
		}
		var dirs []os.DirEntry
		others := 0
		for _, e := range entries {
			if ignored(e.Name()) {
				continue
			}
			if e.IsDir() {
				dirs = append(dirs, e)
			} else {
				others++
			}
		}
		if len(dirs) != 1 || others > 0 {
			return root, nil
		}
		// a lone month folder is not a wrapper
		inner := filepath.Join(root, dirs[0].Name())
		files, err := SourceFiles(inner)
		if err != nil {
			return "", err
		}
		if len(files) > 0 {
			return root, nil
		}
		root = inner
	}
}

// ignored matches hidden entries, macOS archive metadata and Office lock
// files.
func ignored(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, "~$") ||
		name == "__MACOSX"
}
