// Package months provides the months command.
package months

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/scoremerge/internal/appcontext"
	"github.com/agentstation/scoremerge/internal/cmd/output"
	"github.com/agentstation/scoremerge/internal/cmd/table"
	"github.com/agentstation/scoremerge/internal/ingest"
	"github.com/agentstation/scoremerge/pkg/errors"
	"github.com/agentstation/scoremerge/pkg/logging"
)

// Summary is the structured output of one month.
type Summary struct {
	Month string   `json:"month" yaml:"month"`
	Path  string   `json:"path" yaml:"path"`
	Files []string `json:"files" yaml:"files"`
}

// NewCommand creates the months command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "months <dir|archive.zip>",
		GroupID: "core",
		Short:   "List the months of a directory or archive",
		Args:    cobra.ExactArgs(1),
		Example: `  scoremerge months ./scores
  scoremerge months scores.zip -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, args[0])
		},
	}
}

// Execute lists the month folders found under path.
func Execute(cmd *cobra.Command, app appcontext.Interface, path string) error {
	ctx := logging.WithLogger(cmd.Context(), app.Logger())
	format, err := output.ParseFormat(string(output.DetectFormat(app.OutputFormat())))
	if err != nil {
		return err
	}

	root := path
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		arena, err := ingest.NewArena()
		if err != nil {
			return err
		}
		defer func() { _ = arena.Close() }()

		if root, err = arena.ExtractFile(ctx, path); err != nil {
			return err
		}
	} else if info, err := os.Stat(path); err != nil {
		return errors.WrapIO("stat", path, err)
	} else if !info.IsDir() {
		return errors.NewValidationError("path", path, "must be a directory or a .zip archive")
	}

	months, err := ingest.DiscoverMonths(root)
	if err != nil {
		return err
	}
	for i := range months {
		if rel, err := filepath.Rel(root, months[i].Dir); err == nil {
			months[i].Dir = rel
		}
	}

	out := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON, output.FormatYAML:
		list := make([]Summary, 0, len(months))
		for _, m := range months {
			files := make([]string, 0, len(m.Files))
			for _, f := range m.Files {
				files = append(files, filepath.Base(f))
			}
			list = append(list, Summary{Month: m.Name, Path: m.Dir, Files: files})
		}
		return output.NewFormatter(format).Format(out, list)
	default:
		return output.NewFormatter(format).Format(out, table.MonthsToTableData(months))
	}
}
