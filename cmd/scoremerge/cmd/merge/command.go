// Package merge provides the merge command, which consolidates every month
// of a directory or archive into one ranked table per month.
package merge

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/scoremerge/internal/appcontext"
)

// NewCommand creates the merge command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "merge <dir|archive.zip>",
		GroupID: "core",
		Short:   "Merge the score files of every month",
		Args:    cobra.ExactArgs(1),
		Long: `Merge reads every month folder of a directory or .zip archive and joins
the score files of each month on the entity identifier.

For every month the command prints a table ranked by total score. Files
that cannot be read or lack the required columns are skipped and reported
on stderr, so one broken spreadsheet never hides the rest of the month.`,
		Example: `  scoremerge merge ./scores                         # Merge every month
  scoremerge merge scores.zip --month 2024-01       # One month of an archive
  scoremerge merge ./scores --metadata cadastro.csv # Add registration dates
  scoremerge merge ./scores --filter "sao" --top 0  # All matching entities
  scoremerge merge ./scores --export-dir out --sqlite out/scores.db
  scoremerge merge ./scores -o json > scores.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Execute(cmd, app, flags, args[0])
		},
	}

	flags = addFlags(cmd)

	return cmd
}
