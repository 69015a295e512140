package merge

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/scoremerge/internal/config"
)

// Flags holds the merge command flags.
type Flags struct {
	Metadata  string
	Policy    string
	IDMode    string
	ScoreMode string
	JoinKey   string
	Delimiter string
	Workers   int

	Filter    string
	Top       int
	Month     string
	ExportDir string
	SQLite    string
}

func addFlags(cmd *cobra.Command) *Flags {
	f := &Flags{}
	cmd.Flags().StringVar(&f.Metadata, "metadata", "", "registration metadata file joined by identifier")
	cmd.Flags().StringVar(&f.Policy, "policy", "", "numeric policy: float or integer")
	cmd.Flags().StringVar(&f.IDMode, "id-mode", "", "identifier normalization: legacy or thousands")
	cmd.Flags().StringVar(&f.ScoreMode, "score-mode", "", "score cleaning: strip or pattern")
	cmd.Flags().StringVar(&f.JoinKey, "join-key", "", "merge key: id (default, joins on the identifier alone) or id_name (identifier and name must both match)")
	cmd.Flags().StringVar(&f.Delimiter, "delimiter", "", "source delimiter: auto, comma, semicolon, tab or pipe")
	cmd.Flags().IntVar(&f.Workers, "workers", 0, "months processed in parallel")

	cmd.Flags().StringVar(&f.Filter, "filter", "", "show only entities whose name contains text")
	cmd.Flags().IntVar(&f.Top, "top", 0, "rows shown per month, 0 for all (default from config)")
	cmd.Flags().StringVar(&f.Month, "month", "", "process only the named month")
	cmd.Flags().StringVar(&f.ExportDir, "export-dir", "", "write one CSV per month into this directory")
	cmd.Flags().StringVar(&f.SQLite, "sqlite", "", "write every month into this SQLite database")
	return f
}

// apply overrides the settings with the flags the user set.
func (f *Flags) apply(cmd *cobra.Command, s config.Settings) config.Settings {
	changed := cmd.Flags().Changed
	if changed("metadata") {
		s.Metadata = f.Metadata
	}
	if changed("policy") {
		s.Policy = f.Policy
	}
	if changed("id-mode") {
		s.IDMode = f.IDMode
	}
	if changed("score-mode") {
		s.ScoreMode = f.ScoreMode
	}
	if changed("join-key") {
		s.JoinKey = f.JoinKey
	}
	if changed("delimiter") {
		s.Delimiter = f.Delimiter
	}
	if changed("workers") {
		s.Workers = f.Workers
	}
	if changed("top") {
		s.Top = f.Top
	}
	return s
}
