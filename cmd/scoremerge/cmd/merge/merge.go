package merge

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/scoremerge/internal/appcontext"
	"github.com/agentstation/scoremerge/internal/cmd/alerts"
	"github.com/agentstation/scoremerge/internal/cmd/output"
	"github.com/agentstation/scoremerge/internal/cmd/table"
	"github.com/agentstation/scoremerge/internal/export"
	"github.com/agentstation/scoremerge/internal/ingest"
	"github.com/agentstation/scoremerge/pkg/errors"
	"github.com/agentstation/scoremerge/pkg/logging"
	"github.com/agentstation/scoremerge/pkg/scores"
)

// Report is the structured (json/yaml) output of a merge.
type Report struct {
	RunID  string         `json:"run_id" yaml:"run_id"`
	Months []MonthReport  `json:"months" yaml:"months"`
	Issues []ingest.Issue `json:"issues" yaml:"issues"`
}

// MonthReport is one month of a Report. Table is nil when the month had no
// valid data.
type MonthReport struct {
	Month  string           `json:"month" yaml:"month"`
	Files  int              `json:"files" yaml:"files"`
	Table  *scores.Document `json:"table" yaml:"table"`
	Issues []ingest.Issue   `json:"issues" yaml:"issues"`
}

// Execute runs the merge for one input path.
func Execute(cmd *cobra.Command, app appcontext.Interface, flags *Flags, path string) error {
	logger := app.Logger()
	ctx := logging.WithLogger(cmd.Context(), logger)

	settings := flags.apply(cmd, app.Settings())
	cfg, err := settings.PipelineConfig()
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(string(output.DetectFormat(app.OutputFormat())))
	if err != nil {
		return err
	}
	if settings.Top < 0 {
		return errors.NewValidationError("top", settings.Top, "must not be negative")
	}

	run, err := ingest.New(cfg).Run(ctx, path)
	if err != nil {
		return err
	}
	months, err := selectMonths(run, flags.Month)
	if err != nil {
		return err
	}
	logger.Info().Str("run_id", run.ID).Int("months", len(months)).Dur("duration", run.Duration).Msg("Merge finished")

	view := scores.View{Filter: flags.Filter, Top: settings.Top}
	layout := settings.Layout()
	stderr := alerts.NewFormatWriter(cmd.ErrOrStderr(), output.FormatTable)
	if app.NoColor() {
		stderr.WithConfig(alerts.WriterConfig{ShowDetails: true})
	}

	if err := writeExports(ctx, stderr, flags, settings.ExportTemplate, layout, months); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case output.FormatJSON, output.FormatYAML:
		return output.NewFormatter(format).Format(out, report(run, months, view))
	case output.FormatCSV:
		return writeCSV(out, stderr, run, months, view, layout)
	default:
		return writeTables(out, stderr, format, run, months, view, layout)
	}
}

// selectMonths returns every month of the run, or only the named one.
func selectMonths(run *ingest.Run, name string) ([]ingest.MonthResult, error) {
	if name == "" {
		return run.Months, nil
	}
	m, ok := run.Month(name)
	if !ok {
		return nil, errors.NewNotFoundError("month", name)
	}
	return []ingest.MonthResult{*m}, nil
}

func report(run *ingest.Run, months []ingest.MonthResult, view scores.View) Report {
	r := Report{RunID: run.ID, Months: make([]MonthReport, 0, len(months)), Issues: run.Issues}
	if r.Issues == nil {
		r.Issues = []ingest.Issue{}
	}
	for _, m := range months {
		mr := MonthReport{Month: m.Month, Files: m.Files, Issues: m.Issues}
		if mr.Issues == nil {
			mr.Issues = []ingest.Issue{}
		}
		if m.Table != nil {
			doc := m.Table.Document(view.Apply(m.Table))
			mr.Table = &doc
		}
		r.Months = append(r.Months, mr)
	}
	return r
}

func writeTables(w io.Writer, alertsOut alerts.Writer, format output.Format, run *ingest.Run, months []ingest.MonthResult, view scores.View, layout scores.Layout) error {
	for _, issue := range run.Issues {
		if err := alertsOut.WriteAlert(alerts.FromIssue(issue)); err != nil {
			return err
		}
	}

	for i, m := range months {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if m.Table == nil {
			fmt.Fprintf(w, "%s: no valid data\n", m.Month)
		} else {
			rows := view.Apply(m.Table)
			fmt.Fprintf(w, "%s: %d of %d entities, %d categories\n", m.Month, len(rows), len(m.Table.Rows), len(m.Table.Categories))
			if err := output.FormatMonth(w, format, m.Table, rows, layout); err != nil {
				return err
			}
		}
		for _, issue := range m.Issues {
			if err := alertsOut.WriteAlert(alerts.FromIssue(issue)); err != nil {
				return err
			}
		}
	}

	if len(months) > 1 {
		fmt.Fprintln(w)
		partial := *run
		partial.Months = months
		return output.NewFormatter(output.FormatTable).Format(w, table.RunToTableData(&partial))
	}
	return nil
}

// writeCSV prints a single month in the export layout. Several months
// would produce concatenated headers, so a month must be chosen.
func writeCSV(w io.Writer, alertsOut alerts.Writer, run *ingest.Run, months []ingest.MonthResult, view scores.View, layout scores.Layout) error {
	if len(months) != 1 {
		return errors.NewValidationError("format", "csv", "csv output needs --month when the input holds several months")
	}
	m := months[0]
	for _, issue := range append(append([]ingest.Issue{}, run.Issues...), m.Issues...) {
		if err := alertsOut.WriteAlert(alerts.FromIssue(issue)); err != nil {
			return err
		}
	}
	if m.Table == nil {
		return &errors.EmptyResultError{Month: m.Month}
	}
	return export.WriteCSV(w, m.Table, view.Apply(m.Table), layout)
}

func writeExports(ctx context.Context, alertsOut alerts.Writer, flags *Flags, template string, layout scores.Layout, months []ingest.MonthResult) error {
	var tables []*scores.MonthTable
	for _, m := range months {
		if m.Table != nil {
			tables = append(tables, m.Table)
		}
	}

	if flags.ExportDir != "" {
		for _, t := range tables {
			path, err := export.WriteMonthFile(flags.ExportDir, template, t, layout)
			if err != nil {
				return err
			}
			if err := alertsOut.WriteAlert(alerts.NewSuccess("exported " + path)); err != nil {
				return err
			}
		}
	}

	if flags.SQLite != "" {
		if err := export.WriteSQLite(ctx, filepath.Clean(flags.SQLite), tables); err != nil {
			return err
		}
		msg := fmt.Sprintf("wrote %d months to %s", len(tables), flags.SQLite)
		if err := alertsOut.WriteAlert(alerts.NewSuccess(msg)); err != nil {
			return err
		}
	}
	return nil
}
