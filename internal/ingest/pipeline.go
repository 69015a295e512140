package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/scoremerge/pkg/constants"
	"github.com/agentstation/scoremerge/pkg/errors"
	"github.com/agentstation/scoremerge/pkg/logging"
	"github.com/agentstation/scoremerge/pkg/scores"
)

// Config controls a pipeline run.
type Config struct {
	Options scores.Options
	Reader  Reader

	// Workers is the number of month folders processed at once.
	Workers int

	// MetadataPath optionally names the registration metadata file.
	MetadataPath string
	// MetadataAliases extend the header aliases used for the metadata file.
	MetadataAliases scores.Aliases
}

// MonthResult is the outcome of one month folder.
type MonthResult struct {
	Month     string
	Files     int
	Table     *scores.MonthTable
	Unmatched int
	Issues    []Issue
}

// Run is the outcome of one pipeline invocation.
type Run struct {
	ID       string
	Months   []MonthResult
	Issues   []Issue
	Metadata *scores.Metadata
	Duration time.Duration
}

// AllIssues returns run level issues followed by each month's, in month
// order.
func (r *Run) AllIssues() []Issue {
	issues := append([]Issue(nil), r.Issues...)
	for _, m := range r.Months {
		issues = append(issues, m.Issues...)
	}
	return issues
}

// Month looks up a month result by folder name.
func (r *Run) Month(name string) (*MonthResult, bool) {
	for i := range r.Months {
		if r.Months[i].Month == name {
			return &r.Months[i], true
		}
	}
	return nil, false
}

// Tables returns the month tables that produced data, in month order.
func (r *Run) Tables() []*scores.MonthTable {
	var tables []*scores.MonthTable
	for _, m := range r.Months {
		if m.Table != nil {
			tables = append(tables, m.Table)
		}
	}
	return tables
}

// Pipeline reads month folders and builds their unified tables.
type Pipeline struct {
	cfg Config
}

// New creates a pipeline. A zero worker count uses the default.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = constants.DefaultWorkers
	}
	if cfg.Workers > constants.MaxWorkers {
		cfg.Workers = constants.MaxWorkers
	}
	return &Pipeline{cfg: cfg}
}

// Run processes every month under path. path is either a directory of
// month folders or a zip archive of one; archives are unpacked into a
// per-run scratch directory that is removed before Run returns.
func (p *Pipeline) Run(ctx context.Context, path string) (*Run, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.WrapIO("stat", path, err)
	}
	if info.IsDir() {
		return p.run(ctx, uuid.NewString(), path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return nil, errors.NewValidationError("path", path, "must be a directory or a .zip archive")
	}

	arena, err := NewArena()
	if err != nil {
		return nil, err
	}
	defer func() { _ = arena.Close() }()

	ctx = logging.WithRunID(ctx, arena.ID)
	root, err := arena.ExtractFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, arena.ID, root)
}

// RunArchive processes a zip archive held in memory or on an open file.
func (p *Pipeline) RunArchive(ctx context.Context, name string, r io.ReaderAt, size int64) (*Run, error) {
	arena, err := NewArena()
	if err != nil {
		return nil, err
	}
	defer func() { _ = arena.Close() }()

	ctx = logging.WithRunID(ctx, arena.ID)
	root, err := arena.Extract(ctx, name, r, size)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, arena.ID, root)
}

func (p *Pipeline) run(ctx context.Context, id, root string) (*Run, error) {
	if logging.RunID(ctx) == "" {
		ctx = logging.WithRunID(ctx, id)
	}
	logger := logging.FromContext(ctx)
	start := time.Now()

	months, err := DiscoverMonths(root)
	if err != nil {
		return nil, err
	}

	run := &Run{ID: id}
	run.Metadata, run.Issues = p.LoadMetadata(ctx)

	logger.Info().Int("months", len(months)).Int("workers", p.cfg.Workers).Msg("processing month folders")

	run.Months = make([]MonthResult, len(months))
	sem := make(chan struct{}, p.cfg.Workers)
	var wg sync.WaitGroup

	for i, m := range months {
		wg.Add(1)
		go func(i int, m Month) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				run.Months[i] = MonthResult{Month: m.Name, Files: len(m.Files)}
				return
			}
			defer func() { <-sem }()

			run.Months[i] = p.ProcessMonth(ctx, m, run.Metadata)
		}(i, m)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrCanceled, err)
	}

	run.Duration = time.Since(start)
	logger.Info().
		Int("months", len(run.Months)).
		Int("issues", len(run.AllIssues())).
		Dur("duration", run.Duration).
		Msg("run complete")
	return run, nil
}

// LoadMetadata reads the configured metadata file once. Problems are
// returned as issues and disable the enrichment.
func (p *Pipeline) LoadMetadata(ctx context.Context) (*scores.Metadata, []Issue) {
	path := p.cfg.MetadataPath
	if path == "" {
		return nil, nil
	}
	name := filepath.Base(path)
	logger := logging.FromContext(logging.WithFile(ctx, name))

	table, err := p.cfg.Reader.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Msg("metadata skipped")
		return nil, []Issue{{Kind: KindMetadataSkipped, File: name, Message: "metadata file could not be read, registration dates omitted", Detail: err.Error(), Err: err}}
	}

	meta, err := scores.LoadMetadata(name, table.Header, table.Records, p.cfg.Options.IDMode, p.cfg.MetadataAliases)
	if err != nil {
		logger.Warn().Err(err).Msg("metadata skipped")
		return nil, []Issue{{Kind: KindMetadataSkipped, File: name, Message: err.Error() + ", registration dates omitted", Err: err}}
	}

	logger.Debug().Int("entities", meta.Len()).Int("invalid_dates", meta.InvalidDates()).Msg("metadata loaded")
	return meta, nil
}

// ProcessMonth reads one month folder, file by file, and merges the
// result. meta may be nil.
func (p *Pipeline) ProcessMonth(ctx context.Context, m Month, meta *scores.Metadata) MonthResult {
	ctx = logging.WithMonth(ctx, m.Name)
	logger := logging.FromContext(ctx)
	result := MonthResult{Month: m.Name, Files: len(m.Files)}

	var tables []*scores.CategoryTable
	for _, path := range m.Files {
		if ctx.Err() != nil {
			return result
		}
		table, issue := p.readCategory(ctx, m.Name, path)
		if issue != nil {
			result.Issues = append(result.Issues, *issue)
			continue
		}
		tables = append(tables, table)
	}

	merged, err := scores.Merge(m.Name, tables, p.cfg.Options)
	if err != nil {
		msg := "no valid data"
		if len(m.Files) == 0 {
			msg = "no source files"
		}
		logger.Warn().Msg(msg)
		result.Issues = append(result.Issues, Issue{Kind: KindEmptyResult, Month: m.Name, Message: msg, Err: err})
		return result
	}

	for _, c := range merged.Collisions {
		result.Issues = append(result.Issues, Issue{
			Kind:    KindLabelCollision,
			Month:   m.Name,
			File:    c.Source,
			Message: fmt.Sprintf("category %q already used by %s, renamed to %q", c.Label, c.Conflict, c.Renamed),
		})
	}

	if meta != nil {
		result.Unmatched = merged.JoinMetadata(meta)
		if result.Unmatched > 0 {
			result.Issues = append(result.Issues, Issue{
				Kind:    KindMetadataUnmatched,
				Month:   m.Name,
				Message: fmt.Sprintf("%d of %d entities not found in metadata", result.Unmatched, len(merged.Rows)),
			})
		}
	}

	result.Table = merged
	logger.Debug().
		Int("files", len(tables)).
		Int("entities", len(merged.Rows)).
		Int("unreconciled", merged.Unreconciled()).
		Msg("month merged")
	return result
}

func (p *Pipeline) readCategory(ctx context.Context, month, path string) (*scores.CategoryTable, *Issue) {
	name := filepath.Base(path)
	logger := logging.FromContext(logging.WithFile(ctx, name))

	raw, err := p.cfg.Reader.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Msg("file skipped")
		return nil, &Issue{Kind: KindFileUnreadable, Month: month, File: name, Message: "could not be read", Detail: err.Error(), Err: err}
	}

	table, err := p.cfg.Options.NormalizeFile(name, raw.Header, raw.Records)
	if err != nil {
		logger.Warn().Err(err).Msg("file skipped")
		return nil, &Issue{Kind: KindSchemaMismatch, Month: month, File: name, Message: schemaMessage(err), Err: err}
	}
	return table, nil
}

func schemaMessage(err error) string {
	var se *errors.SchemaError
	if errors.As(err, &se) {
		return "missing required columns: " + strings.Join(se.Missing, ", ")
	}
	return err.Error()
}
