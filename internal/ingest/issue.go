// Package ingest turns month folders on disk (or inside an archive) into
// unified month tables. It reads delimited text and Excel sources, runs
// them through the scores core and collects the per-file and per-month
// feedback the caller must surface.
package ingest

import "fmt"

// Kind classifies a non-fatal problem found during a run.
type Kind string

// Issue kinds.
const (
	KindFileUnreadable    Kind = "file_unreadable"
	KindSchemaMismatch    Kind = "schema_mismatch"
	KindLabelCollision    Kind = "label_collision"
	KindEmptyResult       Kind = "empty_result"
	KindMetadataSkipped   Kind = "metadata_skipped"
	KindMetadataUnmatched Kind = "metadata_unmatched"
)

// Issue is one piece of user feedback. None of them abort a run. Detail
// carries the underlying cause for issues whose Message is generic.
type Issue struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Month   string `json:"month,omitempty" yaml:"month,omitempty"`
	File    string `json:"file,omitempty" yaml:"file,omitempty"`
	Message string `json:"message" yaml:"message"`
	Detail  string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Err     error  `json:"-" yaml:"-"`
}

// String renders the issue for terminals.
func (i Issue) String() string {
	switch {
	case i.Month != "" && i.File != "":
		return fmt.Sprintf("[%s] %s: %s", i.Month, i.File, i.Message)
	case i.Month != "":
		return fmt.Sprintf("[%s] %s", i.Month, i.Message)
	case i.File != "":
		return fmt.Sprintf("%s: %s", i.File, i.Message)
	default:
		return i.Message
	}
}
