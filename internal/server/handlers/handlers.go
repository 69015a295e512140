// Package handlers provides HTTP request handlers for the scoremerge API.
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/scoremerge/internal/ingest"
	"github.com/agentstation/scoremerge/internal/server/cache"
	"github.com/agentstation/scoremerge/pkg/errors"
	"github.com/agentstation/scoremerge/pkg/scores"
)

// Deps are the dependencies of the handlers.
type Deps struct {
	Pipeline       ingest.Config
	Layout         scores.Layout
	ExportTemplate string
	DataDir        string
	Cache          *cache.Cache
	Logger         *zerolog.Logger
	Version        string
}

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	deps      Deps
	startTime time.Time
}

// New creates a new Handlers instance.
func New(deps Deps) *Handlers {
	if deps.Logger == nil {
		nop := zerolog.Nop()
		deps.Logger = &nop
	}
	return &Handlers{deps: deps, startTime: time.Now()}
}

// MonthPayload is the API representation of one processed month.
type MonthPayload struct {
	Month  string           `json:"month"`
	Files  int              `json:"files"`
	Table  *scores.Document `json:"table"`
	Issues []ingest.Issue   `json:"issues"`
}

func payload(res *ingest.MonthResult, view scores.View) MonthPayload {
	p := MonthPayload{Month: res.Month, Files: res.Files, Issues: res.Issues}
	if p.Issues == nil {
		p.Issues = []ingest.Issue{}
	}
	if res.Table != nil {
		doc := res.Table.Document(view.Apply(res.Table))
		p.Table = &doc
	}
	return p
}

// parseView reads the filter and top query parameters. A missing top
// returns every row.
func parseView(r *http.Request) (scores.View, error) {
	q := r.URL.Query()
	view := scores.View{Filter: strings.TrimSpace(q.Get("filter"))}
	if raw := q.Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return view, errors.NewValidationError("top", raw, "must be a non-negative integer")
		}
		view.Top = n
	}
	return view, nil
}
