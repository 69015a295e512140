package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentstation/scoremerge/internal/export"
	"github.com/agentstation/scoremerge/internal/ingest"
	"github.com/agentstation/scoremerge/internal/server/response"
	"github.com/agentstation/scoremerge/pkg/errors"
	"github.com/agentstation/scoremerge/pkg/logging"
)

// MonthSummary is one entry of the month listing.
type MonthSummary struct {
	Month string `json:"month"`
	Files int    `json:"files"`
}

// HandleMonths handles GET /api/v1/months.
func (h *Handlers) HandleMonths(w http.ResponseWriter, _ *http.Request) {
	months, err := h.months()
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	list := make([]MonthSummary, 0, len(months))
	for _, m := range months {
		list = append(list, MonthSummary{Month: m.Name, Files: len(m.Files)})
	}
	response.OK(w, list)
}

// HandleMonth handles GET /api/v1/months/{month}?filter=&top=.
func (h *Handlers) HandleMonth(w http.ResponseWriter, r *http.Request) {
	view, err := parseView(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	res, err := h.month(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, payload(res, view))
}

// HandleExport handles GET /api/v1/months/{month}/export. The full table
// is sent as a CSV attachment named by the export template.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	res, err := h.month(r.Context(), chi.URLParam(r, "month"))
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if res.Table == nil {
		response.ErrorFromType(w, &errors.EmptyResultError{Month: res.Month})
		return
	}

	name := export.FileName(h.deps.ExportTemplate, res.Month)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := export.WriteCSV(w, res.Table, nil, h.deps.Layout); err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Str("month", res.Month).Msg("export failed")
	}
}

func (h *Handlers) months() ([]ingest.Month, error) {
	if h.deps.Cache != nil {
		if months, ok := h.deps.Cache.Months(); ok {
			return months, nil
		}
	}
	months, err := ingest.DiscoverMonths(h.deps.DataDir)
	if err != nil {
		return nil, err
	}
	if h.deps.Cache != nil {
		h.deps.Cache.SetMonths(months)
	}
	return months, nil
}

// month processes one month folder of the data root, reusing a cached
// result while it is fresh.
func (h *Handlers) month(ctx context.Context, name string) (*ingest.MonthResult, error) {
	if h.deps.Cache != nil {
		if res, ok := h.deps.Cache.Month(name); ok {
			return res, nil
		}
	}

	months, err := h.months()
	if err != nil {
		return nil, err
	}
	var (
		month ingest.Month
		found bool
	)
	for _, m := range months {
		if m.Name == name {
			month, found = m, true
			break
		}
	}
	if !found {
		return nil, errors.NewNotFoundError("month", name)
	}

	p := ingest.New(h.deps.Pipeline)
	meta, issues := p.LoadMetadata(ctx)
	res := p.ProcessMonth(ctx, month, meta)
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrCanceled
	}
	res.Issues = append(issues, res.Issues...)

	logging.FromContext(ctx).Debug().Str("month", name).Int("issues", len(res.Issues)).Msg("month processed")
	if h.deps.Cache != nil {
		h.deps.Cache.SetMonth(name, &res)
	}
	return &res, nil
}
