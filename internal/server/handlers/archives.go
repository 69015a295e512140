package handlers

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/agentstation/scoremerge/internal/ingest"
	"github.com/agentstation/scoremerge/internal/server/response"
	"github.com/agentstation/scoremerge/pkg/constants"
	"github.com/agentstation/scoremerge/pkg/errors"
)

// RunPayload is the API representation of an archive run.
type RunPayload struct {
	RunID  string         `json:"run_id"`
	Months []MonthPayload `json:"months"`
	Issues []ingest.Issue `json:"issues"`
}

// HandleArchive handles POST /api/v1/archives?filter=&top=. The body is
// either a multipart form with a "file" field or the raw zip bytes. Every
// upload runs in its own scratch arena.
func (h *Handlers) HandleArchive(w http.ResponseWriter, r *http.Request) {
	view, err := parseView(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	name, data, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "archives are limited to 64 MB")
			return
		}
		response.BadRequest(w, "Invalid upload", err.Error())
		return
	}

	run, err := ingest.New(h.deps.Pipeline).RunArchive(r.Context(), name, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	out := RunPayload{RunID: run.ID, Months: make([]MonthPayload, 0, len(run.Months)), Issues: run.Issues}
	if out.Issues == nil {
		out.Issues = []ingest.Issue{}
	}
	for i := range run.Months {
		out.Months = append(out.Months, payload(&run.Months[i], view))
	}
	response.OK(w, out)
}

func readUpload(r *http.Request) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		return "upload.zip", data, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	return filepath.Base(header.Filename), data, err
}
