// internal/app/features/documents/handler.go
package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tenderinsight/hub/internal/app/store/summaries"
	"github.com/tenderinsight/hub/internal/app/system/auditlog"
	"github.com/tenderinsight/hub/internal/app/system/blobstore"
	"github.com/tenderinsight/hub/internal/app/system/extract"
	"github.com/tenderinsight/hub/internal/app/system/gates"
	"github.com/tenderinsight/hub/internal/app/system/httpjson"
	"github.com/tenderinsight/hub/internal/app/system/limits"
	"github.com/tenderinsight/hub/internal/app/system/summarize"
	"github.com/tenderinsight/hub/internal/app/system/timeouts"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.uber.org/zap"
)

const defaultListLimit = 50

// Handler accepts tender document uploads, extracts their text, and
// returns an extractive summary. Originals are kept in blob storage
// when one is configured.
type Handler struct {
	Summaries *summarystore.Store
	Blobs     *blobstore.Store
	Gates     *gates.Gatekeeper
	Audit     *auditlog.Logger
	Log       *zap.Logger
}

func NewHandler(summaries *summarystore.Store, blobs *blobstore.Store, gk *gates.Gatekeeper, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Summaries: summaries,
		Blobs:     blobs,
		Gates:     gk,
		Audit:     audit,
		Log:       logger,
	}
}

// HandleExtract handles POST /api/summary/extract: a multipart upload
// under the "file" field. PDF, DOCX, and ZIP archives of either are
// accepted. Summaries are a paid-tier feature.
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	team, ok := h.Gates.TeamFromRequest(w, r)
	if !ok {
		return
	}
	if !h.Gates.AllowSummaries(w, r, team) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxDocumentUpload)
	if err := r.ParseMultipartForm(limits.MaxDocumentUpload); err != nil {
		httpjson.Error(w, http.StatusRequestEntityTooLarge, "upload too large",
			"the upload limit is "+strconv.Itoa(limits.MaxDocumentUpload>>20)+" MiB")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpjson.BadRequest(w, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpjson.ServerError(w, h.Log, "read upload", err)
		return
	}

	textContent, err := extract.FromUpload(header.Filename, data)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			httpjson.BadRequest(w, "unsupported file format; upload PDF, DOCX, or ZIP")
			return
		}
		httpjson.Error(w, http.StatusUnprocessableEntity, "could not extract text", err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "summarize upload")
	defer cancel()

	var objectKey string
	if h.Blobs != nil {
		objectKey, err = h.Blobs.Put(ctx, team.ID, header.Filename, data)
		if err != nil {
			// Blob retention is best-effort; the summary still goes out.
			h.Log.Warn("storing uploaded document failed",
				zap.String("filename", header.Filename), zap.Error(err))
			objectKey = ""
		}
	}

	summary := summarize.Summarize(textContent, summarize.DefaultMaxWords)
	saved, err := h.Summaries.Create(ctx, models.DocumentSummary{
		TeamID:      team.ID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		TextContent: textContent,
		Summary:     summary,
		WordCount:   summarize.WordCount(textContent),
		ObjectKey:   objectKey,
	})
	if err != nil {
		httpjson.ServerError(w, h.Log, "store document summary", err)
		return
	}

	h.Audit.SummaryGenerated(ctx, team.ID, "", saved.ID)
	httpjson.OK(w, saved)
}

// ServeGet handles GET /api/summary/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	team, ok := h.Gates.TeamFromRequest(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		httpjson.BadRequest(w, "document id is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get document summary")
	defer cancel()

	ds, err := h.Summaries.GetByID(ctx, id)
	if err != nil {
		if err == summarystore.ErrNotFound {
			httpjson.NotFound(w, "document summary not found")
			return
		}
		httpjson.ServerError(w, h.Log, "load document summary", err)
		return
	}
	if ds.TeamID != team.ID {
		httpjson.NotFound(w, "document summary not found")
		return
	}
	httpjson.OK(w, ds)
}

// ServeList handles GET /api/summary: the team's summaries, newest
// first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	team, ok := h.Gates.TeamFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list document summaries")
	defer cancel()

	list, err := h.Summaries.ByTeam(ctx, team.ID, defaultListLimit)
	if err != nil {
		httpjson.ServerError(w, h.Log, "list document summaries", err)
		return
	}
	httpjson.OK(w, map[string]interface{}{
		"summaries": list,
		"total":     len(list),
	})
}
