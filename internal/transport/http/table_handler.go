package http

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"p2pcli/internal/dataprocessing"
	apierrors "p2pcli/internal/errors"
	"p2pcli/internal/exporter"
	"p2pcli/internal/services"
)

// TableHandler serves the session's derived tables and accepts snapshot
// uploads.
type TableHandler struct {
	service        *services.TableService
	pipeline       *dataprocessing.Pipeline
	workbook       *exporter.WorkbookWriter
	logger         *slog.Logger
	maxUploadBytes int64
	now            func() time.Time
}

// NewTableHandler creates a table handler. The clock is injectable for
// deterministic tests; nil falls back to time.Now.
func NewTableHandler(
	service *services.TableService,
	pipeline *dataprocessing.Pipeline,
	workbook *exporter.WorkbookWriter,
	logger *slog.Logger,
	maxUploadBytes int64,
	now func() time.Time,
) *TableHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 64 << 20
	}
	return &TableHandler{
		service:        service,
		pipeline:       pipeline,
		workbook:       workbook,
		logger:         logger.With(slog.String("component", "table_handler")),
		maxUploadBytes: maxUploadBytes,
		now:            now,
	}
}

// Routes returns the table routes.
func (h *TableHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/snapshot", h.UploadSnapshot)
	r.Get("/tables", h.ListTables)
	r.Get("/tables/{name}", h.GetTable)
	r.Get("/report.xlsx", h.DownloadReport)

	return r
}

// snapshotSummary is the upload response body.
type snapshotSummary struct {
	SnapshotID        string    `json:"snapshot_id"`
	GeneratedAt       time.Time `json:"generated_at"`
	LineCount         int       `json:"line_count"`
	VendorCount       int       `json:"vendor_count"`
	DelayedPOs        int       `json:"delayed_pos"`
	OverbillingCases  int       `json:"overbilling_cases"`
	UnderbillingCases int       `json:"underbilling_cases"`
	Tables            []string  `json:"tables"`
}

// UploadSnapshot handles POST /snapshot: it runs the pipeline over the
// uploaded workbook and replaces the session result. A schema mismatch
// blocks everything downstream and reports the missing columns.
func (h *TableHandler) UploadSnapshot(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		apierrors.WriteError(w, apierrors.ErrValidation("snapshot", "multipart form with a snapshot file is required"))
		return
	}

	file, header, err := r.FormFile("snapshot")
	if err != nil {
		apierrors.WriteError(w, apierrors.ErrValidation("snapshot", "snapshot file field is missing"))
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "processing uploaded snapshot",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	result, err := h.pipeline.RunReader(r.Context(), file, h.now())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "snapshot processing failed",
			slog.String("request_id", reqID),
			slog.String("error", err.Error()))

		var appErr *apierrors.AppError
		if stderrors.As(err, &appErr) && appErr.Type == apierrors.ErrTypeSchema {
			apierrors.WriteError(w, apierrors.SchemaMismatchError(appErr))
			return
		}
		apierrors.WriteError(w, apierrors.NewWithDetails(
			http.StatusUnprocessableEntity,
			"SNAPSHOT_UNREADABLE",
			"Uploaded file could not be processed",
			err.Error(),
		))
		return
	}

	h.service.Load(result)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, snapshotSummary{
		SnapshotID:        result.SnapshotID,
		GeneratedAt:       result.GeneratedAt,
		LineCount:         len(result.Lines),
		VendorCount:       len(result.VendorSpend),
		DelayedPOs:        len(result.DelayedPOs),
		OverbillingCases:  len(result.Overbilling),
		UnderbillingCases: len(result.Underbilling),
		Tables:            h.service.TableNames(),
	})
}

// ListTables handles GET /tables.
func (h *TableHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"tables": h.service.TableNames(),
	})
}

// GetTable handles GET /tables/{name}.
func (h *TableHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rows, err := h.service.Table(name)
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrNoSnapshot):
			apierrors.WriteError(w, apierrors.ErrNoSnapshot)
		case stderrors.Is(err, services.ErrTableNotFound):
			apierrors.WriteError(w, apierrors.NotFoundError(fmt.Sprintf("table %q", name)))
		default:
			apierrors.WriteError(w, apierrors.ErrInternalServer)
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"table": name,
		"rows":  rows,
	})
}

// DownloadReport handles GET /report.xlsx: the one-shot bulk export with
// one sheet per table.
func (h *TableHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result()
	if err != nil {
		apierrors.WriteError(w, apierrors.ErrNoSnapshot)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="P2P_Analysis_Report.xlsx"`)

	if err := h.workbook.WriteTo(w, result); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to stream report",
			slog.String("error", err.Error()))
	}
}
