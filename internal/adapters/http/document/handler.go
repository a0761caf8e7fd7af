package document

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	appdocument "3tcapital/ms_service_documents/internal/application/document"
	"3tcapital/ms_service_documents/internal/core/audit"
	"3tcapital/ms_service_documents/internal/core/document"
	ctxutil "3tcapital/ms_service_documents/internal/infrastructure/context"
	httperrors "3tcapital/ms_service_documents/internal/infrastructure/http"
)

const defaultMaxBodyBytes = 2 << 20

// Generator is the part of the document service the handler drives.
type Generator interface {
	GenerateByID(ctx context.Context, kind document.Kind, id string) (*appdocument.Result, error)
	GenerateFromRecord(ctx context.Context, kind document.Kind, record map[string]any) (*appdocument.Result, error)
	History(ctx context.Context, limit int) ([]audit.GenerationLog, error)
}

// Handler exposes PDF generation over HTTP.
type Handler struct {
	service      Generator
	maxBodyBytes int64
	log          *slog.Logger
}

// NewHandler creates the handler. maxBodyBytes <= 0 selects 2 MiB.
func NewHandler(service Generator, maxBodyBytes int64, log *slog.Logger) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &Handler{service: service, maxBodyBytes: maxBodyBytes, log: log}
}

// HistoryResponse is the body of GET /api/v1/documents/history.
type HistoryResponse struct {
	Total int                   `json:"total"`
	Data  []audit.GenerationLog `json:"data"`
}

// Routes mounts the document endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/history", h.History)
	r.Get("/{kind}/{id}/pdf", h.DownloadByID)
	r.Post("/{kind}/pdf", h.GenerateFromBody)
}

// DownloadByID handles GET /api/v1/documents/{kind}/{id}/pdf.
func (h *Handler) DownloadByID(w http.ResponseWriter, r *http.Request) {
	kind, err := document.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	result, err := h.service.GenerateByID(r.Context(), kind, chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writePDF(w, r, result)
}

// GenerateFromBody handles POST /api/v1/documents/{kind}/pdf. The body is a
// raw backend record; numbers are kept as written so amounts are not
// rounded through float64.
func (h *Handler) GenerateFromBody(w http.ResponseWriter, r *http.Request) {
	kind, err := document.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	dec.UseNumber()

	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httperrors.WriteError(w, http.StatusRequestEntityTooLarge, "Error de Validación", []string{"El cuerpo de la petición excede el tamaño permitido"}, h.log)
			return
		}
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición no es un JSON válido"}, h.log)
		return
	}
	if record == nil {
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"El cuerpo de la petición debe ser un objeto JSON"}, h.log)
		return
	}

	result, err := h.service.GenerateFromRecord(r.Context(), kind, record)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.writePDF(w, r, result)
}

// History handles GET /api/v1/documents/history?limit=N.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"limit debe ser un entero positivo"}, h.log)
			return
		}
		limit = n
	}

	logs, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.log.Error("Failed to list generation history",
			"correlation_id", ctxutil.GetCorrelationID(r.Context()),
			"error", err,
		)
		httperrors.WriteError(w, http.StatusInternalServerError, "Error Interno del Servidor", []string{"No se pudo consultar el historial"}, h.log)
		return
	}
	httperrors.WriteJSON(w, http.StatusOK, HistoryResponse{Total: len(logs), Data: logs}, h.log)
}

func (h *Handler) writePDF(w http.ResponseWriter, r *http.Request, result *appdocument.Result) {
	disposition := "attachment"
	if r.URL.Query().Get("disposition") == "inline" {
		disposition = "inline"
	}

	header := w.Header()
	header.Set("Content-Type", result.File.ContentType)
	header.Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": result.File.Name}))
	header.Set("Content-Length", strconv.Itoa(len(result.File.Bytes)))
	header.Set("X-Document-Number", result.Document.Number)
	header.Set("X-Document-Pages", strconv.Itoa(result.File.Pages))
	header.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(result.File.Bytes); err != nil {
		h.log.Warn("Failed to write PDF response",
			"correlation_id", ctxutil.GetCorrelationID(r.Context()),
			"file", result.File.Name,
			"error", err,
		)
	}
}

// handleError maps pipeline errors to status codes. Generation failures
// always answer with the same generic message; the cause is only logged.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	attrs := []any{
		"correlation_id", ctxutil.GetCorrelationID(r.Context()),
		"path", r.URL.Path,
		"error", err,
	}

	switch {
	case errors.Is(err, document.ErrInvalidKind):
		h.log.Warn("Invalid document kind", attrs...)
		httperrors.WriteError(w, http.StatusBadRequest, "Error de Validación", []string{"Tipo de documento no válido, use quotation o invoice"}, h.log)
	case errors.Is(err, document.ErrRecordNotFound):
		h.log.Warn("Document record not found", attrs...)
		httperrors.WriteError(w, http.StatusNotFound, "Documento no encontrado", []string{"No existe un registro con el identificador indicado"}, h.log)
	case errors.Is(err, document.ErrSourceUnavailable):
		h.log.Error("Document source unavailable", attrs...)
		httperrors.WriteError(w, http.StatusBadGateway, "Error del Proveedor", []string{"Servicio de registros no disponible"}, h.log)
	case errors.Is(err, context.DeadlineExceeded):
		h.log.Error("Document generation timed out", attrs...)
		httperrors.WriteError(w, http.StatusGatewayTimeout, "Tiempo de espera agotado", []string{"No se pudo generar el documento, intente de nuevo"}, h.log)
	case errors.Is(err, context.Canceled):
		// The client went away; nobody reads the answer.
		h.log.Info("Document generation cancelled by client", attrs...)
	default:
		h.log.Error("Document generation failed", attrs...)
		httperrors.WriteError(w, http.StatusInternalServerError, "Error Interno del Servidor", []string{"No se pudo generar el documento, intente de nuevo"}, h.log)
	}
}
