package health

import (
	"log/slog"
	"net/http"

	apphealth "3tcapital/ms_service_documents/internal/application/health"
	corehealth "3tcapital/ms_service_documents/internal/core/health"
	httperrors "3tcapital/ms_service_documents/internal/infrastructure/http"
)

// Handler serves GET /health.
type Handler struct {
	service *apphealth.Service
	log     *slog.Logger
}

func NewHandler(service *apphealth.Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Status answers 200 when every dependency is up and 503 otherwise.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.service.Status(r.Context())

	code := http.StatusOK
	if status.Status != corehealth.StatusUp {
		code = http.StatusServiceUnavailable
	}
	httperrors.WriteJSON(w, code, status, h.log)
}
