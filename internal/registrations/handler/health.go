package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"confreg/internal/registrations/service"
	httputil "confreg/pkg/http"
	"confreg/pkg/logger"
)

const HealthPath = "/api/health"

type HealthHandler struct {
	service service.RegistrationService
	log     *logger.Logger
}

func NewHealthHandler(service service.RegistrationService, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		log:     log,
	}
}

// Health always answers 200. Degraded dependencies show up in the body.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	report := h.service.Health(r.Context())

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(HealthPath, h.Health)
}
