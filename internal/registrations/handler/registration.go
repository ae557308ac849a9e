package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"confreg/internal/registrations/service"
	apperrors "confreg/pkg/errors"
	httputil "confreg/pkg/http"
	"confreg/pkg/logger"
	"confreg/pkg/middleware"
	"confreg/pkg/model"
)

const (
	RegisterPath = "/api/register"

	MsgInvalidBody = "Request body must be a valid JSON object"
	MsgTooLarge    = "Request body too large"
	bodyField      = "body"
)

type RegistrationHandler struct {
	service service.RegistrationService
	log     *logger.Logger
	wrap    func(http.Handler) http.Handler
}

// NewRegistrationHandler serves POST /api/register. Route specific
// middleware (content type, body size, idempotency, rate limit) is passed
// in as wrap and applied only to that route.
func NewRegistrationHandler(service service.RegistrationService, log *logger.Logger, wrap ...func(http.Handler) http.Handler) *RegistrationHandler {
	h := &RegistrationHandler{
		service: service,
		log:     log,
		wrap:    func(next http.Handler) http.Handler { return next },
	}
	if len(wrap) > 0 {
		h.wrap = chain(wrap...)
	}
	return h
}

func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegistrationRequest
	if err := decodeRequest(r.Body, &req); err != nil {
		h.log.Warn("Rejected registration body",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err,
		)
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	result, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Register", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Register", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RegistrationHandler) RegisterRoutes(router *httprouter.Router) {
	router.Handler(http.MethodPost, RegisterPath, h.wrap(adapt(h.Register)))
}

// decodeRequest maps body problems onto the same 422 shape as field
// validation. A type mismatch is reported against the offending field.
func decodeRequest(body io.Reader, req *model.RegistrationRequest) error {
	err := json.NewDecoder(body).Decode(req)
	if err == nil {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperrors.RequestTooLarge(MsgTooLarge)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperrors.Validation(service.MsgValidation, map[string][]string{
			typeErr.Field: {"Invalid value for " + typeErr.Field},
		})
	}

	return apperrors.Validation(service.MsgValidation, map[string][]string{
		bodyField: {MsgInvalidBody},
	})
}

func adapt(h httprouter.Handle) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h(w, r, httprouter.ParamsFromContext(r.Context()))
	})
}

// chain applies mws so that the first one is outermost.
func chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
