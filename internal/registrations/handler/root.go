package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"confreg/pkg/config"
	httputil "confreg/pkg/http"
	"confreg/pkg/logger"
)

const APIVersion = "1.0.0"

type InfoResponse struct {
	Message  string `json:"message"`
	Version  string `json:"version"`
	Health   string `json:"health"`
	Register string `json:"register"`
	Links    *Links `json:"links,omitempty"`
}

// Links are the community channels the frontend shows after sign-up.
type Links struct {
	WhatsAppGroup string `json:"whatsapp_group,omitempty"`
	Facebook      string `json:"facebook,omitempty"`
	YouTube       string `json:"youtube,omitempty"`
}

type RootHandler struct {
	info InfoResponse
	log  *logger.Logger
}

func NewRootHandler(cfg *config.Config) *RootHandler {
	info := InfoResponse{
		Message:  cfg.ConferenceName + " Registration API",
		Version:  APIVersion,
		Health:   HealthPath,
		Register: RegisterPath,
	}
	links := Links{
		WhatsAppGroup: cfg.WhatsAppGroupLink,
		Facebook:      cfg.FacebookURL,
		YouTube:       cfg.YouTubeURL,
	}
	if links != (Links{}) {
		info.Links = &links
	}
	return &RootHandler{info: info, log: cfg.Log}
}

func (h *RootHandler) Root(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.info); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Root", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RootHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/", h.Root)
}
