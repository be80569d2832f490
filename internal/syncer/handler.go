package syncer

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ballbuild/pos/internal/platform/httpx"
)

// Handler exposes the sync controls over HTTP.
type Handler struct {
	client *Client
}

func NewHandler(client *Client) *Handler {
	return &Handler{client: client}
}

type settingsRequest struct {
	Enabled     *bool   `json:"enabled"`
	EndpointURL *string `json:"endpointUrl"`
}

// MountRoutes registers the sync endpoints. All of them are admin-only;
// the caller supplies the gating middleware.
func (h *Handler) MountRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/", h.status)
		r.Put("/settings", h.updateSettings)
		r.Post("/push", h.push)
		r.Post("/pull", h.pull)
		r.Get("/probe", h.probe)
	})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.client.Snapshot())
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if req.EndpointURL != nil {
		h.client.SetEndpoint(*req.EndpointURL)
	}
	if req.Enabled != nil {
		h.client.SetEnabled(*req.Enabled)
	}
	httpx.JSON(w, http.StatusOK, h.client.Snapshot())
}

func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Push(r.Context()); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.client.Snapshot())
}

func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Pull(r.Context()); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.client.Snapshot())
}

func (h *Handler) probe(w http.ResponseWriter, r *http.Request) {
	message, err := h.client.Probe(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": message})
}
