package snapshot

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ballbuild/pos/internal/platform/httpx"
	"github.com/ballbuild/pos/internal/shared"
)

// importBodyLimit caps an uploaded snapshot at 16 MiB.
const importBodyLimit = 16 << 20

// Handler exposes export, import and clear-all over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers the snapshot endpoints, all admin-only.
func (h *Handler) MountRoutes(r chi.Router, admin func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(admin)
		r.Get("/export", h.export)
		r.Post("/import", h.importSnapshot)
		r.Post("/clear", h.clear)
	})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	doc := h.service.Export()
	filename := fmt.Sprintf("pos-backup-%s.json", doc.ExportDate.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) importSnapshot(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, importBodyLimit))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", shared.ErrImportFormat, err))
		return
	}
	summary, err := h.service.Import(data)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	h.service.ClearAll()
	w.WriteHeader(http.StatusNoContent)
}
