package bulkimport

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentbridge/sales-crm-platform/internal/api/respond"
	"github.com/talentbridge/sales-crm-platform/internal/http/middleware"
)

// Handler accepts CSV uploads for the lead importer.
type Handler struct {
	importer *Importer
}

func NewHandler(importer *Importer) *Handler {
	return &Handler{importer: importer}
}

// Routes mounts the import endpoint.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/leads", h.ImportLeads)
	return r
}

// ImportLeads takes the CSV either as a multipart "file" part or as the raw
// request body. The assignee comes from the query string; without one, rows
// are distributed round-robin.
func (h *Handler) ImportLeads(w http.ResponseWriter, r *http.Request) {
	var src io.Reader = r.Body
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		src = file
	}

	actor, _ := middleware.ActorFromContext(r.Context())
	sum, err := h.importer.Run(r.Context(), src, Options{
		AssigneeID: r.URL.Query().Get("assignee_id"),
	}, actor.ID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, sum)
}
