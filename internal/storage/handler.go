package storage

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentbridge/sales-crm-platform/internal/api/respond"
)

// Handler exposes attachment upload and download over HTTP.
type Handler struct {
	store AttachmentStore
}

// NewHandler creates a new attachments handler.
func NewHandler(store AttachmentStore) *Handler {
	return &Handler{store: store}
}

// Routes mounts the attachment endpoints. Object keys contain slashes, so
// download and delete match the remainder of the path.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{leadID}", h.Upload)
	r.Get("/*", h.Download)
	r.Delete("/*", h.Delete)
	return r
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var (
		body        io.Reader = r.Body
		filename              = r.URL.Query().Get("filename")
		contentType           = r.Header.Get("Content-Type")
	)
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		body = file
		filename = header.Filename
		contentType = header.Header.Get("Content-Type")
	}
	if filename == "" {
		http.Error(w, "filename is required", http.StatusBadRequest)
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	att, err := h.store.Put(r.Context(), chi.URLParam(r, "leadID"), filename, contentType, body)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, att)
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	body, contentType, err := h.store.Get(r.Context(), key)
	if err != nil {
		respond.Error(w, err)
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", contentType)
	_, _ = io.Copy(w, body)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "*")); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
