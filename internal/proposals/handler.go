package proposals

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentbridge/sales-crm-platform/internal/api/respond"
	"github.com/talentbridge/sales-crm-platform/internal/http/middleware"
)

// Handler handles HTTP requests for proposals.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the proposal endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.ListByLead)
	r.Route("/{proposalID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/status", h.UpdateStatus)
		r.Post("/send", h.MarkSent)
		r.Delete("/", h.Delete)
	})
	return r
}

func actorID(r *http.Request) string {
	actor, _ := middleware.ActorFromContext(r.Context())
	return actor.ID
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.svc.Create(r.Context(), &req, actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, p)
}

func (h *Handler) ListByLead(w http.ResponseWriter, r *http.Request) {
	leadID := r.URL.Query().Get("lead_id")
	if leadID == "" {
		http.Error(w, "lead_id query parameter is required", http.StatusBadRequest)
		return
	}
	out, err := h.svc.ListByLead(r.Context(), leadID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "proposalID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

type updateStatusRequest struct {
	Status Status `json:"status"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "proposalID"), req.Status, actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

type markSentRequest struct {
	SentVia Channel `json:"sent_via"`
}

func (h *Handler) MarkSent(w http.ResponseWriter, r *http.Request) {
	var req markSentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p, err := h.svc.MarkSent(r.Context(), chi.URLParam(r, "proposalID"), req.SentVia, actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "proposalID")); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
