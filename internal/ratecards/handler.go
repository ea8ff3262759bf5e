package ratecards

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentbridge/sales-crm-platform/internal/api/respond"
	"github.com/talentbridge/sales-crm-platform/internal/http/middleware"
	"github.com/talentbridge/sales-crm-platform/internal/users"
)

// Handler handles HTTP requests for rate cards.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the rate card endpoints. Reads are open to every role;
// mutation and activation require Admin or Manager.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/active", h.GetActive)
	r.Get("/{cardID}", h.Get)
	r.Group(func(g chi.Router) {
		g.Use(middleware.RequireRoles(users.RoleAdmin, users.RoleManager))
		g.Post("/", h.Create)
		g.Put("/{cardID}", h.Update)
		g.Delete("/{cardID}", h.Delete)
		g.Post("/{cardID}/activate", h.Activate)
	})
	return r
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var rc RateCard
	if err := json.NewDecoder(r.Body).Decode(&rc); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.svc.Create(r.Context(), &rc)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rc, err := h.svc.Get(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, rc)
}

func (h *Handler) GetActive(w http.ResponseWriter, r *http.Request) {
	rc, err := h.svc.GetActive(r.Context())
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, rc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var rc RateCard
	if err := json.NewDecoder(r.Body).Decode(&rc); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	rc.ID = chi.URLParam(r, "cardID")
	updated, err := h.svc.Update(r.Context(), &rc)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	rc, err := h.svc.Activate(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, rc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "cardID")); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
