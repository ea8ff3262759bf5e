package leads

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/talentbridge/sales-crm-platform/internal/api/respond"
	"github.com/talentbridge/sales-crm-platform/internal/http/middleware"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// Handler handles HTTP requests for leads.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a new leads handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the lead workflow endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/bulk-assign", h.BulkAssign)
	r.Route("/{leadID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Put("/stage", h.UpdateStage)
		r.Put("/contacts", h.ReplaceContacts)
		r.Post("/contacts", h.AddContact)
		r.Put("/contacts/{contactID}", h.UpdateContact)
		r.Delete("/contacts/{contactID}", h.RemoveContact)
		r.Post("/remarks", h.AddRemark)
		r.Get("/remarks", h.ListRemarks)
		r.Delete("/remarks/{remarkID}", h.DeleteRemark)
		r.Get("/activities", h.ListActivities)
	})
	return r
}

func actorID(r *http.Request) string {
	actor, _ := middleware.ActorFromContext(r.Context())
	return actor.ID
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lead, err := h.svc.Create(r.Context(), &req, actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, lead)
}

// ListLeadsResponse is the response for listing leads.
type ListLeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Limit: 50}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 200 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}
	if stage := r.URL.Query().Get("stage"); stage != "" {
		filter.Stage = Stage(stage)
	}
	if assigned := r.URL.Query().Get("assigned_to"); assigned != "" {
		filter.AssignedTo = assigned
	}

	out, err := h.svc.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, ListLeadsResponse{
		Leads:  out,
		Count:  len(out),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.svc.Get(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, lead)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lead, err := h.svc.Update(r.Context(), chi.URLParam(r, "leadID"), &req, actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, lead)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "leadID"), actorID(r)); err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateStageRequest struct {
	Stage Stage `json:"stage"`
}

func (h *Handler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	var req updateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lead, err := h.svc.UpdateStage(r.Context(), chi.URLParam(r, "leadID"), req.Stage, actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, lead)
}

type replaceContactsRequest struct {
	PointsOfContact []PointOfContact `json:"points_of_contact"`
}

func (h *Handler) ReplaceContacts(w http.ResponseWriter, r *http.Request) {
	var req replaceContactsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lead, err := h.svc.ReplaceContacts(r.Context(), chi.URLParam(r, "leadID"), req.PointsOfContact, actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, lead)
}

func (h *Handler) AddContact(w http.ResponseWriter, r *http.Request) {
	var poc PointOfContact
	if err := json.NewDecoder(r.Body).Decode(&poc); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lead, err := h.svc.AddContact(r.Context(), chi.URLParam(r, "leadID"), poc, actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, lead)
}

func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var poc PointOfContact
	if err := json.NewDecoder(r.Body).Decode(&poc); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	poc.ID = chi.URLParam(r, "contactID")

	lead, err := h.svc.UpdateContact(r.Context(), chi.URLParam(r, "leadID"), poc, actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, lead)
}

func (h *Handler) RemoveContact(w http.ResponseWriter, r *http.Request) {
	lead, err := h.svc.RemoveContact(r.Context(), chi.URLParam(r, "leadID"), chi.URLParam(r, "contactID"), actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, lead)
}

func (h *Handler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	var req BulkAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.svc.BulkAssign(r.Context(), &req, actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

type addRemarkRequest struct {
	Type     RemarkType `json:"type"`
	Content  string     `json:"content"`
	FileURL  string     `json:"file_url"`
	VoiceURL string     `json:"voice_url"`
}

func (h *Handler) AddRemark(w http.ResponseWriter, r *http.Request) {
	var req addRemarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rm := &Remark{
		LeadID:   chi.URLParam(r, "leadID"),
		Type:     req.Type,
		Content:  req.Content,
		FileURL:  req.FileURL,
		VoiceURL: req.VoiceURL,
	}
	created, err := h.svc.AddRemark(r.Context(), rm, actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

func (h *Handler) ListRemarks(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListRemarks(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

func (h *Handler) DeleteRemark(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteRemark(r.Context(), chi.URLParam(r, "leadID"), chi.URLParam(r, "remarkID"), actorID(r))
	if err != nil {
		respond.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if n, err := strconv.Atoi(offsetStr); err == nil && n >= 0 {
			offset = n
		}
	}

	entries, err := h.svc.Activities(r.Context(), chi.URLParam(r, "leadID"), limit, offset)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, entries)
}
