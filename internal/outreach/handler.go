package outreach

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/talentbridge/sales-crm-platform/internal/api/respond"
	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// Handler handles HTTP requests for outreach dispatch and delivery tracking.
type Handler struct {
	dispatcher *Dispatcher
	status     *StatusStore
}

func NewHandler(dispatcher *Dispatcher, status *StatusStore) *Handler {
	return &Handler{dispatcher: dispatcher, status: status}
}

// Routes mounts the outreach endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/dispatch", h.Dispatch)
	r.Get("/deliveries/{ref}", h.GetDelivery)
	r.Post("/deliveries/{ref}/advance", h.AdvanceDelivery)
	return r
}

func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	delivery, err := h.dispatcher.Dispatch(r.Context(), &req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, delivery)
}

func (h *Handler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if h.status == nil {
		respond.Error(w, faults.NotFound("delivery", ref))
		return
	}
	d, err := h.status.Get(r.Context(), ref)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, d)
}

// AdvanceDelivery simulates a provider status callback (delivered, opened,
// read) until a real webhook integration lands.
func (h *Handler) AdvanceDelivery(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if h.status == nil {
		respond.Error(w, faults.NotFound("delivery", ref))
		return
	}
	d, err := h.status.Advance(r.Context(), ref)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, d)
}
