package users

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/talentbridge/sales-crm-platform/internal/api/respond"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// Handler handles HTTP requests for user accounts.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a new users handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the user management endpoints. The router gates the whole
// subtree behind the Admin role.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Post("/deactivate", h.Deactivate)
	})
	return r
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, u)
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
	u, err := h.svc.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.svc.Update(r.Context(), chi.URLParam(r, "userID"), &req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Deactivate(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

// AuthHandler exchanges user credentials for a signed JWT.
type AuthHandler struct {
	svc    *Service
	secret string
	ttl    time.Duration
	logger *logging.Logger
}

// NewAuthHandler creates the login handler.
func NewAuthHandler(svc *Service, secret string, ttl time.Duration, logger *logging.Logger) *AuthHandler {
	if logger == nil {
		logger = logging.Default().Component("auth")
	}
	return &AuthHandler{svc: svc, secret: secret, ttl: ttl, logger: logger}
}

// Routes mounts the login endpoint; it sits outside the auth middleware.
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	return r
}

type loginRequest struct {
	Email       string `json:"email"`
	AppPassword string `json:"app_password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.svc.Authenticate(r.Context(), req.Email, req.AppPassword)
	if err != nil {
		respond.Error(w, err)
		return
	}
	token, err := IssueToken(h.secret, u, h.ttl)
	if err != nil {
		h.logger.Error("failed to sign token", "error", err)
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	h.logger.Info("login", "user_id", u.ID, "role", u.Role)
	respond.JSON(w, http.StatusOK, loginResponse{Token: token, User: u})
}
