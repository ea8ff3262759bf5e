package users

import (
	"context"
	"strings"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
	"github.com/talentbridge/sales-crm-platform/internal/validation"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// Service implements user account management.
type Service struct {
	repo   Repository
	logger *logging.Logger
}

// NewService creates a new users service.
func NewService(repo Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default().Component("users")
	}
	return &Service{repo: repo, logger: logger}
}

// CreateUserRequest is the payload for creating a user account.
type CreateUserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Role        Role   `json:"role"`
	AppPassword string `json:"app_password"`
}

// Validate checks field shapes on the create payload.
func (r *CreateUserRequest) Validate() error {
	v := &faults.ValidationError{}
	if strings.TrimSpace(r.Name) == "" {
		v.Add("name", "is required")
	}
	if !validation.ValidEmail(r.Email) {
		v.Add("email", "must be a valid email address")
	}
	if !r.Role.Valid() {
		v.Add("role", "must be one of Admin, Manager, BD Executive")
	}
	if r.Phone != "" && !validation.ValidPhone(r.Phone) {
		v.Add("phone", "must contain 8 to 15 digits")
	}
	return v.OrNil()
}

// Create registers a new user account. Emails are unique across accounts.
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, faults.Conflict("user")
	}

	u := &User{
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Phone:       strings.TrimSpace(req.Phone),
		Role:        req.Role,
		AppPassword: req.AppPassword,
		Status:      StatusActive,
	}
	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", "user_id", created.ID, "role", created.Role)
	return created, nil
}

// Get returns a single user by id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all user accounts ordered by creation time.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// UpdateUserRequest carries the mutable account fields; nil means unchanged.
type UpdateUserRequest struct {
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Role        *Role   `json:"role,omitempty"`
	AppPassword *string `json:"app_password,omitempty"`
	Status      *Status `json:"status,omitempty"`
}

// Validate checks field shapes on the update payload.
func (r *UpdateUserRequest) Validate() error {
	v := &faults.ValidationError{}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		v.Add("name", "must not be empty")
	}
	if r.Role != nil && !r.Role.Valid() {
		v.Add("role", "must be one of Admin, Manager, BD Executive")
	}
	if r.Phone != nil && *r.Phone != "" && !validation.ValidPhone(*r.Phone) {
		v.Add("phone", "must contain 8 to 15 digits")
	}
	if r.Status != nil && *r.Status != StatusActive && *r.Status != StatusInactive {
		v.Add("status", "must be Active or Inactive")
	}
	return v.OrNil()
}

// Update applies the provided field changes to an existing account.
func (s *Service) Update(ctx context.Context, id string, req *UpdateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.AppPassword != nil {
		u.AppPassword = *req.AppPassword
	}
	if req.Status != nil {
		u.Status = *req.Status
	}
	return s.repo.Update(ctx, u)
}

// Deactivate flips an account to Inactive. Accounts are never deleted so
// historical assignments and audit entries keep a valid owner.
func (s *Service) Deactivate(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Status = StatusInactive
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user deactivated", "user_id", id)
	return updated, nil
}

// Authenticate verifies a login attempt against the stored app password.
// Lookup failures and bad passwords return the same error so callers can't
// probe which emails exist.
func (s *Service) Authenticate(ctx context.Context, email, appPassword string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, faults.NotPermitted("invalid credentials")
	}
	if !u.Active() {
		return nil, faults.NotPermitted("account is inactive")
	}
	if u.AppPassword == "" || u.AppPassword != appPassword {
		return nil, faults.NotPermitted("invalid credentials")
	}
	return u, nil
}
