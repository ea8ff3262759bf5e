package templates

import (
	"context"

	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// Service wraps template storage with validation and rendering.
type Service struct {
	repo   Repository
	logger *logging.Logger
}

func NewService(repo Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, t *Template) (*Template, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if len(t.Placeholders) == 0 {
		t.Placeholders = Tokens(t.Subject + " " + t.Content)
	}
	if missing := UndeclaredTokens(t); len(missing) > 0 {
		s.logger.Warn("template declares fewer placeholders than it references",
			"name", t.Name, "missing", missing)
	}
	return s.repo.Create(ctx, t)
}

func (s *Service) Get(ctx context.Context, id string) (*Template, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Template, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, t *Template) (*Template, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, t)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// RenderedTemplate is the substitution result for one template.
type RenderedTemplate struct {
	TemplateID string `json:"template_id"`
	Subject    string `json:"subject,omitempty"`
	Content    string `json:"content"`
}

// RenderByID loads a template and substitutes the given values into its
// subject and content.
func (s *Service) RenderByID(ctx context.Context, id string, values map[string]string) (*RenderedTemplate, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RenderedTemplate{
		TemplateID: t.ID,
		Subject:    Render(t.Subject, values),
		Content:    Render(t.Content, values),
	}, nil
}
