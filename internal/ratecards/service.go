package ratecards

import (
	"context"

	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// Service wraps rate card storage with validation and the active-card cache.
// The cache is optional; a nil cache means every read goes to the repository.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *logging.Logger
}

func NewService(repo Repository, cache *Cache, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

func (s *Service) Create(ctx context.Context, rc *RateCard) (*RateCard, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, rc)
}

func (s *Service) Get(ctx context.Context, id string) (*RateCard, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*RateCard, error) {
	return s.repo.List(ctx)
}

// GetActive serves from the cache when possible and falls back to the store.
// Cache failures degrade to a store read rather than failing the request.
func (s *Service) GetActive(ctx context.Context) (*RateCard, error) {
	if s.cache != nil {
		rc, err := s.cache.GetActive(ctx)
		if err != nil {
			s.logger.Warn("active rate card cache read failed", "error", err)
		} else if rc != nil {
			return rc, nil
		}
	}

	rc, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetActive(ctx, rc); err != nil {
			s.logger.Warn("active rate card cache write failed", "error", err)
		}
	}
	return rc, nil
}

func (s *Service) Update(ctx context.Context, rc *RateCard) (*RateCard, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, rc)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// Activate swaps the single active card atomically and refreshes the cache.
func (s *Service) Activate(ctx context.Context, id string) (*RateCard, error) {
	rc, err := s.repo.Activate(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetActive(ctx, rc); err != nil {
			s.logger.Warn("active rate card cache write failed", "error", err)
		}
	}
	s.logger.Info("rate card activated", "id", rc.ID, "version", rc.Version)
	return rc, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("active rate card cache invalidation failed", "error", err)
	}
}
