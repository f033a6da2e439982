package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devdir/internal/cache"
	"devdir/internal/errors"
	"devdir/internal/identity"
	"devdir/internal/model"
	"devdir/internal/policy"
	"devdir/internal/repository"
)

const defaultDeveloperCacheTTL = 5 * time.Minute

// CreateDeveloperInput is the data a student supplies for their profile.
type CreateDeveloperInput struct {
	FirstName string
	LastName  string
	WorkType  model.WorkType
	Field     model.Field
	GitHub    *string
	LinkedIn  *string
	Email     string
}

// DeveloperService serves developer profiles. Every read is projected through
// policy.Project for the calling principal.
type DeveloperService interface {
	Create(ctx context.Context, p identity.Principal, input CreateDeveloperInput) (*policy.DeveloperView, error)
	List(ctx context.Context, p identity.Principal, filter repository.DeveloperFilter) ([]policy.DeveloperView, error)
	Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*policy.DeveloperView, error)
	GetOwn(ctx context.Context, p identity.Principal) (*policy.DeveloperView, error)
}

type developerService struct {
	repo     repository.DeveloperRepository
	cache    *cache.Client
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewDeveloperService builds a DeveloperService with repository and cache.
// A zero ttl selects the default.
func NewDeveloperService(repo repository.DeveloperRepository, cache *cache.Client, ttl time.Duration, logger *slog.Logger) DeveloperService {
	if ttl <= 0 {
		ttl = defaultDeveloperCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &developerService{repo: repo, cache: cache, cacheTTL: ttl, logger: logger}
}

func (s *developerService) cacheKey(id uuid.UUID) string {
	return "developer:" + id.String()
}

// Create publishes the caller's profile. Only students own profiles, one each.
func (s *developerService) Create(ctx context.Context, p identity.Principal, input CreateDeveloperInput) (*policy.DeveloperView, error) {
	if !p.IsAuthenticated() {
		return nil, errors.ErrAuthenticationRequired
	}
	if p.Role != model.RoleStudent {
		return nil, errors.ErrRoleNotPermitted
	}

	if _, err := s.repo.FindByOwner(ctx, p.UserID); err == nil {
		return nil, errors.ErrProfileAlreadyExists
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	developer := &model.Developer{
		OwnerUserID: p.UserID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		WorkType:    input.WorkType,
		Field:       input.Field,
		GitHub:      input.GitHub,
		LinkedIn:    input.LinkedIn,
		Email:       input.Email,
	}
	if err := s.repo.Create(ctx, developer); err != nil {
		// Lost a race with a concurrent create for the same owner.
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrProfileAlreadyExists
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(developer.ID))

	s.logger.InfoContext(ctx, "developer profile created",
		"developer_id", developer.ID, "owner_id", p.UserID)

	view := policy.Project(p, developer)
	return &view, nil
}

// List returns a page of profiles, redacted for p.
func (s *developerService) List(ctx context.Context, p identity.Principal, filter repository.DeveloperFilter) ([]policy.DeveloperView, error) {
	developers, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list developers: %w", err)
	}
	return policy.ProjectAll(p, developers), nil
}

// Get returns one profile, redacted for p. Full records are cached; redaction
// is applied on every read.
func (s *developerService) Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*policy.DeveloperView, error) {
	developer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view := policy.Project(p, developer)
	return &view, nil
}

// GetOwn returns the caller's own profile through the plain read path.
func (s *developerService) GetOwn(ctx context.Context, p identity.Principal) (*policy.DeveloperView, error) {
	if !p.IsAuthenticated() {
		return nil, errors.ErrAuthenticationRequired
	}
	developer, err := s.repo.FindByOwner(ctx, p.UserID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrDeveloperNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	view := policy.Project(p, developer)
	return &view, nil
}

func (s *developerService) load(ctx context.Context, id uuid.UUID) (*model.Developer, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Developer
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	developer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrDeveloperNotFound
		}
		return nil, fmt.Errorf("find developer: %w", err)
	}

	if payload, err := json.Marshal(developer); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, s.cacheTTL)
	}
	return developer, nil
}
