package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devdir/internal/model"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// DeveloperFilter narrows a developer listing. Zero values match everything.
type DeveloperFilter struct {
	Field    model.Field
	WorkType model.WorkType
	Limit    int
	Offset   int
}

// DeveloperRepository defines developer profile persistence operations.
type DeveloperRepository interface {
	Create(ctx context.Context, developer *model.Developer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Developer, error)
	FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*model.Developer, error)
	List(ctx context.Context, filter DeveloperFilter) ([]model.Developer, error)
}

type developerRepository struct {
	db *gorm.DB
}

// NewDeveloperRepository creates a new developer repository.
func NewDeveloperRepository(db *gorm.DB) DeveloperRepository {
	return &developerRepository{db: db}
}

// Create inserts a profile. A second profile for the same owner fails with
// gorm.ErrDuplicatedKey from the unique index on owner_user_id.
func (r *developerRepository) Create(ctx context.Context, developer *model.Developer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(developer).Error
}

// FindByID finds a developer by ID.
func (r *developerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Developer, error) {
	var developer model.Developer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&developer).Error; err != nil {
		return nil, err
	}
	return &developer, nil
}

// FindByOwner finds the profile owned by a user.
func (r *developerRepository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*model.Developer, error) {
	var developer model.Developer
	if err := r.db.WithContext(ctx).Where("owner_user_id = ?", ownerUserID).First(&developer).Error; err != nil {
		return nil, err
	}
	return &developer, nil
}

// List returns developers newest first.
func (r *developerRepository) List(ctx context.Context, filter DeveloperFilter) ([]model.Developer, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	q := r.db.WithContext(ctx).Model(&model.Developer{})
	if filter.Field != "" {
		q = q.Where("field = ?", filter.Field)
	}
	if filter.WorkType != "" {
		q = q.Where("work_type = ?", filter.WorkType)
	}

	var developers []model.Developer
	if err := q.Order("created_at DESC").Order("id").
		Limit(limit).Offset(filter.Offset).
		Find(&developers).Error; err != nil {
		return nil, err
	}
	return developers, nil
}
