package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devdir/internal/model"
)

// ContactLedger is the durable record of contact events and the source of truth
// for daily quota consumption. Uniqueness of (viewer, developer, day) is enforced
// by the database, never by a read-then-write in this process.
type ContactLedger interface {
	// TryRecordView inserts the event if absent. created is false when the
	// event already existed; that is not an error.
	TryRecordView(ctx context.Context, viewerID, developerID uuid.UUID, day string) (created bool, err error)
	// CountDistinctDevelopers returns how many developers viewerID has contacted on day.
	CountDistinctDevelopers(ctx context.Context, viewerID uuid.UUID, day string) (int, error)
	// HasViewed reports whether an event exists for the triple.
	HasViewed(ctx context.Context, viewerID, developerID uuid.UUID, day string) (bool, error)
	// LockViewer takes a row lock on the viewer's user row until the surrounding
	// transaction ends. Outside a transaction it is a no-op lock.
	LockViewer(ctx context.Context, viewerID uuid.UUID) error
	// WithTransaction runs fn with a ledger bound to one database transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, ledger ContactLedger) error) error
}

type contactLedger struct {
	db *gorm.DB
}

// NewContactLedger creates a GORM-backed contact ledger.
func NewContactLedger(db *gorm.DB) ContactLedger {
	return &contactLedger{db: db}
}

func (r *contactLedger) TryRecordView(ctx context.Context, viewerID, developerID uuid.UUID, day string) (bool, error) {
	event := &model.ContactEvent{
		ViewerUserID: viewerID,
		DeveloperID:  developerID,
		Day:          day,
	}
	// INSERT ... ON CONFLICT DO NOTHING (ON DUPLICATE KEY UPDATE id=id on MySQL):
	// a duplicate affects zero rows.
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *contactLedger) CountDistinctDevelopers(ctx context.Context, viewerID uuid.UUID, day string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ContactEvent{}).
		Where("viewer_user_id = ? AND day = ?", viewerID, day).
		Distinct("developer_id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *contactLedger) HasViewed(ctx context.Context, viewerID, developerID uuid.UUID, day string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ContactEvent{}).
		Where("viewer_user_id = ? AND developer_id = ? AND day = ?", viewerID, developerID, day).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *contactLedger) LockViewer(ctx context.Context, viewerID uuid.UUID) error {
	var user model.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", viewerID).
		Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Nothing to lock; the insert's foreign key decides.
		return nil
	}
	return err
}

// WithTransaction executes a function within a database transaction.
func (r *contactLedger) WithTransaction(ctx context.Context, fn func(ctx context.Context, ledger ContactLedger) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &contactLedger{db: tx})
	})
}
