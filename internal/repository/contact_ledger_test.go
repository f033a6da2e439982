package repository

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"devdir/internal/model"
)

type ContactLedgerSuite struct {
	suite.Suite
	db     *gorm.DB
	ledger ContactLedger
	viewer *model.User
	ctx    context.Context
}

func TestContactLedgerSuite(t *testing.T) {
	suite.Run(t, new(ContactLedgerSuite))
}

func (s *ContactLedgerSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.ledger = NewContactLedger(s.db)
	s.viewer = createUser(s.T(), s.db, model.RoleCompany)
	s.ctx = context.Background()
}

func (s *ContactLedgerSuite) TestTryRecordView() {
	dev := createDeveloper(s.T(), s.db, model.FieldWeb, model.WorkTypeRemote)
	day := "2026-10-19"

	s.Run("first view is created", func() {
		created, err := s.ledger.TryRecordView(s.ctx, s.viewer.ID, dev.ID, day)
		s.Require().NoError(err)
		s.True(created)
	})

	s.Run("repeat view is idempotent", func() {
		created, err := s.ledger.TryRecordView(s.ctx, s.viewer.ID, dev.ID, day)
		s.Require().NoError(err)
		s.False(created)

		var rows int64
		s.Require().NoError(s.db.Model(&model.ContactEvent{}).Count(&rows).Error)
		s.Equal(int64(1), rows)
	})

	s.Run("next day is a new event", func() {
		created, err := s.ledger.TryRecordView(s.ctx, s.viewer.ID, dev.ID, "2026-10-20")
		s.Require().NoError(err)
		s.True(created)
	})
}

func (s *ContactLedgerSuite) TestCountDistinctDevelopers() {
	day := "2026-10-19"
	other := createUser(s.T(), s.db, model.RoleCompany)
	devs := []*model.Developer{
		createDeveloper(s.T(), s.db, model.FieldWeb, model.WorkTypeRemote),
		createDeveloper(s.T(), s.db, model.FieldAI, model.WorkTypeOnsite),
		createDeveloper(s.T(), s.db, model.FieldMobile, model.WorkTypeHybrid),
	}

	for _, d := range devs {
		_, err := s.ledger.TryRecordView(s.ctx, s.viewer.ID, d.ID, day)
		s.Require().NoError(err)
	}
	_, err := s.ledger.TryRecordView(s.ctx, s.viewer.ID, devs[0].ID, day)
	s.Require().NoError(err)
	_, err = s.ledger.TryRecordView(s.ctx, s.viewer.ID, devs[0].ID, "2026-10-18")
	s.Require().NoError(err)
	_, err = s.ledger.TryRecordView(s.ctx, other.ID, devs[1].ID, day)
	s.Require().NoError(err)

	count, err := s.ledger.CountDistinctDevelopers(s.ctx, s.viewer.ID, day)
	s.Require().NoError(err)
	s.Equal(3, count)

	count, err = s.ledger.CountDistinctDevelopers(s.ctx, s.viewer.ID, "2026-10-18")
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.ledger.CountDistinctDevelopers(s.ctx, other.ID, day)
	s.Require().NoError(err)
	s.Equal(1, count)

	count, err = s.ledger.CountDistinctDevelopers(s.ctx, uuid.New(), day)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ContactLedgerSuite) TestCountNeverExceedsCreatedViews() {
	day := "2026-10-19"
	devs := make([]*model.Developer, 6)
	for i := range devs {
		devs[i] = createDeveloper(s.T(), s.db, model.FieldBackend, model.WorkTypeRemote)
	}

	rng := rand.New(rand.NewSource(42))
	created := 0
	for i := 0; i < 40; i++ {
		d := devs[rng.Intn(len(devs))]
		ok, err := s.ledger.TryRecordView(s.ctx, s.viewer.ID, d.ID, day)
		s.Require().NoError(err)
		if ok {
			created++
		}

		count, err := s.ledger.CountDistinctDevelopers(s.ctx, s.viewer.ID, day)
		s.Require().NoError(err)
		s.LessOrEqual(count, created)
		s.Equal(created, count)
	}
}

func (s *ContactLedgerSuite) TestHasViewed() {
	dev := createDeveloper(s.T(), s.db, model.FieldFrontend, model.WorkTypeHybrid)
	day := "2026-10-19"

	viewed, err := s.ledger.HasViewed(s.ctx, s.viewer.ID, dev.ID, day)
	s.Require().NoError(err)
	s.False(viewed)

	_, err = s.ledger.TryRecordView(s.ctx, s.viewer.ID, dev.ID, day)
	s.Require().NoError(err)

	viewed, err = s.ledger.HasViewed(s.ctx, s.viewer.ID, dev.ID, day)
	s.Require().NoError(err)
	s.True(viewed)

	viewed, err = s.ledger.HasViewed(s.ctx, s.viewer.ID, dev.ID, "2026-10-20")
	s.Require().NoError(err)
	s.False(viewed)
}

func (s *ContactLedgerSuite) TestWithTransaction() {
	dev := createDeveloper(s.T(), s.db, model.FieldAI, model.WorkTypeRemote)
	day := "2026-10-19"
	boom := errors.New("boom")

	s.Run("rollback discards the event", func() {
		err := s.ledger.WithTransaction(s.ctx, func(ctx context.Context, tx ContactLedger) error {
			if err := tx.LockViewer(ctx, s.viewer.ID); err != nil {
				return err
			}
			created, err := tx.TryRecordView(ctx, s.viewer.ID, dev.ID, day)
			s.Require().NoError(err)
			s.True(created)
			return boom
		})
		s.ErrorIs(err, boom)

		count, err := s.ledger.CountDistinctDevelopers(s.ctx, s.viewer.ID, day)
		s.Require().NoError(err)
		s.Zero(count)
	})

	s.Run("commit keeps the event", func() {
		err := s.ledger.WithTransaction(s.ctx, func(ctx context.Context, tx ContactLedger) error {
			if err := tx.LockViewer(ctx, s.viewer.ID); err != nil {
				return err
			}
			_, err := tx.TryRecordView(ctx, s.viewer.ID, dev.ID, day)
			return err
		})
		s.Require().NoError(err)

		count, err := s.ledger.CountDistinctDevelopers(s.ctx, s.viewer.ID, day)
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("locking an unknown viewer is not an error", func() {
		err := s.ledger.WithTransaction(s.ctx, func(ctx context.Context, tx ContactLedger) error {
			return tx.LockViewer(ctx, uuid.New())
		})
		s.NoError(err)
	})
}

func (s *ContactLedgerSuite) TestConcurrentDuplicateViewsCreateOneEvent() {
	dev := createDeveloper(s.T(), s.db, model.FieldWeb, model.WorkTypeOnsite)
	day := "2026-10-19"

	var created atomic.Int32
	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			ok, err := s.ledger.TryRecordView(s.ctx, s.viewer.ID, dev.ID, day)
			if ok {
				created.Add(1)
			}
			return err
		})
	}
	s.Require().NoError(g.Wait())
	s.Equal(int32(1), created.Load())

	var rows int64
	s.Require().NoError(s.db.Model(&model.ContactEvent{}).
		Where("viewer_user_id = ? AND developer_id = ?", s.viewer.ID, dev.ID).
		Count(&rows).Error)
	s.Equal(int64(1), rows)
}

func (s *ContactLedgerSuite) TestCanceledContextFails() {
	dev := createDeveloper(s.T(), s.db, model.FieldWeb, model.WorkTypeOnsite)
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.ledger.TryRecordView(ctx, s.viewer.ID, dev.ID, "2026-10-19")
	s.Error(err)
}
