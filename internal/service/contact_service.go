package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"devdir/internal/errors"
	"devdir/internal/identity"
	"devdir/internal/metrics"
	"devdir/internal/model"
	"devdir/internal/policy"
	"devdir/internal/repository"
)

const (
	// DefaultDailyContactLimit is the number of distinct developers a company may contact per UTC day.
	DefaultDailyContactLimit = 10
	// DefaultLedgerTimeout bounds the ledger work of a single contact.
	DefaultLedgerTimeout = 3 * time.Second
)

// ContactResult is the outcome of a successful contact action.
// RemainingQuota is nil for principals the quota does not apply to.
type ContactResult struct {
	Developer      policy.DeveloperView `json:"developer"`
	RemainingQuota *int                 `json:"remaining_quota"`
}

// QuotaStatus describes a company's quota for the current UTC day.
type QuotaStatus struct {
	ConsumedToday int       `json:"consumed_today"`
	Remaining     int       `json:"remaining"`
	Limit         int       `json:"limit"`
	ResetsAt      time.Time `json:"resets_at"`
}

// ContactService performs the metered "view contact info" action.
type ContactService interface {
	ViewContact(ctx context.Context, p identity.Principal, developerID uuid.UUID) (*ContactResult, error)
	QuotaStatus(ctx context.Context, p identity.Principal) (*QuotaStatus, error)
}

// ContactOption configures a ContactService.
type ContactOption func(*contactService)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ContactOption {
	return func(s *contactService) { s.logger = logger }
}

// WithClock replaces time.Now. Tests use it to pin the UTC day.
func WithClock(now func() time.Time) ContactOption {
	return func(s *contactService) { s.now = now }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) ContactOption {
	return func(s *contactService) { s.metrics = m }
}

// WithDailyLimit overrides DefaultDailyContactLimit.
func WithDailyLimit(limit int) ContactOption {
	return func(s *contactService) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// WithLedgerTimeout overrides DefaultLedgerTimeout.
func WithLedgerTimeout(d time.Duration) ContactOption {
	return func(s *contactService) {
		if d > 0 {
			s.ledgerTimeout = d
		}
	}
}

// WithStrictQuota makes the count-check-insert sequence run in one transaction
// holding a lock on the viewer, so the daily limit is never exceeded.
// When off, two concurrent requests may both pass the count check.
func WithStrictQuota(strict bool) ContactOption {
	return func(s *contactService) { s.strict = strict }
}

type contactService struct {
	developers    repository.DeveloperRepository
	ledger        repository.ContactLedger
	logger        *slog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
	limit         int
	ledgerTimeout time.Duration
	strict        bool
}

// NewContactService creates a new contact service.
func NewContactService(
	developers repository.DeveloperRepository,
	ledger repository.ContactLedger,
	opts ...ContactOption,
) ContactService {
	s := &contactService{
		developers:    developers,
		ledger:        ledger,
		logger:        slog.Default(),
		now:           time.Now,
		limit:         DefaultDailyContactLimit,
		ledgerTimeout: DefaultLedgerTimeout,
		strict:        true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ViewContact discloses a developer's contact fields to p, charging company
// principals one unit of daily quota per distinct developer.
func (s *contactService) ViewContact(ctx context.Context, p identity.Principal, developerID uuid.UUID) (*ContactResult, error) {
	if !p.IsAuthenticated() {
		return nil, errors.ErrAuthenticationRequired
	}

	developer, err := s.developers.FindByID(ctx, developerID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrDeveloperNotFound
		}
		return nil, fmt.Errorf("find developer: %w", err)
	}

	if developer.OwnerUserID == p.UserID {
		return nil, errors.ErrSelfViewNotAllowed
	}

	result := &ContactResult{Developer: policy.Full(developer)}

	switch p.Role {
	case model.RoleAdmin:
		s.metrics.IncContact(metrics.OutcomeUnmetered)
		return result, nil
	case model.RoleCompany:
		remaining, err := s.meter(ctx, p.UserID, developer.ID)
		if err != nil {
			return nil, err
		}
		result.RemainingQuota = &remaining
		return result, nil
	default:
		return nil, errors.ErrRoleNotPermitted
	}
}

// QuotaStatus reports how much of today's quota a company principal has used.
func (s *contactService) QuotaStatus(ctx context.Context, p identity.Principal) (*QuotaStatus, error) {
	if !p.IsAuthenticated() {
		return nil, errors.ErrAuthenticationRequired
	}
	if p.Role != model.RoleCompany {
		return nil, errors.ErrRoleNotPermitted
	}

	ctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()

	now := s.now()
	consumed, err := s.count(ctx, s.ledger, p.UserID, model.DayOf(now))
	if err != nil {
		return nil, err
	}
	return &QuotaStatus{
		ConsumedToday: consumed,
		Remaining:     max(s.limit-consumed, 0),
		Limit:         s.limit,
		ResetsAt:      model.NextDay(now),
	}, nil
}

// meter charges viewerID for developerID and returns the quota left today.
func (s *contactService) meter(ctx context.Context, viewerID, developerID uuid.UUID) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.ledgerTimeout)
	defer cancel()

	now := s.now()

	if !s.strict {
		remaining, err := s.checkAndRecord(ctx, s.ledger, viewerID, developerID, now)
		s.report(ctx, viewerID, developerID, err)
		return remaining, err
	}

	var remaining int
	err := s.ledger.WithTransaction(ctx, func(ctx context.Context, tx repository.ContactLedger) error {
		start := time.Now()
		if err := tx.LockViewer(ctx, viewerID); err != nil {
			return errors.LedgerUnavailable("lock viewer", err)
		}
		s.metrics.ObserveLedger("lock", time.Since(start))

		var err error
		remaining, err = s.checkAndRecord(ctx, tx, viewerID, developerID, now)
		return err
	})
	if err != nil && !stderrors.Is(err, errors.ErrQuotaExceeded) && !stderrors.Is(err, errors.ErrLedgerUnavailable) {
		err = errors.LedgerUnavailable("commit", err)
	}
	s.report(ctx, viewerID, developerID, err)
	return remaining, err
}

func (s *contactService) checkAndRecord(ctx context.Context, ledger repository.ContactLedger, viewerID, developerID uuid.UUID, now time.Time) (int, error) {
	day := model.DayOf(now)

	consumed, err := s.count(ctx, ledger, viewerID, day)
	if err != nil {
		return 0, err
	}

	if consumed >= s.limit {
		start := time.Now()
		viewed, err := ledger.HasViewed(ctx, viewerID, developerID, day)
		s.metrics.ObserveLedger("has_viewed", time.Since(start))
		if err != nil {
			return 0, errors.LedgerUnavailable("has viewed", err)
		}
		if !viewed {
			return 0, &errors.QuotaExceededError{Limit: s.limit, ResetsAt: model.NextDay(now)}
		}
	}

	start := time.Now()
	created, err := ledger.TryRecordView(ctx, viewerID, developerID, day)
	s.metrics.ObserveLedger("record", time.Since(start))
	if err != nil {
		return 0, errors.LedgerUnavailable("record view", err)
	}
	if created {
		s.metrics.IncContact(metrics.OutcomeRecorded)
	} else {
		s.metrics.IncContact(metrics.OutcomeReview)
	}

	consumed, err = s.count(ctx, ledger, viewerID, day)
	if err != nil {
		return 0, err
	}
	s.metrics.ObserveConsumed(consumed)
	return max(s.limit-consumed, 0), nil
}

func (s *contactService) count(ctx context.Context, ledger repository.ContactLedger, viewerID uuid.UUID, day string) (int, error) {
	start := time.Now()
	consumed, err := ledger.CountDistinctDevelopers(ctx, viewerID, day)
	s.metrics.ObserveLedger("count", time.Since(start))
	if err != nil {
		return 0, errors.LedgerUnavailable("count", err)
	}
	return consumed, nil
}

func (s *contactService) report(ctx context.Context, viewerID, developerID uuid.UUID, err error) {
	switch {
	case err == nil:
		s.logger.DebugContext(ctx, "contact recorded",
			"viewer_id", viewerID, "developer_id", developerID)
	case stderrors.Is(err, errors.ErrQuotaExceeded):
		s.metrics.IncContact(metrics.OutcomeRejected)
		s.logger.InfoContext(ctx, "contact rejected, daily quota used",
			"viewer_id", viewerID, "developer_id", developerID, "limit", s.limit)
	default:
		s.metrics.IncContact(metrics.OutcomeLedgerFail)
		s.logger.WarnContext(ctx, "contact ledger unavailable",
			"viewer_id", viewerID, "developer_id", developerID, "error", err)
	}
}
