package service

import (
	"context"
	"errors"
	"time"

	"language-coach-server/internal/domain"
	apperrors "language-coach-server/pkg/errors"
)

// entitlementService is the usage gate: it decides whether a request may
// proceed and performs the atomic deduction before any billable vendor call.
// It is the sole mutator of the ledger's used_* counters.
type entitlementService struct {
	profileRepo domain.ProfileRepository
	creditRepo  domain.CreditRepository
	defaults    domain.CreditDefaults
	logger      domain.Logger

	now func() time.Time
}

func NewEntitlementService(
	profileRepo domain.ProfileRepository,
	creditRepo domain.CreditRepository,
	defaults domain.CreditDefaults,
	logger domain.Logger,
) domain.EntitlementService {
	return &entitlementService{
		profileRepo: profileRepo,
		creditRepo:  creditRepo,
		defaults:    defaults,
		logger:      logger,
		now:         time.Now,
	}
}

// Authorize implements the gate decision for one request.
//
// Order matters: the paid-plan bypass is checked before any ledger read so
// paid users never get a ledger row; denial checks run before the deduction
// so a denied request mutates nothing; and the deduction itself is a single
// guarded atomic increment so two concurrent requests cannot both spend the
// last credit.
func (s *entitlementService) Authorize(ctx context.Context, userID string, isAudioRequest bool, token string) (*domain.EntitlementDecision, error) {
	profile, err := s.profileRepo.GetByUserID(userID, token)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, apperrors.NewNotFoundError("Profile not found")
		}
		return nil, apperrors.NewInternalError("failed to load profile", err)
	}

	if domain.IsPaidPlan(profile.PlanID) {
		return &domain.EntitlementDecision{Allowed: true, IsPaidPlan: true}, nil
	}

	ledger, err := s.creditRepo.GetOrInit(ctx, userID, s.defaults, token)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load credit ledger", err)
	}

	if denial := denialFor(ledger, isAudioRequest, s.now()); denial != nil {
		s.logger.Debug("Request denied", "user_id", userID, "reason", denial.Message)
		return nil, denial
	}

	updated, err := s.creditRepo.Consume(ctx, userID, isAudioRequest, token)
	if err != nil {
		if errors.Is(err, domain.ErrLedgerConflict) {
			// A concurrent request spent the balance (or the trial lapsed)
			// between our read and the guarded update. Re-read for the
			// precise denial reason; nothing was deducted for this request.
			current, rerr := s.creditRepo.Get(ctx, userID, token)
			if rerr != nil || current == nil {
				return nil, apperrors.NewInternalError("failed to re-read credit ledger", rerr)
			}
			if denial := denialFor(current, isAudioRequest, s.now()); denial != nil {
				return nil, denial
			}
			return nil, apperrors.NewInternalError("credit deduction conflicted with no denial cause", nil)
		}
		// The update itself failed; the balance state is unknown. This is an
		// infrastructure failure and must not be reported as "exhausted".
		return nil, apperrors.NewInternalError("failed to record credit usage", err)
	}

	decision := &domain.EntitlementDecision{
		Allowed:          true,
		IsPaidPlan:       false,
		RemainingCredits: intPtr(updated.RemainingCredits()),
	}
	if isAudioRequest {
		decision.RemainingAudioCredits = intPtr(updated.RemainingAudioCredits())
	}
	return decision, nil
}

// Balance returns the advisory read model for the client mirror. For metered
// users this is also the path that lazily creates the ledger on first read.
func (s *entitlementService) Balance(ctx context.Context, userID string, token string) (*domain.CreditBalance, error) {
	profile, err := s.profileRepo.GetByUserID(userID, token)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, apperrors.NewNotFoundError("Profile not found")
		}
		return nil, apperrors.NewInternalError("failed to load profile", err)
	}

	if domain.IsPaidPlan(profile.PlanID) {
		return &domain.CreditBalance{IsPaidPlan: true}, nil
	}

	ledger, err := s.creditRepo.GetOrInit(ctx, userID, s.defaults, token)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load credit ledger", err)
	}

	trialEndsAt := ledger.TrialEndsAt
	return &domain.CreditBalance{
		IsPaidPlan:            false,
		RemainingCredits:      ledger.RemainingCredits(),
		TotalCredits:          ledger.TotalCredits,
		RemainingAudioCredits: ledger.RemainingAudioCredits(),
		TotalAudioCredits:     ledger.TotalAudioCredits,
		IsExpired:             ledger.TrialExpired(s.now()),
		TrialEndsAt:           &trialEndsAt,
	}, nil
}

// denialFor returns the applicable denial for a ledger state, or nil when the
// request may proceed. Checked in order: trial window, text credits, audio
// credits.
func denialFor(ledger *domain.CreditLedger, isAudioRequest bool, now time.Time) *apperrors.AppError {
	if ledger.TrialExpired(now) {
		return apperrors.NewPaymentRequiredError(domain.ErrTrialExpired.Error())
	}
	if ledger.RemainingCredits() <= 0 {
		return apperrors.NewPaymentRequiredError(domain.ErrCreditsExhausted.Error())
	}
	if isAudioRequest && ledger.RemainingAudioCredits() <= 0 {
		return apperrors.NewPaymentRequiredError(domain.ErrAudioCreditsExhausted.Error())
	}
	return nil
}

func intPtr(v int) *int {
	return &v
}
