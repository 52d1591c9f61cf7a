package bonus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"casino_platform/internal/account"
	"casino_platform/internal/ledger"
)

var ErrEmptyCode = errors.New("bonus code is required")

const (
	maxRetries = 3
	retryDelay = 10 * time.Millisecond
)

// Service orchestrates bonus claims and wagering progress. Claims are
// at-most-one per (account, offer): the storage unique index decides races,
// the pre-check only short-circuits the common repeat attempt.
type Service struct {
	db      *gorm.DB
	repo    Repository
	accts   account.Repository
	mutator *ledger.Mutator
	hub     *Hub
}

func NewService(db *gorm.DB, repo Repository, accts account.Repository, mutator *ledger.Mutator) *Service {
	return &Service{
		db:      db,
		repo:    repo,
		accts:   accts,
		mutator: mutator,
		hub:     NewHub(),
	}
}

// Claim validates the ordered preconditions and, for flat offers, credits the
// bonus balance atomically with the claim insert.
func (s *Service) Claim(ctx context.Context, accountID uint64, code string) (*Claim, *Offer, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil, ErrEmptyCode
	}

	if _, err := s.accts.GetByID(ctx, accountID); err != nil {
		return nil, nil, err
	}

	offer, err := s.repo.GetOfferByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	if !offer.IsActive {
		return nil, nil, ErrOfferInactive
	}

	now := time.Now()
	if now.Before(offer.ValidFrom) {
		return nil, nil, ErrOfferNotStarted
	}
	if now.After(offer.ValidUntil) {
		return nil, nil, ErrOfferExpired
	}

	if _, err := s.repo.GetClaimForAccountOffer(ctx, accountID, offer.ID); err == nil {
		return nil, nil, ErrAlreadyClaimed
	} else if !errors.Is(err, ErrClaimNotFound) {
		return nil, nil, err
	}

	claim := &Claim{
		AccountID:        accountID,
		OfferID:          offer.ID,
		Amount:           offer.Amount,
		WageredAmount:    decimal.Zero,
		WageringRequired: offer.Amount.Mul(decimal.NewFromInt(int64(offer.WageringMultiplier))),
		Status:           ClaimStatusActive,
		ClaimedAt:        now,
		ExpiresAt:        offer.ValidUntil,
	}

	for i := 0; i < maxRetries; i++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if txErr := s.repo.CreateClaimTx(ctx, tx, claim); txErr != nil {
				return txErr
			}
			if offer.Amount.IsPositive() {
				ref := fmt.Sprintf("claim:%d", claim.ID)
				_, txErr := s.mutator.ApplyDeltaTx(ctx, tx, accountID, offer.Amount, ledger.KindBonus, ref, nil)
				return txErr
			}
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, ledger.ErrOptimisticLock) {
			claim.ID = 0
			time.Sleep(retryDelay)
			continue
		}
		return nil, nil, err
	}
	if err != nil {
		return nil, nil, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"offer_code": offer.Code,
		"claim_id":   claim.ID,
		"amount":     offer.Amount.String(),
	}).Info("bonus claimed")

	return claim, offer, nil
}

// RecordWager advances the claimant's active wagering progress by the stake
// of a placed bet. Repeated calls with the same bet reference are no-ops.
// Accounts without an active claim simply contribute nothing.
func (s *Service) RecordWager(ctx context.Context, accountID uint64, betRef string, stake decimal.Decimal) error {
	event, err := s.repo.GetEventByBetReference(ctx, betRef)
	if err != nil {
		return err
	}
	if event != nil {
		logrus.WithField("bet_reference", betRef).Debug("wager event already recorded")
		return nil
	}

	claim, err := s.repo.GetActiveClaim(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrClaimNotFound) {
			return nil
		}
		return err
	}
	if time.Now().After(claim.ExpiresAt) {
		return nil
	}
	if !claim.WageringRequired.IsPositive() {
		return nil
	}

	var completed bool
	for i := 0; i < maxRetries; i++ {
		completed = false
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			current, txErr := s.repo.GetClaimTx(ctx, tx, claim.ID)
			if txErr != nil {
				return txErr
			}
			if current.Status != ClaimStatusActive {
				return ErrClaimNotActive
			}

			newProgress := current.WageredAmount.Add(stake)
			if newProgress.GreaterThan(current.WageringRequired) {
				newProgress = current.WageringRequired
			}
			completed = newProgress.GreaterThanOrEqual(current.WageringRequired)

			if txErr := s.repo.AdvanceWageringTx(ctx, tx, current, newProgress, completed); txErr != nil {
				return txErr
			}
			return s.repo.CreateWagerEventTx(ctx, tx, &WagerEvent{
				ClaimID:      current.ID,
				BetReference: betRef,
				Amount:       stake,
				CreatedAt:    time.Now(),
			})
		})
		if err == nil {
			break
		}
		if errors.Is(err, ErrClaimConflict) {
			time.Sleep(retryDelay)
			continue
		}
		if errors.Is(err, ErrClaimNotActive) {
			return nil
		}
		return err
	}
	if err != nil {
		return err
	}

	s.publishProgress(ctx, accountID, claim.ID, completed)
	return nil
}

// GetProgress reports wagering progress for a specific claim, or for the
// account's active claim when claimID is zero. A claim id belonging to a
// different account answers as if the claim does not exist.
func (s *Service) GetProgress(ctx context.Context, accountID uint64, claimID uint64) (*Progress, error) {
	var claim *Claim
	var err error
	if claimID != 0 {
		claim, err = s.repo.GetClaim(ctx, claimID)
		if err == nil && claim.AccountID != accountID {
			return nil, ErrClaimNotFound
		}
	} else {
		claim, err = s.repo.GetActiveClaim(ctx, accountID)
	}
	if err != nil {
		return nil, err
	}

	percent := float64(0)
	if claim.WageringRequired.IsPositive() {
		percent = claim.WageredAmount.Div(claim.WageringRequired).
			Mul(decimal.NewFromInt(100)).
			InexactFloat64()
	}

	return &Progress{
		ClaimID:            claim.ID,
		WageringRequired:   claim.WageringRequired,
		WageredAmount:      claim.WageredAmount,
		PercentageComplete: percent,
		Completed:          claim.Status == ClaimStatusCompleted,
	}, nil
}

func (s *Service) ListClaims(ctx context.Context, accountID uint64) ([]Claim, error) {
	return s.repo.ListClaims(ctx, accountID)
}

func (s *Service) ListOffers(ctx context.Context, activeOnly bool) ([]Offer, error) {
	return s.repo.ListOffers(ctx, activeOnly)
}

func (s *Service) CreateOffer(ctx context.Context, offer *Offer) error {
	return s.repo.CreateOffer(ctx, offer)
}

// ExpireDue is invoked by the scheduled sweeper.
func (s *Service) ExpireDue(ctx context.Context) (int64, error) {
	return s.repo.ExpireDue(ctx, time.Now())
}

func (s *Service) Subscribe(accountID uint64) <-chan Update {
	return s.hub.Subscribe(accountID)
}

func (s *Service) Unsubscribe(accountID uint64, ch <-chan Update) {
	s.hub.Unsubscribe(accountID, ch)
}

func (s *Service) publishProgress(ctx context.Context, accountID uint64, claimID uint64, completed bool) {
	progress, err := s.GetProgress(ctx, accountID, claimID)
	if err != nil {
		logrus.WithError(err).WithField("claim_id", claimID).Warn("failed to load progress for notification")
		return
	}

	s.hub.Notify(accountID, Update{
		ClaimID:            progress.ClaimID,
		AccountID:          accountID,
		WageredAmount:      progress.WageredAmount,
		WageringRequired:   progress.WageringRequired,
		PercentageComplete: progress.PercentageComplete,
		Completed:          completed,
		Timestamp:          time.Now(),
	})
}
