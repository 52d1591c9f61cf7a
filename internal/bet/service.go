package bet

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"casino_platform/internal/account"
	"casino_platform/internal/game"
	"casino_platform/internal/ledger"
)

var (
	ErrAccountSuspended  = errors.New("account is not active")
	ErrGameInactive      = errors.New("game is not active")
	ErrStakeRequired     = errors.New("stake must be a positive amount")
	ErrStakeBelowMin     = errors.New("stake is below the game's minimum bet")
	ErrStakeAboveMax     = errors.New("stake exceeds the game's maximum bet")
	ErrNegativeWin       = errors.New("win amount must be non-negative")
	ErrNegativeMult      = errors.New("multiplier must be non-negative")
	ErrInvalidBetStatus  = errors.New("status must be one of: pending, win, loss")
	ErrInvalidBetData    = errors.New("bet_data must be valid JSON")
	ErrInvalidOutcome    = errors.New("outcome must be win or loss")
	ErrBetAlreadySettled = errors.New("bet has already been settled")
)

const (
	maxRetries = 3
	retryDelay = 10 * time.Millisecond
)

// Catalog is the game lookup the placement path depends on.
type Catalog interface {
	GetGame(ctx context.Context, id uint64) (*game.Game, error)
}

// WagerRecorder receives the stake of each placed bet for bonus wagering
// progress. Recording failures never fail the bet.
type WagerRecorder interface {
	RecordWager(ctx context.Context, accountID uint64, betRef string, stake decimal.Decimal) error
}

type Service struct {
	db      *gorm.DB
	repo    Repository
	accts   account.Repository
	catalog Catalog
	games   game.Repository
	mutator *ledger.Mutator
	wagers  WagerRecorder
}

func NewService(db *gorm.DB, repo Repository, accts account.Repository, catalog Catalog, games game.Repository, mutator *ledger.Mutator, wagers WagerRecorder) *Service {
	return &Service{
		db:      db,
		repo:    repo,
		accts:   accts,
		catalog: catalog,
		games:   games,
		mutator: mutator,
		wagers:  wagers,
	}
}

// Place validates the request, then debits the stake and inserts the bet as
// one atomic unit. The insufficient-balance check runs inside the mutator's
// transaction against the current balance, not the one read here.
func (s *Service) Place(ctx context.Context, accountID uint64, req PlaceRequest) (*Bet, error) {
	acct, err := s.accts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.Status != account.StatusActive {
		return nil, ErrAccountSuspended
	}

	g, err := s.catalog.GetGame(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	if !g.IsActive {
		return nil, ErrGameInactive
	}

	if !req.Stake.IsPositive() {
		return nil, ErrStakeRequired
	}
	if req.Stake.LessThan(g.MinBet) {
		return nil, ErrStakeBelowMin
	}
	if req.Stake.GreaterThan(g.MaxBet) {
		return nil, ErrStakeAboveMax
	}

	winAmount := decimal.Zero
	if req.WinAmount != nil {
		if req.WinAmount.IsNegative() {
			return nil, ErrNegativeWin
		}
		winAmount = *req.WinAmount
	}
	multiplier := decimal.Zero
	if req.Multiplier != nil {
		if req.Multiplier.IsNegative() {
			return nil, ErrNegativeMult
		}
		multiplier = *req.Multiplier
	}

	status := req.Status
	if status == "" {
		status = StatusPending
	}
	if !ValidStatus(status) {
		return nil, ErrInvalidBetStatus
	}
	if req.BetData != "" && !json.Valid([]byte(req.BetData)) {
		return nil, ErrInvalidBetData
	}

	b := &Bet{
		AccountID:  accountID,
		GameID:     g.ID,
		Stake:      req.Stake,
		WinAmount:  winAmount,
		Multiplier: multiplier,
		Status:     status,
		BetData:    req.BetData,
		CreatedAt:  time.Now(),
	}

	for i := 0; i < maxRetries; i++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			entry, txErr := s.mutator.ApplyDeltaTx(ctx, tx, accountID, req.Stake.Neg(), ledger.KindBet, "", ledger.MinBalance(req.Stake))
			if txErr != nil {
				return txErr
			}
			b.LedgerEntryID = entry.ID
			return s.repo.CreateTx(ctx, tx, b)
		})
		if err == nil {
			break
		}
		if errors.Is(err, ledger.ErrOptimisticLock) {
			b.ID = 0
			time.Sleep(retryDelay)
			continue
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if err := s.games.IncrementPlayCount(ctx, g.ID); err != nil {
		logrus.WithError(err).WithField("game_id", g.ID).Warn("failed to bump play count")
	}
	if s.wagers != nil {
		betRef := "bet:" + strconv.FormatUint(b.ID, 10)
		if err := s.wagers.RecordWager(ctx, accountID, betRef, b.Stake); err != nil {
			logrus.WithError(err).WithField("bet_id", b.ID).Warn("failed to record wagering progress")
		}
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"game_id":    g.ID,
		"bet_id":     b.ID,
		"stake":      b.Stake.String(),
	}).Info("bet placed")

	return b, nil
}

// Settle transitions a pending bet to win or loss at most once. A winning
// settlement credits the payout atomically with the status flip.
func (s *Service) Settle(ctx context.Context, betID uint64, req SettleRequest) (*Bet, error) {
	if req.Outcome != StatusWin && req.Outcome != StatusLoss {
		return nil, ErrInvalidOutcome
	}
	if req.WinAmount.IsNegative() {
		return nil, ErrNegativeWin
	}

	b, err := s.repo.GetByID(ctx, betID)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPending {
		return nil, ErrBetAlreadySettled
	}

	winAmount := decimal.Zero
	multiplier := decimal.Zero
	if req.Outcome == StatusWin {
		winAmount = req.WinAmount
		if b.Stake.IsPositive() {
			multiplier = winAmount.DivRound(b.Stake, 2)
		}
	}

	for i := 0; i < maxRetries; i++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			settled, txErr := s.repo.MarkSettledTx(ctx, tx, b.ID, req.Outcome, winAmount, multiplier)
			if txErr != nil {
				return txErr
			}
			if !settled {
				return ErrBetAlreadySettled
			}
			if req.Outcome == StatusWin && winAmount.IsPositive() {
				ref := "bet:" + strconv.FormatUint(b.ID, 10)
				_, txErr = s.mutator.ApplyDeltaTx(ctx, tx, b.AccountID, winAmount, ledger.KindWin, ref, nil)
				return txErr
			}
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, ledger.ErrOptimisticLock) {
			time.Sleep(retryDelay)
			continue
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"bet_id":     b.ID,
		"outcome":    req.Outcome,
		"win_amount": winAmount.String(),
	}).Info("bet settled")

	return s.repo.GetByID(ctx, b.ID)
}

func (s *Service) List(ctx context.Context, accountID uint64, status string, limit int) ([]Bet, error) {
	if status != "" && !ValidStatus(status) {
		return nil, ErrInvalidBetStatus
	}
	return s.repo.List(ctx, accountID, status, limit)
}
