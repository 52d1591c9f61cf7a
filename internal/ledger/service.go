package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidAmount = errors.New("amount must be positive")

type AdjustmentRequest struct {
	AccountID   uint64          `json:"account_id"`
	Kind        string          `json:"kind"` // "deposit", "withdrawal", "refund"
	Amount      decimal.Decimal `json:"amount"`
	ReferenceID string          `json:"reference_id"`
}

type AdjustmentResponse struct {
	EntryID      uint64          `json:"entry_id"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Status       string          `json:"status"`
}

func isDuplicateReference(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(err.Error()), "unique")
}

// Service processes manual balance adjustments (deposits, withdrawals,
// refunds). Requests carrying a reference id already seen for the same kind
// return the original entry instead of applying the delta again.
type Service struct {
	repo    Repository
	mutator *Mutator
}

func NewService(repo Repository, mutator *Mutator) *Service {
	return &Service{repo: repo, mutator: mutator}
}

func (s *Service) ProcessAdjustment(ctx context.Context, req AdjustmentRequest) (*AdjustmentResponse, error) {
	switch req.Kind {
	case KindDeposit, KindWithdrawal, KindRefund:
	default:
		return nil, ErrInvalidKind
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if req.ReferenceID != "" {
		existing, err := s.repo.GetByReference(ctx, req.ReferenceID, req.Kind)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &AdjustmentResponse{
				EntryID:      existing.ID,
				BalanceAfter: existing.BalanceAfter,
				Status:       existing.Status,
			}, nil
		}
	}

	amount := req.Amount
	var precheck Precheck
	if req.Kind == KindWithdrawal {
		amount = req.Amount.Neg()
		precheck = MinBalance(req.Amount)
	}

	entry, err := s.mutator.ApplyDelta(ctx, req.AccountID, amount, req.Kind, req.ReferenceID, precheck)
	if err != nil {
		// A concurrent replay of the same reference lost the insert race on
		// the (reference_id, kind) unique index; answer with the entry that
		// won, same as the pre-check above.
		if req.ReferenceID != "" && isDuplicateReference(err) {
			existing, lookupErr := s.repo.GetByReference(ctx, req.ReferenceID, req.Kind)
			if lookupErr == nil && existing != nil {
				return &AdjustmentResponse{
					EntryID:      existing.ID,
					BalanceAfter: existing.BalanceAfter,
					Status:       existing.Status,
				}, nil
			}
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id": req.AccountID,
		"kind":       req.Kind,
		"amount":     req.Amount.String(),
		"entry_id":   entry.ID,
	}).Info("adjustment processed")

	return &AdjustmentResponse{
		EntryID:      entry.ID,
		BalanceAfter: entry.BalanceAfter,
		Status:       entry.Status,
	}, nil
}
