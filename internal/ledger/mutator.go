package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"casino_platform/internal/account"
)

const (
	MaxRetries = 3
	RetryDelay = 10 * time.Millisecond
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrPreconditionFailed wraps every precheck rejection, so callers can
	// match the category without knowing the specific rule that fired.
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrOptimisticLock     = errors.New("optimistic lock conflict")
	ErrInvalidKind        = errors.New("invalid ledger entry kind")
)

// Precheck is evaluated against the balance read inside the mutator's
// transaction, never against a balance the caller read earlier. Returning a
// non-nil error aborts the mutation with no state change.
type Precheck func(balanceBefore decimal.Decimal) error

// MinBalance returns a precheck requiring the pre-mutation balance to cover
// the given amount.
func MinBalance(amount decimal.Decimal) Precheck {
	return func(balanceBefore decimal.Decimal) error {
		if balanceBefore.LessThan(amount) {
			return ErrInsufficientBalance
		}
		return nil
	}
}

// Mutator is the only component permitted to change an account's cash or
// bonus balance. Every mutation re-reads the account, evaluates the precheck,
// updates the balance guarded by the account's version column, and appends a
// ledger entry, all in one transaction. A version conflict means a concurrent
// mutation won the race; callers retry.
type Mutator struct {
	db *gorm.DB
}

func NewMutator(db *gorm.DB) *Mutator {
	return &Mutator{db: db}
}

// ApplyDelta runs the mutation in its own transaction, retrying optimistic
// lock conflicts up to MaxRetries times.
func (m *Mutator) ApplyDelta(ctx context.Context, accountID uint64, amount decimal.Decimal, kind string, referenceID string, precheck Precheck) (*Entry, error) {
	var entry *Entry
	var err error
	for i := 0; i < MaxRetries; i++ {
		err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var txErr error
			entry, txErr = m.ApplyDeltaTx(ctx, tx, accountID, amount, kind, referenceID, precheck)
			return txErr
		})
		if err == nil {
			return entry, nil
		}
		if errors.Is(err, ErrOptimisticLock) {
			time.Sleep(RetryDelay)
			continue
		}
		return nil, err
	}
	return nil, err
}

// ApplyDeltaTx performs one mutation attempt inside a caller-owned
// transaction. Orchestrators that must commit other rows atomically with the
// balance change (claim insert, bet insert, settlement status flip) compose
// through this and handle ErrOptimisticLock retries themselves.
func (m *Mutator) ApplyDeltaTx(ctx context.Context, tx *gorm.DB, accountID uint64, amount decimal.Decimal, kind string, referenceID string, precheck Precheck) (*Entry, error) {
	if !ValidKind(kind) {
		return nil, ErrInvalidKind
	}

	var acct account.Account
	if err := tx.WithContext(ctx).Where("id = ?", accountID).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrAccountNotFound
		}
		return nil, err
	}

	balanceColumn := "balance"
	balanceBefore := acct.Balance
	if kindTargetsBonus(kind) {
		balanceColumn = "bonus_balance"
		balanceBefore = acct.BonusBalance
	}

	if precheck != nil {
		if err := precheck(balanceBefore); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPreconditionFailed, err)
		}
	}

	balanceAfter := balanceBefore.Add(amount)
	if balanceAfter.IsNegative() {
		return nil, ErrInsufficientBalance
	}

	result := tx.WithContext(ctx).Model(&account.Account{}).
		Where("id = ? AND version = ?", acct.ID, acct.Version).
		Updates(map[string]interface{}{
			balanceColumn: balanceAfter,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrOptimisticLock
	}

	var ref *string
	if referenceID != "" {
		ref = &referenceID
	}

	now := time.Now()
	entry := &Entry{
		AccountID:     acct.ID,
		Sequence:      acct.Version + 1,
		Kind:          kind,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Status:        StatusCompleted,
		ReferenceID:   ref,
		CreatedAt:     now,
		CompletedAt:   &now,
	}
	if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}
