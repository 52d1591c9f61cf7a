package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindDeposit    = "deposit"
	KindWithdrawal = "withdrawal"
	KindBet        = "bet"
	KindWin        = "win"
	KindBonus      = "bonus"
	KindRefund     = "refund"
)

// Entries exist only for committed mutations; a rejected or conflicted
// attempt rolls back without writing one.
const StatusCompleted = "completed"

// Entry is an append-only record of a single balance mutation. Amount is
// signed; BalanceAfter = BalanceBefore + Amount always holds. Sequence is the
// account's post-mutation version, so consecutive entries for one account
// chain: the next BalanceBefore equals the previous BalanceAfter.
// ReferenceID is NULL when the caller supplied none; the (reference_id, kind)
// unique index makes replays with the same reference a storage-level
// duplicate, while NULL rows never collide.
type Entry struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AccountID     uint64          `gorm:"column:account_id;not null;uniqueIndex:idx_ledger_account_seq" json:"account_id"`
	Sequence      int             `gorm:"column:sequence;not null;uniqueIndex:idx_ledger_account_seq" json:"sequence"`
	Kind          string          `gorm:"column:kind;type:varchar(20);not null;uniqueIndex:idx_ledger_ref_kind" json:"kind"` // "deposit", "withdrawal", "bet", "win", "bonus", "refund"
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(20,2);not null" json:"amount"`
	BalanceBefore decimal.Decimal `gorm:"column:balance_before;type:numeric(20,2);not null" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"column:balance_after;type:numeric(20,2);not null" json:"balance_after"`
	Status        string          `gorm:"column:status;type:varchar(20);not null" json:"status"`
	ReferenceID   *string         `gorm:"column:reference_id;type:varchar(255);uniqueIndex:idx_ledger_ref_kind" json:"reference_id,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at;not null" json:"created_at"`
	CompletedAt   *time.Time      `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Entry) TableName() string { return "ledger_entries" }

// ValidKind reports whether kind names a known ledger entry kind.
func ValidKind(kind string) bool {
	switch kind {
	case KindDeposit, KindWithdrawal, KindBet, KindWin, KindBonus, KindRefund:
		return true
	}
	return false
}

// kindTargetsBonus selects which balance a kind mutates.
func kindTargetsBonus(kind string) bool {
	return kind == KindBonus
}
