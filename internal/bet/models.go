package bet

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending = "pending"
	StatusWin     = "win"
	StatusLoss    = "loss"
)

// ValidStatus reports whether s names a known bet status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusWin || s == StatusLoss
}

type Bet struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AccountID     uint64          `gorm:"column:account_id;not null;index" json:"account_id"`
	GameID        uint64          `gorm:"column:game_id;not null;index" json:"game_id"`
	Stake         decimal.Decimal `gorm:"column:stake;type:numeric(20,2);not null" json:"stake"`
	WinAmount     decimal.Decimal `gorm:"column:win_amount;type:numeric(20,2);not null;default:0" json:"win_amount"`
	Multiplier    decimal.Decimal `gorm:"column:multiplier;type:numeric(10,2);not null;default:0" json:"multiplier"`
	Status        string          `gorm:"column:status;type:varchar(20);not null" json:"status"` // "pending", "win", "loss"
	BetData       string          `gorm:"column:bet_data;type:text" json:"bet_data,omitempty"`
	LedgerEntryID uint64          `gorm:"column:ledger_entry_id;not null" json:"ledger_entry_id"`
	CreatedAt     time.Time       `gorm:"column:created_at;not null" json:"created_at"`
	SettledAt     *time.Time      `gorm:"column:settled_at" json:"settled_at,omitempty"`
}

type PlaceRequest struct {
	GameID     uint64           `json:"game_id"`
	Stake      decimal.Decimal  `json:"stake"`
	WinAmount  *decimal.Decimal `json:"win_amount,omitempty"`
	Multiplier *decimal.Decimal `json:"multiplier,omitempty"`
	Status     string           `json:"status,omitempty"`
	BetData    string           `json:"bet_data,omitempty"`
}

type SettleRequest struct {
	Outcome   string          `json:"outcome"` // "win" or "loss"
	WinAmount decimal.Decimal `json:"win_amount"`
}
