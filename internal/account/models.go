package account

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusBanned    = "banned"
)

type Account struct {
	ID           uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Email        string          `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	Username     string          `gorm:"column:username;type:varchar(100);not null;uniqueIndex" json:"username"`
	PasswordHash string          `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	FullName     string          `gorm:"column:full_name;type:varchar(255);not null" json:"full_name"`
	Balance      decimal.Decimal `gorm:"column:balance;type:numeric(20,2);not null;default:0" json:"balance"`
	BonusBalance decimal.Decimal `gorm:"column:bonus_balance;type:numeric(20,2);not null;default:0" json:"bonus_balance"`
	Status       string          `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"` // "active", "suspended", "banned"
	KYCVerified  bool            `gorm:"column:kyc_verified;not null;default:false" json:"kyc_verified"`
	Version      int             `gorm:"column:version;not null;default:1" json:"-"`
	CreatedAt    time.Time       `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;not null" json:"updated_at"`
	LastLogin    *time.Time      `gorm:"column:last_login" json:"last_login,omitempty"`
}

type Balance struct {
	Cash  decimal.Decimal `json:"balance"`
	Bonus decimal.Decimal `json:"bonus_balance"`
}
