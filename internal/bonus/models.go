package bonus

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ClaimStatusActive    = "active"
	ClaimStatusCompleted = "completed"
	ClaimStatusExpired   = "expired"
	ClaimStatusCancelled = "cancelled"
)

const (
	OfferTypeWelcome   = "welcome"
	OfferTypeDeposit   = "deposit"
	OfferTypeCashback  = "cashback"
	OfferTypeFreeSpins = "free_spins"
	OfferTypeReferral  = "referral"
)

// Offer is a promotional definition. Flat offers carry Amount > 0 and credit
// the bonus balance on claim; percentage offers carry Amount = 0 and only
// record the claim.
type Offer struct {
	ID                 uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name               string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Code               string          `gorm:"column:code;type:varchar(50);not null;uniqueIndex" json:"code"`
	Type               string          `gorm:"column:type;type:varchar(20);not null" json:"type"` // "welcome", "deposit", "cashback", "free_spins", "referral"
	Amount             decimal.Decimal `gorm:"column:amount;type:numeric(20,2);not null;default:0" json:"amount"`
	Percentage         int             `gorm:"column:percentage;not null;default:0" json:"percentage"`
	MaxAmount          decimal.Decimal `gorm:"column:max_amount;type:numeric(20,2);not null;default:0" json:"max_amount"`
	WageringMultiplier int             `gorm:"column:wagering_multiplier;not null;default:0" json:"wagering_multiplier"`
	ValidFrom          time.Time       `gorm:"column:valid_from;not null" json:"valid_from"`
	ValidUntil         time.Time       `gorm:"column:valid_until;not null" json:"valid_until"`
	IsActive           bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Description        string          `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedAt          time.Time       `gorm:"column:created_at;not null" json:"created_at"`
}

func (Offer) TableName() string { return "bonus_offers" }

// Claim records one account's claim of one offer. The composite unique index
// is the authority on the at-most-one-claim rule; the application-level
// pre-check only provides a friendlier fast path.
type Claim struct {
	ID               uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AccountID        uint64          `gorm:"column:account_id;not null;uniqueIndex:idx_claims_account_offer" json:"account_id"`
	OfferID          uint64          `gorm:"column:offer_id;not null;uniqueIndex:idx_claims_account_offer" json:"offer_id"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(20,2);not null" json:"amount"`
	WageredAmount    decimal.Decimal `gorm:"column:wagered_amount;type:numeric(20,2);not null;default:0" json:"wagered_amount"`
	WageringRequired decimal.Decimal `gorm:"column:wagering_required;type:numeric(20,2);not null;default:0" json:"wagering_required"`
	Status           string          `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"` // "active", "completed", "expired", "cancelled"
	Version          int             `gorm:"column:version;not null;default:1" json:"-"`
	ClaimedAt        time.Time       `gorm:"column:claimed_at;not null" json:"claimed_at"`
	ExpiresAt        time.Time       `gorm:"column:expires_at;not null" json:"expires_at"`
	CompletedAt      *time.Time      `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Claim) TableName() string { return "bonus_claims" }

// WagerEvent ties a settledable bet to the wagering progress it contributed.
// The unique bet reference makes progress recording idempotent.
type WagerEvent struct {
	ID           uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ClaimID      uint64          `gorm:"column:claim_id;not null;index" json:"claim_id"`
	BetReference string          `gorm:"column:bet_reference;type:varchar(255);not null;uniqueIndex" json:"bet_reference"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric(20,2);not null" json:"amount"`
	CreatedAt    time.Time       `gorm:"column:created_at;not null" json:"created_at"`
}

func (WagerEvent) TableName() string { return "wager_events" }

type Progress struct {
	ClaimID            uint64          `json:"claim_id"`
	WageringRequired   decimal.Decimal `json:"wagering_required"`
	WageredAmount      decimal.Decimal `json:"wagered_amount"`
	PercentageComplete float64         `json:"percentage_complete"`
	Completed          bool            `json:"completed"`
}

type Update struct {
	ClaimID            uint64          `json:"claim_id"`
	AccountID          uint64          `json:"account_id"`
	WageredAmount      decimal.Decimal `json:"wagered_amount"`
	WageringRequired   decimal.Decimal `json:"wagering_required"`
	PercentageComplete float64         `json:"percentage_complete"`
	Completed          bool            `json:"completed"`
	Timestamp          time.Time       `json:"timestamp"`
}
