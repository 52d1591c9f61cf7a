package bonus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrOfferNotFound   = errors.New("bonus offer not found")
	ErrOfferInactive   = errors.New("bonus offer is not active")
	ErrOfferNotStarted = errors.New("bonus offer is not yet valid")
	ErrOfferExpired    = errors.New("bonus offer has expired")
	ErrCodeTaken       = errors.New("bonus code already exists")
	ErrInvalidWindow   = errors.New("valid_from must be before valid_until")
	ErrAlreadyClaimed  = errors.New("bonus already claimed")
	ErrClaimNotFound   = errors.New("bonus claim not found")
	ErrClaimNotActive  = errors.New("bonus claim is not active")
	ErrClaimConflict   = errors.New("claim version conflict")
)

type Repository interface {
	CreateOffer(ctx context.Context, offer *Offer) error
	GetOfferByCode(ctx context.Context, code string) (*Offer, error)
	GetOffer(ctx context.Context, id uint64) (*Offer, error)
	ListOffers(ctx context.Context, activeOnly bool) ([]Offer, error)

	CreateClaimTx(ctx context.Context, tx *gorm.DB, claim *Claim) error
	GetClaimForAccountOffer(ctx context.Context, accountID, offerID uint64) (*Claim, error)
	GetActiveClaim(ctx context.Context, accountID uint64) (*Claim, error)
	ListClaims(ctx context.Context, accountID uint64) ([]Claim, error)
	GetClaim(ctx context.Context, claimID uint64) (*Claim, error)
	GetClaimTx(ctx context.Context, tx *gorm.DB, claimID uint64) (*Claim, error)

	GetEventByBetReference(ctx context.Context, betRef string) (*WagerEvent, error)
	CreateWagerEventTx(ctx context.Context, tx *gorm.DB, event *WagerEvent) error
	AdvanceWageringTx(ctx context.Context, tx *gorm.DB, claim *Claim, newProgress decimal.Decimal, completed bool) error
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

// isDuplicateKey matches the storage layer's unique-violation signal. The
// gorm error translation covers postgres; the message check covers sqlite
// used in tests.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(err.Error()), "unique")
}

func (r *RepositoryImpl) CreateOffer(ctx context.Context, offer *Offer) error {
	if !offer.ValidFrom.Before(offer.ValidUntil) {
		return ErrInvalidWindow
	}
	err := r.db.WithContext(ctx).Create(offer).Error
	if err != nil {
		if isDuplicateKey(err) {
			return ErrCodeTaken
		}
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetOfferByCode(ctx context.Context, code string) (*Offer, error) {
	var offer Offer
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &offer, nil
}

func (r *RepositoryImpl) GetOffer(ctx context.Context, id uint64) (*Offer, error) {
	var offer Offer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &offer, nil
}

func (r *RepositoryImpl) ListOffers(ctx context.Context, activeOnly bool) ([]Offer, error) {
	q := r.db.WithContext(ctx).Model(&Offer{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var offers []Offer
	if err := q.Order("created_at DESC").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}

func (r *RepositoryImpl) CreateClaimTx(ctx context.Context, tx *gorm.DB, claim *Claim) error {
	err := tx.WithContext(ctx).Create(claim).Error
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAlreadyClaimed
		}
		return fmt.Errorf("failed to create claim: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetClaimForAccountOffer(ctx context.Context, accountID, offerID uint64) (*Claim, error) {
	var claim Claim
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND offer_id = ?", accountID, offerID).
		First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return &claim, nil
}

func (r *RepositoryImpl) GetActiveClaim(ctx context.Context, accountID uint64) (*Claim, error) {
	var claim Claim
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, ClaimStatusActive).
		Order("claimed_at ASC").
		First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to get active claim: %w", err)
	}
	return &claim, nil
}

func (r *RepositoryImpl) ListClaims(ctx context.Context, accountID uint64) ([]Claim, error) {
	var claims []Claim
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("claimed_at DESC").
		Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	return claims, nil
}

func (r *RepositoryImpl) GetClaim(ctx context.Context, claimID uint64) (*Claim, error) {
	var claim Claim
	err := r.db.WithContext(ctx).Where("id = ?", claimID).First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return &claim, nil
}

// GetClaimTx reads a claim through a caller-owned transaction. Readers inside
// a transaction must not touch the base connection pool: with SQLite's single
// connection the open transaction holds it and a pool read blocks forever.
func (r *RepositoryImpl) GetClaimTx(ctx context.Context, tx *gorm.DB, claimID uint64) (*Claim, error) {
	var claim Claim
	err := tx.WithContext(ctx).Where("id = ?", claimID).First(&claim).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return &claim, nil
}

func (r *RepositoryImpl) GetEventByBetReference(ctx context.Context, betRef string) (*WagerEvent, error) {
	var event WagerEvent
	err := r.db.WithContext(ctx).Where("bet_reference = ?", betRef).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wager event: %w", err)
	}
	return &event, nil
}

func (r *RepositoryImpl) CreateWagerEventTx(ctx context.Context, tx *gorm.DB, event *WagerEvent) error {
	if err := tx.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create wager event: %w", err)
	}
	return nil
}

// AdvanceWageringTx applies new progress guarded by the claim's version
// column. RowsAffected == 0 means a concurrent update won; callers retry.
func (r *RepositoryImpl) AdvanceWageringTx(ctx context.Context, tx *gorm.DB, claim *Claim, newProgress decimal.Decimal, completed bool) error {
	updates := map[string]interface{}{
		"wagered_amount": newProgress,
		"version":        gorm.Expr("version + 1"),
	}
	if completed {
		now := time.Now()
		updates["status"] = ClaimStatusCompleted
		updates["completed_at"] = &now
	}

	result := tx.WithContext(ctx).Model(&Claim{}).
		Where("id = ? AND version = ?", claim.ID, claim.Version).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to advance wagering: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrClaimConflict
	}
	return nil
}

// ExpireDue flips active claims past their expiry to expired and reports how
// many rows changed.
func (r *RepositoryImpl) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&Claim{}).
		Where("status = ? AND expires_at <= ?", ClaimStatusActive, now).
		Updates(map[string]interface{}{
			"status":  ClaimStatusExpired,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire claims: %w", result.Error)
	}
	return result.RowsAffected, nil
}
