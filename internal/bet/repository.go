package bet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrBetNotFound = errors.New("bet not found")

type Repository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, b *Bet) error
	GetByID(ctx context.Context, id uint64) (*Bet, error)
	List(ctx context.Context, accountID uint64, status string, limit int) ([]Bet, error)
	MarkSettledTx(ctx context.Context, tx *gorm.DB, id uint64, outcome string, winAmount, multiplier decimal.Decimal) (bool, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) CreateTx(ctx context.Context, tx *gorm.DB, b *Bet) error {
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id uint64) (*Bet, error) {
	var b Bet
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	return &b, nil
}

func (r *RepositoryImpl) List(ctx context.Context, accountID uint64, status string, limit int) ([]Bet, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Where("account_id = ?", accountID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var bets []Bet
	if err := q.Order("id DESC").Limit(limit).Find(&bets).Error; err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return bets, nil
}

// MarkSettledTx flips a pending bet to its outcome. The status guard in the
// WHERE clause is what makes settlement at-most-once: the second caller
// matches zero rows.
func (r *RepositoryImpl) MarkSettledTx(ctx context.Context, tx *gorm.DB, id uint64, outcome string, winAmount, multiplier decimal.Decimal) (bool, error) {
	now := time.Now()
	result := tx.WithContext(ctx).Model(&Bet{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":     outcome,
			"win_amount": winAmount,
			"multiplier": multiplier,
			"settled_at": &now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to settle bet: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
