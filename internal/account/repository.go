package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

type Repository interface {
	Create(ctx context.Context, acct *Account) error
	GetByID(ctx context.Context, id uint64) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetBalance(ctx context.Context, id uint64) (*Balance, error)
	TouchLastLogin(ctx context.Context, id uint64) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, acct *Account) error {
	err := r.db.WithContext(ctx).Create(acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id uint64) (*Account, error) {
	var acct Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acct, nil
}

func (r *RepositoryImpl) GetByEmail(ctx context.Context, email string) (*Account, error) {
	var acct Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&acct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acct, nil
}

// GetBalance serves reads outside the mutation path. Writes to the balance
// columns happen only inside the ledger mutator's transaction.
func (r *RepositoryImpl) GetBalance(ctx context.Context, id uint64) (*Balance, error) {
	acct, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Balance{Cash: acct.Balance, Bonus: acct.BonusBalance}, nil
}

func (r *RepositoryImpl) TouchLastLogin(ctx context.Context, id uint64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&Account{}).Where("id = ?", id).
		Update("last_login", &now).Error
}
