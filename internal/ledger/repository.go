package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrInvalidFilter = errors.New("invalid ledger filter")

// ListFilter describes the allowed filters for ledger history queries.
// Only the fields enumerated here may be filtered on; Validate runs before
// any query is built.
type ListFilter struct {
	AccountID uint64
	Kind      string
	Limit     int
	Offset    int
}

func (f *ListFilter) Validate() error {
	if f.Kind != "" && !ValidKind(f.Kind) {
		return ErrInvalidFilter
	}
	if f.Limit < 0 || f.Offset < 0 {
		return ErrInvalidFilter
	}
	if f.Limit == 0 || f.Limit > 100 {
		f.Limit = 100
	}
	return nil
}

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
	GetByReference(ctx context.Context, referenceID string, kind string) (*Entry, error)
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&Entry{})
	if filter.AccountID != 0 {
		q = q.Where("account_id = ?", filter.AccountID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}

	var entries []Entry
	err := q.Order("id DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetByReference looks up a prior entry by external reference, used for
// idempotent adjustment processing. Returns (nil, nil) when absent.
func (r *RepositoryImpl) GetByReference(ctx context.Context, referenceID string, kind string) (*Entry, error) {
	var entry Entry
	err := r.db.WithContext(ctx).
		Where("reference_id = ? AND kind = ?", referenceID, kind).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}
