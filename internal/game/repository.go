package game

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrSlugTaken    = errors.New("game slug already exists")
)

type Repository interface {
	Create(ctx context.Context, g *Game) error
	GetByID(ctx context.Context, id uint64) (*Game, error)
	ListActive(ctx context.Context) ([]Game, error)
	Update(ctx context.Context, id uint64, updates map[string]interface{}) (*Game, error)
	IncrementPlayCount(ctx context.Context, id uint64) error
}

type RepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Create(ctx context.Context, g *Game) error {
	err := r.db.WithContext(ctx).Create(g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *RepositoryImpl) GetByID(ctx context.Context, id uint64) (*Game, error) {
	var g Game
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *RepositoryImpl) ListActive(ctx context.Context) ([]Game, error) {
	var games []Game
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("is_featured DESC, play_count DESC").
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, id uint64, updates map[string]interface{}) (*Game, error) {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&Game{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrGameNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *RepositoryImpl) IncrementPlayCount(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&Game{}).Where("id = ?", id).
		Update("play_count", gorm.Expr("play_count + 1")).Error
}
