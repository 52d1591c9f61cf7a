package game

import (
	"time"

	"github.com/shopspring/decimal"
)

type Game struct {
	ID         uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name       string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Slug       string          `gorm:"column:slug;type:varchar(255);not null;uniqueIndex" json:"slug"`
	Provider   string          `gorm:"column:provider;type:varchar(100);not null" json:"provider"`
	MinBet     decimal.Decimal `gorm:"column:min_bet;type:numeric(20,2);not null;default:0.10" json:"min_bet"`
	MaxBet     decimal.Decimal `gorm:"column:max_bet;type:numeric(20,2);not null;default:1000.00" json:"max_bet"`
	RTP        decimal.Decimal `gorm:"column:rtp;type:numeric(5,2);not null;default:96.00" json:"rtp"`
	IsFeatured bool            `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	IsActive   bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	PlayCount  int64           `gorm:"column:play_count;not null;default:0" json:"play_count"`
	CreatedAt  time.Time       `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;not null" json:"updated_at"`
}
