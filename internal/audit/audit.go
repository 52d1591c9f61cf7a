package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Log records one admin mutation: who did what to which entity.
type Log struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AdminID    uint64    `gorm:"column:admin_id;not null;index" json:"admin_id"`
	Action     string    `gorm:"column:action;type:varchar(50);not null" json:"action"`
	EntityType string    `gorm:"column:entity_type;type:varchar(50);not null" json:"entity_type"`
	EntityID   uint64    `gorm:"column:entity_id" json:"entity_id,omitempty"`
	NewData    string    `gorm:"column:new_data;type:text" json:"new_data,omitempty"`
	IPAddress  string    `gorm:"column:ip_address;type:varchar(45)" json:"ip_address,omitempty"`
	UserAgent  string    `gorm:"column:user_agent;type:varchar(255)" json:"user_agent,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Log) TableName() string { return "admin_logs" }

type Recorder struct {
	db *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// Record appends an audit row. Audit failures are logged, never propagated:
// the admin operation itself already committed.
func (r *Recorder) Record(ctx context.Context, adminID uint64, action, entityType string, entityID uint64, payload any, ip, userAgent string) {
	data := ""
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			data = string(raw)
		}
	}
	entry := &Log{
		AdminID:    adminID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		NewData:    data,
		IPAddress:  ip,
		UserAgent:  userAgent,
		CreatedAt:  time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action": action,
			"entity": entityType,
		}).Error("failed to record audit log")
	}
}

func (r *Recorder) List(ctx context.Context, adminID uint64, limit int) ([]Log, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Model(&Log{})
	if adminID != 0 {
		q = q.Where("admin_id = ?", adminID)
	}
	var logs []Log
	if err := q.Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
