package repository

import (
	"go-pos-ledger/internal/model"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(entry *model.AuditLog) error
	FindByAction(action string, limit int) ([]model.AuditLog, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

func (r *auditRepo) Create(entry *model.AuditLog) error {
	return r.db.Create(entry).Error
}

func (r *auditRepo) FindByAction(action string, limit int) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	q := r.db.Where("action = ?", action).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}
