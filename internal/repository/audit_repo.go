package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-stationery-inventory/internal/model"
)

type AuditLogRepository interface {
	Create(log *model.AuditLog) error
	FindAll(status string) ([]model.AuditLog, error)
	FindByID(id uuid.UUID) (*model.AuditLog, error)
	Save(log *model.AuditLog) error
}

type auditLogRepo struct {
	db *gorm.DB
}

func NewAuditLogRepo(db *gorm.DB) AuditLogRepository {
	return &auditLogRepo{db}
}

func (r *auditLogRepo) Create(log *model.AuditLog) error {
	return r.db.Create(log).Error
}

func (r *auditLogRepo) FindAll(status string) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	q := r.db.Preload("Product").Order("created_at DESC")
	if status != "" && status != "all" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&logs).Error
	return logs, err
}

func (r *auditLogRepo) FindByID(id uuid.UUID) (*model.AuditLog, error) {
	var log model.AuditLog
	err := r.db.Preload("Product").First(&log, "id = ?", id).Error
	return &log, err
}

func (r *auditLogRepo) Save(log *model.AuditLog) error {
	return r.db.Omit("Product").Save(log).Error
}
