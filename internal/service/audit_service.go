package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-stationery-inventory/internal/apperror"
	"go-stationery-inventory/internal/ledger"
	"go-stationery-inventory/internal/model"
	"go-stationery-inventory/internal/repository"
	"go-stationery-inventory/internal/ws"
	"go-stationery-inventory/pkg/database"
)

// CreateAuditLogInput records a requested stock correction. The quantities
// are operator-supplied claims; BeforeQuantity is not checked against the
// product's live stock.
type CreateAuditLogInput struct {
	ProductID      uuid.UUID `json:"product_id" validate:"uuid_required"`
	BeforeQuantity *int      `json:"before_quantity" validate:"required"`
	AfterQuantity  *int      `json:"after_quantity" validate:"required"`
	Notes          string    `json:"notes"`
	CreatedBy      string    `json:"created_by"`
}

type AuditService interface {
	Create(input CreateAuditLogInput) (*model.AuditLog, error)
	List(status string) ([]model.AuditLog, error)
	Approve(id uuid.UUID, approvedBy string) (*model.AuditLog, error)
	Reject(id uuid.UUID, approvedBy, notes string) (*model.AuditLog, error)
}

type auditService struct {
	db       *gorm.DB
	logs     repository.AuditLogRepository
	products repository.ProductRepository
	hub      *ws.Hub
}

func NewAuditService(db *gorm.DB, logs repository.AuditLogRepository, products repository.ProductRepository, hub *ws.Hub) AuditService {
	return &auditService{db: db, logs: logs, products: products, hub: hub}
}

func (s *auditService) Create(input CreateAuditLogInput) (*model.AuditLog, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if *input.BeforeQuantity < 0 {
		return nil, apperror.Validation("valid beforeQuantity is required")
	}
	if *input.AfterQuantity < 0 {
		return nil, apperror.Validation("valid afterQuantity is required")
	}

	if _, err := s.products.FindByID(input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product", input.ProductID.String())
		}
		return nil, err
	}

	entry := &model.AuditLog{
		ProductID:      input.ProductID,
		BeforeQuantity: *input.BeforeQuantity,
		AfterQuantity:  *input.AfterQuantity,
		Notes:          input.Notes,
		Status:         model.AuditPending,
		CreatedByName:  orSystem(input.CreatedBy),
	}
	if err := s.logs.Create(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *auditService) List(status string) ([]model.AuditLog, error) {
	return s.logs.FindAll(status)
}

// Approve overwrites the product's stock with AfterQuantity. This is an
// absolute correction, deliberately outside the ledger's delta model.
func (s *auditService) Approve(id uuid.UUID, approvedBy string) (*model.AuditLog, error) {
	var (
		entry  *model.AuditLog
		change ledger.StockChange
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var loaded model.AuditLog
		err := database.LockForUpdate(tx).First(&loaded, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("audit log", id.String())
			}
			return err
		}
		entry = &loaded
		if entry.Status != model.AuditPending {
			return &apperror.StateTransitionError{
				Entity: "audit log", Status: string(entry.Status), Action: "approve",
			}
		}

		var product model.Product
		err = database.LockForUpdate(tx).First(&product, "id = ?", entry.ProductID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product", entry.ProductID.String())
			}
			return err
		}

		change = ledger.StockChange{
			ProductID: product.ID,
			Name:      product.Name,
			OldStock:  product.Stock,
			NewStock:  entry.AfterQuantity,
		}
		err = tx.Model(&model.Product{}).
			Where("id = ?", product.ID).
			Update("stock", entry.AfterQuantity).Error
		if err != nil {
			return err
		}

		now := time.Now()
		entry.Status = model.AuditApproved
		entry.ApprovedBy = orSystem(approvedBy)
		entry.ApprovedAt = &now
		return tx.Save(entry).Error
	})
	if err != nil {
		return nil, err
	}

	publishStockUpdate(s.hub, "audit_approved", []ledger.StockChange{change})
	return entry, nil
}

func (s *auditService) Reject(id uuid.UUID, approvedBy, notes string) (*model.AuditLog, error) {
	entry, err := s.logs.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("audit log", id.String())
		}
		return nil, err
	}
	if entry.Status != model.AuditPending {
		return nil, &apperror.StateTransitionError{
			Entity: "audit log", Status: string(entry.Status), Action: "reject",
		}
	}

	now := time.Now()
	entry.Status = model.AuditRejected
	entry.ApprovedBy = orSystem(approvedBy)
	entry.ApprovedAt = &now
	if notes = strings.TrimSpace(notes); notes != "" {
		if entry.Notes != "" {
			entry.Notes += "\n"
		}
		entry.Notes += "Rejected: " + notes
	}
	if err := s.logs.Save(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func orSystem(name string) string {
	if strings.TrimSpace(name) == "" {
		return "System"
	}
	return name
}
