package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-stationery-inventory/internal/model"
)

// TransferFilter narrows stock transfer listings.
type TransferFilter struct {
	ProductID *uuid.UUID
	BranchID  *uuid.UUID
	Status    string
	IsPaid    *bool
	StartDate *time.Time
	EndDate   *time.Time
}

type TransferRepository interface {
	Create(transfer *model.StockTransfer) error
	FindAll(filter TransferFilter) ([]model.StockTransfer, error)
	FindByID(id uuid.UUID) (*model.StockTransfer, error)
	Save(transfer *model.StockTransfer) error
	Delete(id uuid.UUID) error
	CountByBranch(branchID uuid.UUID) (int64, error)
}

type transferRepo struct {
	db *gorm.DB
}

func NewTransferRepo(db *gorm.DB) TransferRepository {
	return &transferRepo{db}
}

func (r *transferRepo) Create(transfer *model.StockTransfer) error {
	return r.db.Create(transfer).Error
}

func (r *transferRepo) FindAll(filter TransferFilter) ([]model.StockTransfer, error) {
	var transfers []model.StockTransfer
	q := r.db.Preload("Items").Preload("ToBranch").Preload("Transaction").
		Order("transfer_date DESC, created_at DESC")

	if filter.BranchID != nil {
		q = q.Where("to_branch_id = ?", *filter.BranchID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.IsPaid != nil {
		q = q.Where("is_paid = ?", *filter.IsPaid)
	}
	if filter.StartDate != nil {
		q = q.Where("transfer_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("transfer_date <= ?", *filter.EndDate)
	}
	if filter.ProductID != nil {
		q = q.Joins("JOIN stock_transfer_items ON stock_transfer_items.transfer_id = stock_transfers.id").
			Where("stock_transfer_items.product_id = ?", *filter.ProductID).
			Distinct()
	}

	err := q.Find(&transfers).Error
	return transfers, err
}

func (r *transferRepo) FindByID(id uuid.UUID) (*model.StockTransfer, error) {
	var transfer model.StockTransfer
	err := r.db.Preload("Items").Preload("ToBranch").Preload("Transaction").
		First(&transfer, "id = ?", id).Error
	return &transfer, err
}

func (r *transferRepo) Save(transfer *model.StockTransfer) error {
	return r.db.Omit("Items", "ToBranch", "Transaction").Save(transfer).Error
}

func (r *transferRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.StockTransfer{}, "id = ?", id).Error
}

func (r *transferRepo) CountByBranch(branchID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.StockTransfer{}).
		Where("to_branch_id = ?", branchID).
		Count(&count).Error
	return count, err
}
