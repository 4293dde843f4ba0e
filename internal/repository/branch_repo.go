package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-stationery-inventory/internal/model"
)

type BranchRepository interface {
	Create(branch *model.TransferBranch) error
	FindAll(activeOnly bool) ([]model.TransferBranch, error)
	FindByID(id uuid.UUID) (*model.TransferBranch, error)
	FindByName(name string) (*model.TransferBranch, error)
	Save(branch *model.TransferBranch) error
	Delete(id uuid.UUID) error
	FindStock(branchID, productID uuid.UUID) (*model.BranchStock, error)
}

type branchRepo struct {
	db *gorm.DB
}

func NewBranchRepo(db *gorm.DB) BranchRepository {
	return &branchRepo{db}
}

func (r *branchRepo) Create(branch *model.TransferBranch) error {
	return r.db.Create(branch).Error
}

func (r *branchRepo) FindAll(activeOnly bool) ([]model.TransferBranch, error) {
	var branches []model.TransferBranch
	q := r.db.Preload("Stock").Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&branches).Error
	return branches, err
}

func (r *branchRepo) FindByID(id uuid.UUID) (*model.TransferBranch, error) {
	var branch model.TransferBranch
	err := r.db.Preload("Stock").First(&branch, "id = ?", id).Error
	return &branch, err
}

func (r *branchRepo) FindByName(name string) (*model.TransferBranch, error) {
	var branch model.TransferBranch
	err := r.db.First(&branch, "name = ?", name).Error
	return &branch, err
}

func (r *branchRepo) Save(branch *model.TransferBranch) error {
	return r.db.Omit("Stock").Save(branch).Error
}

func (r *branchRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.TransferBranch{}, "id = ?", id).Error
}

func (r *branchRepo) FindStock(branchID, productID uuid.UUID) (*model.BranchStock, error) {
	var stock model.BranchStock
	err := r.db.First(&stock, "branch_id = ? AND product_id = ?", branchID, productID).Error
	return &stock, err
}
