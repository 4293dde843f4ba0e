package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-stationery-inventory/internal/model"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll(course string) ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByIDs(ids []uuid.UUID) ([]model.Product, error)
	Save(product *model.Product) error
	Delete(id uuid.UUID) error
	AppendPriceHistory(entry *model.PriceHistoryEntry) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll(course string) ([]model.Product, error) {
	var products []model.Product
	q := r.db.Preload("SetItems").Order("name ASC")
	if course != "" {
		q = q.Where("for_course = ?", course)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("SetItems").Preload("PriceHistory").First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindByIDs(ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) Save(product *model.Product) error {
	return r.db.Omit("SetItems", "PriceHistory").Save(product).Error
}

func (r *productRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Product{}, "id = ?", id).Error
}

func (r *productRepo) AppendPriceHistory(entry *model.PriceHistoryEntry) error {
	return r.db.Create(entry).Error
}
