package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-stationery-inventory/internal/apperror"
	"go-stationery-inventory/internal/model"
	"go-stationery-inventory/internal/repository"
	"go-stationery-inventory/internal/ws"
)

// SetItemInput declares one component of a set product.
type SetItemInput struct {
	ComponentID uuid.UUID `json:"component_id" validate:"uuid_required"`
	Quantity    int       `json:"quantity" validate:"required,gt=0"`
}

// CreateProductInput carries a new catalog entry. Years wins over the legacy
// Year scalar when both are supplied.
type CreateProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
	ImageURL    string          `json:"image_url"`
	ForCourse   string          `json:"for_course"`
	Branch      string          `json:"branch"`
	Remarks     string          `json:"remarks"`
	Years       []int           `json:"years"`
	Year        *int            `json:"year"`
	IsSet       bool            `json:"is_set"`
	SetItems    []SetItemInput  `json:"set_items" validate:"dive"`
}

// UpdateProductInput carries a partial catalog edit; nil fields are left
// untouched.
type UpdateProductInput struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	ImageURL    *string          `json:"image_url"`
	ForCourse   *string          `json:"for_course"`
	Branch      *string          `json:"branch"`
	Remarks     *string          `json:"remarks"`
	Years       *[]int           `json:"years"`
	Year        *int             `json:"year"`
}

type CatalogService interface {
	CreateProduct(input CreateProductInput) (*model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	ListProducts(course string, year *int) ([]model.Product, error)
	UpdateProduct(id uuid.UUID, input UpdateProductInput) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error
}

type catalogService struct {
	products repository.ProductRepository
	students repository.StudentRepository
	hub      *ws.Hub
}

func NewCatalogService(products repository.ProductRepository, students repository.StudentRepository, hub *ws.Hub) CatalogService {
	return &catalogService{products: products, students: students, hub: hub}
}

// normalizeYears resolves the dual year representation: an explicit set wins,
// otherwise the legacy scalar is widened (0 = all years = empty set).
func normalizeYears(years []int, year *int) model.YearSet {
	if years != nil {
		return model.YearSet(years).Normalize()
	}
	if year != nil && *year >= 1 && *year <= 10 {
		return model.YearSet{*year}
	}
	return model.YearSet{}
}

func (s *catalogService) CreateProduct(input CreateProductInput) (*model.Product, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if input.IsSet && len(input.SetItems) == 0 {
		return nil, apperror.Validation("a set product requires at least one component")
	}

	now := time.Now()
	product := &model.Product{
		Name:             input.Name,
		Description:      input.Description,
		Price:            input.Price,
		Stock:            input.Stock,
		ImageURL:         input.ImageURL,
		ForCourse:        input.ForCourse,
		Branch:           input.Branch,
		Remarks:          input.Remarks,
		Years:            normalizeYears(input.Years, input.Year),
		IsSet:            input.IsSet,
		LastPriceUpdated: &now,
	}
	product.SyncYears()

	if input.IsSet {
		components, err := s.products.FindByIDs(componentIDs(input.SetItems))
		if err != nil {
			return nil, err
		}
		byID := make(map[uuid.UUID]*model.Product, len(components))
		for i := range components {
			byID[components[i].ID] = &components[i]
		}
		for _, item := range input.SetItems {
			component, ok := byID[item.ComponentID]
			if !ok {
				return nil, apperror.NotFound("component product", item.ComponentID.String())
			}
			if component.IsSet {
				return nil, apperror.Validation("set components must not be sets themselves: %s", component.Name)
			}
			product.SetItems = append(product.SetItems, model.ProductSetItem{
				ComponentID:   component.ID,
				Quantity:      item.Quantity,
				NameSnapshot:  component.Name,
				PriceSnapshot: component.Price,
			})
		}
		// A set's availability is derived from its components.
		product.Stock = 0
	}

	if err := s.products.Create(product); err != nil {
		return nil, err
	}

	s.hub.Publish(map[string]interface{}{
		"type":   "stock_update",
		"action": "product_created",
		"product": map[string]interface{}{
			"id":    product.ID,
			"name":  product.Name,
			"stock": product.Stock,
			"price": product.Price,
		},
	})
	return product, nil
}

func componentIDs(items []SetItemInput) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ComponentID)
	}
	return ids
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.products.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product", id.String())
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) ListProducts(course string, year *int) ([]model.Product, error) {
	products, err := s.products.FindAll(course)
	if err != nil {
		return nil, err
	}
	if year == nil {
		return products, nil
	}
	// Year eligibility lives in a JSON column; membership is checked in Go
	// against both representations.
	out := products[:0]
	for _, p := range products {
		if p.MatchesYear(*year) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, input UpdateProductInput) (*model.Product, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, apperror.Validation("price must not be negative")
		}
		if !input.Price.Equal(product.Price) {
			// Append the superseded price before switching to the new one.
			now := time.Now()
			entry := &model.PriceHistoryEntry{
				ProductID:     product.ID,
				Price:         product.Price,
				RecordedAt:    now,
				UpdatedByName: "System",
			}
			if err := s.products.AppendPriceHistory(entry); err != nil {
				return nil, err
			}
			product.Price = *input.Price
			product.LastPriceUpdated = &now
		}
	}
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Stock != nil {
		if product.IsSet {
			return nil, apperror.Validation("a set product's stock is derived from its components")
		}
		if *input.Stock < 0 {
			return nil, apperror.Validation("stock must not be negative")
		}
		product.Stock = *input.Stock
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	if input.ForCourse != nil {
		product.ForCourse = *input.ForCourse
	}
	if input.Branch != nil {
		product.Branch = *input.Branch
	}
	if input.Remarks != nil {
		product.Remarks = *input.Remarks
	}
	if input.Years != nil || input.Year != nil {
		product.Years = normalizeYears(valueOrNil(input.Years), input.Year)
		product.SyncYears()
	}

	if err := s.products.Save(product); err != nil {
		return nil, err
	}

	s.hub.Publish(map[string]interface{}{
		"type":   "stock_update",
		"action": "product_updated",
		"product": map[string]interface{}{
			"id":    product.ID,
			"name":  product.Name,
			"stock": product.Stock,
			"price": product.Price,
		},
	})
	return product, nil
}

func valueOrNil(years *[]int) []int {
	if years == nil {
		return nil
	}
	return *years
}

func (s *catalogService) DeleteProduct(id uuid.UUID) error {
	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(id); err != nil {
		return err
	}

	// Best-effort cascade: drop the derived item key from student records.
	// Failure here never rolls back the deletion.
	if err := s.students.RemoveItemKey(model.ItemKey(product.Name)); err != nil {
		log.Warn().Err(err).Str("product", product.Name).
			Msg("failed to remove item key from students")
	}
	return nil
}
