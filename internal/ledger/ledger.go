// Package ledger implements the stock change accumulator: the engine that
// computes, validates and atomically applies inventory deltas for sales,
// transfers and restorations.
//
// An Accumulator is scoped to one logical operation and one database
// transaction. Deltas for all line items are staged first, each validated
// against projected stock (persisted stock plus deltas already staged), so a
// multi-item request is judged by its combined effect. Nothing is written
// until Commit; an error during staging leaves the database untouched.
package ledger

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-stationery-inventory/internal/apperror"
	"go-stationery-inventory/internal/model"
	"go-stationery-inventory/pkg/database"
)

// StockChange reports one product's committed stock movement, for broadcast
// and logging.
type StockChange struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	OldStock  int       `json:"old_stock"`
	NewStock  int       `json:"new_stock"`
}

// Accumulator stages per-product stock deltas for a single operation.
// Not safe for concurrent use; create one per request and discard it.
type Accumulator struct {
	products map[uuid.UUID]*model.Product
	deltas   map[uuid.UUID]int
	order    []uuid.UUID
}

func New() *Accumulator {
	return &Accumulator{
		products: make(map[uuid.UUID]*model.Product),
		deltas:   make(map[uuid.UUID]int),
	}
}

// resolve loads and caches a product row, locked for the duration of the
// surrounding transaction. Each product is read at most once per operation.
func (a *Accumulator) resolve(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	if p, ok := a.products[id]; ok {
		return p, nil
	}
	var product model.Product
	err := database.LockForUpdate(tx).Preload("SetItems").First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("product", id.String())
		}
		return nil, err
	}
	a.products[id] = &product
	return &product, nil
}

// Projected returns the product's persisted stock plus all deltas already
// staged for it in this operation.
func (a *Accumulator) Projected(id uuid.UUID) int {
	p, ok := a.products[id]
	if !ok {
		return 0
	}
	return p.Stock + a.deltas[id]
}

// stage validates a consumption against projected stock and records the
// delta. Restorations (positive deltas) always pass.
func (a *Accumulator) stage(p *model.Product, delta int) error {
	if delta < 0 {
		required := -delta
		available := a.Projected(p.ID)
		if available < required {
			return &apperror.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Required:    required,
				Available:   available,
			}
		}
	}
	if _, seen := a.deltas[p.ID]; !seen {
		a.order = append(a.order, p.ID)
	}
	a.deltas[p.ID] += delta
	return nil
}

// Add stages a delta for a product, expanding set products into component
// deltas of delta × componentQuantity. Returns the resolved product so
// callers can snapshot its name, price and set configuration.
func (a *Accumulator) Add(tx *gorm.DB, productID uuid.UUID, delta int) (*model.Product, error) {
	product, err := a.resolve(tx, productID)
	if err != nil {
		return nil, err
	}
	if delta == 0 {
		return product, nil
	}

	if !product.IsSet {
		return product, a.stage(product, delta)
	}

	if len(product.SetItems) == 0 {
		return nil, &apperror.InvalidSetConfigError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Reason:      "set has no components",
		}
	}
	for _, item := range product.SetItems {
		component, err := a.resolve(tx, item.ComponentID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, &apperror.InvalidSetConfigError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Reason:      "component not found: " + item.ComponentID.String(),
				}
			}
			return nil, err
		}
		if err := a.stage(component, delta*item.Quantity); err != nil {
			return nil, err
		}
	}
	return product, nil
}

// AddDirect stages a delta against the product's own stock without set
// expansion. Used by transfers (which move literal units) and by restoration
// paths replaying a stored expansion snapshot.
func (a *Accumulator) AddDirect(tx *gorm.DB, productID uuid.UUID, delta int) (*model.Product, error) {
	product, err := a.resolve(tx, productID)
	if err != nil {
		return nil, err
	}
	if delta == 0 {
		return product, nil
	}
	return product, a.stage(product, delta)
}

// Commit writes every staged delta to its product's persisted stock, in
// first-touch order, clamped at zero. The clamp is a safety net against
// concurrent external mutation; a staging that validated should never need
// it. Returns the applied changes.
func (a *Accumulator) Commit(tx *gorm.DB) ([]StockChange, error) {
	changes := make([]StockChange, 0, len(a.order))
	for _, id := range a.order {
		delta := a.deltas[id]
		if delta == 0 {
			continue
		}
		p := a.products[id]
		newStock := p.Stock + delta
		if newStock < 0 {
			newStock = 0
		}
		err := tx.Model(&model.Product{}).
			Where("id = ?", id).
			Update("stock", newStock).Error
		if err != nil {
			return nil, err
		}
		changes = append(changes, StockChange{
			ProductID: id,
			Name:      p.Name,
			OldStock:  p.Stock,
			NewStock:  newStock,
		})
		p.Stock = newStock
	}
	return changes, nil
}
