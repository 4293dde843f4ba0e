package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. Stock is the authoritative on-hand
// count for the central pool. A set product (IsSet) has no stock of its own;
// its availability is derived from SetItems.
type Product struct {
	BaseModel
	Name        string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"price"`
	Stock       int             `gorm:"default:0" json:"stock"`
	ImageURL    string          `gorm:"type:text" json:"image_url"`
	ForCourse   string          `gorm:"type:varchar(100);index" json:"for_course"`
	Branch      string          `gorm:"type:varchar(100)" json:"branch"`
	Remarks     string          `gorm:"type:text" json:"remarks"`

	// Years is canonical; Year is the legacy scalar view kept in sync on
	// every write (0 = all years, else the smallest element).
	Years YearSet `gorm:"type:jsonb" json:"years"`
	Year  int     `gorm:"default:0" json:"year"`

	IsSet    bool             `gorm:"default:false" json:"is_set"`
	SetItems []ProductSetItem `gorm:"foreignKey:ProductID" json:"set_items,omitempty"`

	PriceHistory     []PriceHistoryEntry `gorm:"foreignKey:ProductID" json:"price_history,omitempty"`
	LastPriceUpdated *time.Time          `json:"last_price_updated,omitempty"`
}

// ProductSetItem is one component of a set product.
type ProductSetItem struct {
	BaseModel
	ProductID   uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	ComponentID uuid.UUID `gorm:"type:uuid;not null" json:"component_id" validate:"uuid_required"`
	Quantity    int       `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	// Snapshots taken when the set was assembled; informational only.
	NameSnapshot  string          `gorm:"type:varchar(255)" json:"name_snapshot"`
	PriceSnapshot decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"price_snapshot"`
}

// PriceHistoryEntry is an append-only record of a superseded price.
type PriceHistoryEntry struct {
	BaseModel
	ProductID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"product_id"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	RecordedAt    time.Time       `json:"recorded_at"`
	UpdatedByName string          `gorm:"type:varchar(255)" json:"updated_by_name"`
}

// SyncYears normalizes the year set and refreshes the legacy scalar.
func (p *Product) SyncYears() {
	p.Years = p.Years.Normalize()
	p.Year = p.Years.LegacyYear()
}

// MatchesYear reports whether the product applies to the given year, checking
// both the legacy scalar and set membership.
func (p *Product) MatchesYear(year int) bool {
	return p.Year == year || p.Years.Contains(year)
}

// ItemKey derives the student item-map key for a product name: lowercase with
// whitespace runs collapsed to underscores.
func ItemKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}
