package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditStatus string

const (
	AuditPending  AuditStatus = "pending"
	AuditApproved AuditStatus = "approved"
	AuditRejected AuditStatus = "rejected"
)

// AuditLog is a pending manual stock correction. The before/after quantities
// are operator-supplied claims recorded at submission time; they are not
// reconciled against the product's live stock. Approval overwrites the
// product's stock with AfterQuantity.
type AuditLog struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id" validate:"uuid_required"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty" validate:"-"`

	BeforeQuantity int `gorm:"not null" json:"before_quantity" validate:"gte=0"`
	AfterQuantity  int `gorm:"not null" json:"after_quantity" validate:"gte=0"`

	Notes         string      `gorm:"type:text" json:"notes"`
	Status        AuditStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedByName string      `gorm:"type:varchar(255);default:'System'" json:"created_by_name"`

	ApprovedBy string     `gorm:"type:varchar(255)" json:"approved_by"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}
