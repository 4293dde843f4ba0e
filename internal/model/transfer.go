package model

import (
	"time"

	"github.com/google/uuid"
)

type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// StockTransfer moves literal product units from the central pool into a
// branch's local stock. Items are fixed at creation; set products are not
// expanded here. The booleans are consulted at completion time only.
type StockTransfer struct {
	BaseModel
	Items      []StockTransferItem `gorm:"foreignKey:TransferID" json:"items"`
	ToBranchID uuid.UUID           `gorm:"type:uuid;index;not null" json:"to_branch_id" validate:"uuid_required"`
	ToBranch   *TransferBranch     `gorm:"foreignKey:ToBranchID" json:"to_branch,omitempty" validate:"-"`

	TransferDate time.Time      `gorm:"index" json:"transfer_date"`
	Status       TransferStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	IsPaid            bool `gorm:"default:false" json:"is_paid"`
	DeductFromCentral bool `gorm:"default:true" json:"deduct_from_central"`
	IncludeInRevenue  bool `gorm:"default:true" json:"include_in_revenue"`

	Remarks       string `gorm:"type:text" json:"remarks"`
	CreatedByName string `gorm:"type:varchar(255);default:'System'" json:"created_by_name"`

	// Set only after successful completion.
	TransactionID *uuid.UUID   `gorm:"type:uuid" json:"transaction_id,omitempty"`
	Transaction   *Transaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// StockTransferItem is one transferred product with its quantity.
type StockTransferItem struct {
	BaseModel
	TransferID uuid.UUID `gorm:"type:uuid;index;not null" json:"transfer_id"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null" json:"product_id" validate:"uuid_required"`
	Quantity   int       `gorm:"not null" json:"quantity" validate:"required,gt=0"`
}
