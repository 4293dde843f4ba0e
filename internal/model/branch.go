package model

import "github.com/google/uuid"

// TransferBranch is a campus/station that carries its own local stock,
// disjoint from the central Product pool. Inactive branches reject new
// transfers.
type TransferBranch struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Location    string `gorm:"type:varchar(255)" json:"location"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Stock []BranchStock `gorm:"foreignKey:BranchID" json:"stock,omitempty"`
}

// BranchStock is the branch-local quantity of one product. A product appears
// at most once per branch.
type BranchStock struct {
	BaseModel
	BranchID  uuid.UUID `gorm:"type:uuid;index:idx_branch_product,unique;not null" json:"branch_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index:idx_branch_product,unique;not null" json:"product_id"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
}
