package model

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxStudent        TransactionType = "student"
	TxBranchTransfer TransactionType = "branch_transfer"
)

type PaymentMethod string

const (
	PayCash     PaymentMethod = "cash"
	PayOnline   PaymentMethod = "online"
	PayTransfer PaymentMethod = "transfer"
)

type ItemStatus string

const (
	ItemFulfilled ItemStatus = "fulfilled"
	ItemPartial   ItemStatus = "partial"
)

// Transaction is a sales or branch-transfer record. Exactly one of Student or
// Branch is populated, selected by Type. Item names and prices are snapshots
// taken at transaction time, decoupled from later catalog edits.
type Transaction struct {
	BaseModel
	Code string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Type TransactionType `gorm:"type:varchar(20);not null;default:'student';index" json:"type"`

	Student *StudentInfo `gorm:"type:jsonb" json:"student,omitempty"`
	Branch  *BranchInfo  `gorm:"type:jsonb" json:"branch,omitempty"`

	Items       []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`
	TotalAmount decimal.Decimal   `gorm:"type:numeric(12,2);not null;default:0" json:"total_amount"`

	PaymentMethod   PaymentMethod `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`
	IsPaid          bool          `gorm:"default:false" json:"is_paid"`
	PaidAt          *time.Time    `json:"paid_at,omitempty"`
	TransactionDate time.Time     `gorm:"index" json:"transaction_date"`
	Remarks         string        `gorm:"type:text" json:"remarks"`
}

// TransactionItem is one snapshotted line item. For set products,
// SetComponents records the expansion that was applied so that restoration
// mirrors it exactly even if the set definition changes afterwards.
type TransactionItem struct {
	BaseModel
	TransactionID uuid.UUID       `gorm:"type:uuid;index;not null" json:"transaction_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	IsSet         bool            `gorm:"default:false" json:"is_set"`
	Status        ItemStatus      `gorm:"type:varchar(20);not null;default:'fulfilled'" json:"status"`

	SetComponents SetComponentSnapshots `gorm:"type:jsonb" json:"set_components,omitempty"`
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewTransactionCode generates the human-readable code in the
// TXN-<timestamp>-<random> form.
func NewTransactionCode() string {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		sb.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}
	return fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), sb.String())
}
