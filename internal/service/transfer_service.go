package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-stationery-inventory/internal/apperror"
	"go-stationery-inventory/internal/ledger"
	"go-stationery-inventory/internal/model"
	"go-stationery-inventory/internal/repository"
	"go-stationery-inventory/internal/ws"
	"go-stationery-inventory/pkg/database"
)

type TransferItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// CreateTransferInput creates a pending transfer. The booleans default to
// the original behavior: deduct from central, include in revenue, unpaid.
type CreateTransferInput struct {
	Items             []TransferItemInput `json:"items" validate:"required,min=1,dive"`
	ToBranchID        uuid.UUID           `json:"to_branch_id" validate:"uuid_required"`
	TransferDate      *time.Time          `json:"transfer_date"`
	IsPaid            *bool               `json:"is_paid"`
	DeductFromCentral *bool               `json:"deduct_from_central"`
	IncludeInRevenue  *bool               `json:"include_in_revenue"`
	Remarks           string              `json:"remarks"`
	CreatedBy         string              `json:"created_by"`
}

type UpdateTransferInput struct {
	Status  *model.TransferStatus `json:"status"`
	IsPaid  *bool                 `json:"is_paid"`
	Remarks *string               `json:"remarks"`
}

type BranchInput struct {
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// BranchStockView is the per-product branch stock response.
type BranchStockView struct {
	Branch    string    `json:"branch"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type TransferService interface {
	CreateBranch(input BranchInput) (*model.TransferBranch, error)
	UpdateBranch(id uuid.UUID, input BranchInput) (*model.TransferBranch, error)
	DeleteBranch(id uuid.UUID) error
	ListBranches(activeOnly bool) ([]model.TransferBranch, error)
	GetBranch(id uuid.UUID) (*model.TransferBranch, error)
	GetBranchStock(branchID, productID uuid.UUID) (*BranchStockView, error)
	GetBranchStockAll(branchID uuid.UUID) ([]model.BranchStock, error)

	Create(input CreateTransferInput) (*model.StockTransfer, error)
	Get(id uuid.UUID) (*model.StockTransfer, error)
	List(filter repository.TransferFilter) ([]model.StockTransfer, error)
	Update(id uuid.UUID, input UpdateTransferInput) (*model.StockTransfer, error)
	Delete(id uuid.UUID) error
	Complete(id uuid.UUID) (*model.StockTransfer, error)
}

type transferService struct {
	db        *gorm.DB
	transfers repository.TransferRepository
	branches  repository.BranchRepository
	hub       *ws.Hub
}

func NewTransferService(db *gorm.DB, transfers repository.TransferRepository, branches repository.BranchRepository, hub *ws.Hub) TransferService {
	return &transferService{db: db, transfers: transfers, branches: branches, hub: hub}
}

func (s *transferService) CreateBranch(input BranchInput) (*model.TransferBranch, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.Validation("branch name is required")
	}
	name := strings.TrimSpace(*input.Name)

	existing, err := s.branches.FindByName(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil && existing.ID != uuid.Nil {
		return nil, apperror.Conflict("branch with this name already exists")
	}

	branch := &model.TransferBranch{
		Name:     name,
		IsActive: true,
	}
	if input.Location != nil {
		branch.Location = strings.TrimSpace(*input.Location)
	}
	if input.Description != nil {
		branch.Description = strings.TrimSpace(*input.Description)
	}
	if err := s.branches.Create(branch); err != nil {
		return nil, err
	}
	return branch, nil
}

func (s *transferService) UpdateBranch(id uuid.UUID, input BranchInput) (*model.TransferBranch, error) {
	branch, err := s.GetBranch(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		name := strings.TrimSpace(*input.Name)
		existing, err := s.branches.FindByName(name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil && existing.ID != branch.ID {
			return nil, apperror.Conflict("branch with this name already exists")
		}
		branch.Name = name
	}
	if input.Location != nil {
		branch.Location = strings.TrimSpace(*input.Location)
	}
	if input.Description != nil {
		branch.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		branch.IsActive = *input.IsActive
	}
	if err := s.branches.Save(branch); err != nil {
		return nil, err
	}
	return branch, nil
}

// DeleteBranch refuses while any transfer references the branch, regardless
// of that transfer's status.
func (s *transferService) DeleteBranch(id uuid.UUID) error {
	if _, err := s.GetBranch(id); err != nil {
		return err
	}
	count, err := s.transfers.CountByBranch(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.Conflict("cannot delete branch: it is used in %d transfer(s)", count)
	}
	return s.branches.Delete(id)
}

func (s *transferService) ListBranches(activeOnly bool) ([]model.TransferBranch, error) {
	return s.branches.FindAll(activeOnly)
}

func (s *transferService) GetBranch(id uuid.UUID) (*model.TransferBranch, error) {
	branch, err := s.branches.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("branch", id.String())
		}
		return nil, err
	}
	return branch, nil
}

func (s *transferService) GetBranchStock(branchID, productID uuid.UUID) (*BranchStockView, error) {
	branch, err := s.GetBranch(branchID)
	if err != nil {
		return nil, err
	}
	view := &BranchStockView{Branch: branch.Name, ProductID: productID}
	stock, err := s.branches.FindStock(branchID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return view, nil
		}
		return nil, err
	}
	view.Quantity = stock.Quantity
	return view, nil
}

// GetBranchStockAll returns every local stock row the branch carries.
func (s *transferService) GetBranchStockAll(branchID uuid.UUID) ([]model.BranchStock, error) {
	branch, err := s.GetBranch(branchID)
	if err != nil {
		return nil, err
	}
	if branch.Stock == nil {
		return []model.BranchStock{}, nil
	}
	return branch.Stock, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// Create persists a pending transfer. No stock moves yet; when the transfer
// will deduct from central, projected sufficiency is checked now so obviously
// doomed transfers are rejected early.
func (s *transferService) Create(input CreateTransferInput) (*model.StockTransfer, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	branch, err := s.GetBranch(input.ToBranchID)
	if err != nil {
		return nil, err
	}
	if !branch.IsActive {
		return nil, apperror.NotFound("active branch", branch.Name)
	}

	deduct := boolOr(input.DeductFromCentral, true)

	transfer := &model.StockTransfer{
		ToBranchID:        branch.ID,
		Status:            model.TransferPending,
		IsPaid:            boolOr(input.IsPaid, false),
		DeductFromCentral: deduct,
		IncludeInRevenue:  boolOr(input.IncludeInRevenue, true),
		Remarks:           strings.TrimSpace(input.Remarks),
		CreatedByName:     strings.TrimSpace(input.CreatedBy),
	}
	if transfer.CreatedByName == "" {
		transfer.CreatedByName = "System"
	}
	if input.TransferDate != nil {
		transfer.TransferDate = *input.TransferDate
	} else {
		transfer.TransferDate = time.Now()
	}
	for _, item := range input.Items {
		transfer.Items = append(transfer.Items, model.StockTransferItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Validate-only accumulator: resolves every product and, when
		// deducting, checks projected central stock. Discarded uncommitted.
		acc := ledger.New()
		for _, item := range input.Items {
			delta := 0
			if deduct {
				delta = -item.Quantity
			}
			if _, err := acc.AddDirect(tx, item.ProductID, delta); err != nil {
				return err
			}
		}
		return tx.Create(transfer).Error
	})
	if err != nil {
		return nil, err
	}
	return transfer, nil
}

func (s *transferService) Get(id uuid.UUID) (*model.StockTransfer, error) {
	transfer, err := s.transfers.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("stock transfer", id.String())
		}
		return nil, err
	}
	return transfer, nil
}

func (s *transferService) List(filter repository.TransferFilter) ([]model.StockTransfer, error) {
	return s.transfers.FindAll(filter)
}

// Update handles payment/remark edits and cancellation. Completion has side
// effects and goes through Complete only.
func (s *transferService) Update(id uuid.UUID, input UpdateTransferInput) (*model.StockTransfer, error) {
	transfer, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		switch *input.Status {
		case model.TransferCancelled:
			if transfer.Status != model.TransferPending {
				return nil, &apperror.StateTransitionError{
					Entity: "stock transfer", Status: string(transfer.Status), Action: "cancel",
				}
			}
			now := time.Now()
			transfer.Status = model.TransferCancelled
			transfer.CancelledAt = &now
		case model.TransferCompleted:
			return nil, apperror.Validation("transfers are completed via the complete operation")
		case model.TransferPending:
			return nil, apperror.Validation("cannot reset a transfer to pending")
		default:
			return nil, apperror.Validation("invalid transfer status: %s", *input.Status)
		}
	}
	if input.IsPaid != nil {
		transfer.IsPaid = *input.IsPaid
	}
	if input.Remarks != nil {
		transfer.Remarks = strings.TrimSpace(*input.Remarks)
	}

	if err := s.transfers.Save(transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// Delete removes a transfer outright; allowed only while pending.
func (s *transferService) Delete(id uuid.UUID) error {
	transfer, err := s.Get(id)
	if err != nil {
		return err
	}
	if transfer.Status != model.TransferPending {
		return &apperror.StateTransitionError{
			Entity: "stock transfer", Status: string(transfer.Status), Action: "delete",
		}
	}
	return s.transfers.Delete(id)
}

// Complete transitions pending → completed: optionally deducts central stock
// through the ledger, adds every item to the branch's local stock, and always
// records a branch_transfer transaction for bookkeeping.
func (s *transferService) Complete(id uuid.UUID) (*model.StockTransfer, error) {
	var (
		transfer *model.StockTransfer
		changes  []ledger.StockChange
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var loaded model.StockTransfer
		err := database.LockForUpdate(tx).Preload("Items").Preload("ToBranch").
			First(&loaded, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("stock transfer", id.String())
			}
			return err
		}
		transfer = &loaded
		if transfer.Status != model.TransferPending {
			return &apperror.StateTransitionError{
				Entity: "stock transfer", Status: string(transfer.Status), Action: "complete",
			}
		}
		branch := transfer.ToBranch
		if branch == nil {
			return apperror.NotFound("branch", transfer.ToBranchID.String())
		}

		// Stock may have drifted since creation; transfers move literal
		// units, so no set expansion here.
		acc := ledger.New()
		txnItems := make([]model.TransactionItem, 0, len(transfer.Items))
		total := decimal.Zero
		for _, item := range transfer.Items {
			delta := 0
			if transfer.DeductFromCentral {
				delta = -item.Quantity
			}
			product, err := acc.AddDirect(tx, item.ProductID, delta)
			if err != nil {
				return err
			}
			itemTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(itemTotal)
			txnItems = append(txnItems, model.TransactionItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  item.Quantity,
				Price:     product.Price,
				Total:     itemTotal,
				Status:    model.ItemFulfilled,
			})
		}
		changes, err = acc.Commit(tx)
		if err != nil {
			return err
		}

		for _, item := range transfer.Items {
			if err := upsertBranchStock(tx, branch.ID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		now := time.Now()
		remarks := fmt.Sprintf("Stock transfer to %s", branch.Name)
		if transfer.Remarks != "" {
			remarks += " - " + transfer.Remarks
		}
		if !transfer.IncludeInRevenue {
			remarks += " (Not included in revenue)"
		}
		var paidAt *time.Time
		if transfer.IsPaid {
			paidAt = &now
		}
		txn := &model.Transaction{
			Code: model.NewTransactionCode(),
			Type: model.TxBranchTransfer,
			Branch: &model.BranchInfo{
				BranchID: branch.ID,
				Name:     branch.Name,
				Location: branch.Location,
			},
			Items:           txnItems,
			TotalAmount:     total,
			PaymentMethod:   model.PayTransfer,
			IsPaid:          transfer.IsPaid,
			PaidAt:          paidAt,
			TransactionDate: now,
			Remarks:         remarks,
		}
		if err := tx.Create(txn).Error; err != nil {
			return err
		}

		transfer.TransactionID = &txn.ID
		transfer.Transaction = txn
		transfer.Status = model.TransferCompleted
		transfer.CompletedAt = &now
		return tx.Omit("Items", "ToBranch", "Transaction").Save(transfer).Error
	})
	if err != nil {
		return nil, err
	}
	publishStockUpdate(s.hub, "transfer_completed", changes)
	return transfer, nil
}

// upsertBranchStock increments an existing branch stock row or creates one.
func upsertBranchStock(tx *gorm.DB, branchID, productID uuid.UUID, quantity int) error {
	var stock model.BranchStock
	err := database.LockForUpdate(tx).
		First(&stock, "branch_id = ? AND product_id = ?", branchID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stock = model.BranchStock{
			BranchID:  branchID,
			ProductID: productID,
			Quantity:  quantity,
		}
		return tx.Create(&stock).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&stock).Update("quantity", stock.Quantity+quantity).Error
}
