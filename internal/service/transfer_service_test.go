package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-stationery-inventory/internal/apperror"
	"go-stationery-inventory/internal/model"
	"go-stationery-inventory/internal/repository"
)

func (e *testEnv) branchStockOf(t *testing.T, branchID, productID uuid.UUID) int {
	t.Helper()
	view, err := e.transfer.GetBranchStock(branchID, productID)
	require.NoError(t, err)
	return view.Quantity
}

func TestCreateBranch(t *testing.T) {
	env := newTestEnv(t)

	branch, err := env.transfer.CreateBranch(BranchInput{
		Name:     strPtr("  North Campus  "),
		Location: strPtr("Building B"),
	})
	require.NoError(t, err)
	assert.Equal(t, "North Campus", branch.Name)
	assert.True(t, branch.IsActive)

	_, err = env.transfer.CreateBranch(BranchInput{Name: strPtr("North Campus")})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = env.transfer.CreateBranch(BranchInput{Name: strPtr("   ")})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdateBranchNameConflict(t *testing.T) {
	env := newTestEnv(t)
	env.createBranch(t, "North Campus")
	south := env.createBranch(t, "South Campus")

	_, err := env.transfer.UpdateBranch(south.ID, BranchInput{Name: strPtr("North Campus")})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// Saving under its own name is not a conflict.
	updated, err := env.transfer.UpdateBranch(south.ID, BranchInput{
		Name:     strPtr("South Campus"),
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestDeleteBranchBlockedByTransfers(t *testing.T) {
	env := newTestEnv(t)
	branch := env.createBranch(t, "North Campus")
	p := env.createProduct(t, "Notebook", 10, "20.00")

	_, err := env.transfer.Create(CreateTransferInput{
		Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 2}},
		ToBranchID: branch.ID,
	})
	require.NoError(t, err)

	err = env.transfer.DeleteBranch(branch.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	empty := env.createBranch(t, "South Campus")
	require.NoError(t, env.transfer.DeleteBranch(empty.ID))
}

func TestCreateTransferStaysPending(t *testing.T) {
	env := newTestEnv(t)
	branch := env.createBranch(t, "North Campus")
	p := env.createProduct(t, "Notebook", 10, "20.00")

	transfer, err := env.transfer.Create(CreateTransferInput{
		Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 4}},
		ToBranchID: branch.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TransferPending, transfer.Status)
	assert.True(t, transfer.DeductFromCentral)
	assert.True(t, transfer.IncludeInRevenue)
	assert.False(t, transfer.IsPaid)
	assert.Equal(t, "System", transfer.CreatedByName)

	// Creation only validates; no stock moves before completion.
	assert.Equal(t, 10, env.stockOf(t, p.ID))
	assert.Equal(t, 0, env.branchStockOf(t, branch.ID, p.ID))
}

func TestCreateTransferRejectsInsufficientProjection(t *testing.T) {
	env := newTestEnv(t)
	branch := env.createBranch(t, "North Campus")
	p := env.createProduct(t, "Notebook", 3, "20.00")

	_, err := env.transfer.Create(CreateTransferInput{
		Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 5}},
		ToBranchID: branch.ID,
	})
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)

	// Without central deduction the same quantity is accepted.
	_, err = env.transfer.Create(CreateTransferInput{
		Items:             []TransferItemInput{{ProductID: p.ID, Quantity: 5}},
		ToBranchID:        branch.ID,
		DeductFromCentral: boolPtr(false),
	})
	assert.NoError(t, err)
}

func TestCreateTransferInactiveBranch(t *testing.T) {
	env := newTestEnv(t)
	branch := env.createBranch(t, "North Campus")
	p := env.createProduct(t, "Notebook", 10, "20.00")
	require.NoError(t, env.db.Model(branch).Update("is_active", false).Error)

	_, err := env.transfer.Create(CreateTransferInput{
		Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 1}},
		ToBranchID: branch.ID,
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCompleteTransferMovesStock(t *testing.T) {
	env := newTestEnv(t)
	branch := env.createBranch(t, "North Campus")
	p := env.createProduct(t, "Notebook", 10, "20.00")

	transfer, err := env.transfer.Create(CreateTransferInput{
		Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 4}},
		ToBranchID: branch.ID,
		IsPaid:     boolPtr(true),
	})
	require.NoError(t, err)

	completed, err := env.transfer.Complete(transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransferCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	require.NotNil(t, completed.TransactionID)

	assert.Equal(t, 6, env.stockOf(t, p.ID))
	assert.Equal(t, 4, env.branchStockOf(t, branch.ID, p.ID))

	// Completion records a bookkeeping transaction at catalog prices.
	txn, err := env.txns.Get(*completed.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, model.TxBranchTransfer, txn.Type)
	assert.Equal(t, model.PayTransfer, txn.PaymentMethod)
	assert.True(t, txn.IsPaid)
	assert.True(t, txn.TotalAmount.Equal(decimal.RequireFromString("80.00")))
	require.NotNil(t, txn.Branch)
	assert.Equal(t, "North Campus", txn.Branch.Name)
}

func TestCompleteTransferWithoutCentralDeduction(t *testing.T) {
	env := newTestEnv(t)
	branch := env.createBranch(t, "North Campus")
	p := env.createProduct(t, "Notebook", 10, "20.00")

	transfer, err := env.transfer.Create(CreateTransferInput{
		Items:             []TransferItemInput{{ProductID: p.ID, Quantity: 4}},
		ToBranchID:        branch.ID,
		DeductFromCentral: boolPtr(false),
		IncludeInRevenue:  boolPtr(false),
	})
	require.NoError(t, err)

	completed, err := env.transfer.Complete(transfer.ID)
	require.NoError(t, err)

	// Central pool untouched, branch still incremented.
	assert.Equal(t, 10, env.stockOf(t, p.ID))
	assert.Equal(t, 4, env.branchStockOf(t, branch.ID, p.ID))

	txn, err := env.txns.Get(*completed.TransactionID)
	require.NoError(t, err)
	assert.Contains(t, txn.Remarks, "(Not included in revenue)")
}

func TestCompleteTransferAccumulatesBranchStock(t *testing.T) {
	env := newTestEnv(t)
	branch := env.createBranch(t, "North Campus")
	p := env.createProduct(t, "Notebook", 20, "20.00")

	for i := 0; i < 2; i++ {
		transfer, err := env.transfer.Create(CreateTransferInput{
			Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 3}},
			ToBranchID: branch.ID,
		})
		require.NoError(t, err)
		_, err = env.transfer.Complete(transfer.ID)
		require.NoError(t, err)
	}

	assert.Equal(t, 14, env.stockOf(t, p.ID))
	assert.Equal(t, 6, env.branchStockOf(t, branch.ID, p.ID))
}

func TestGetBranchStockAll(t *testing.T) {
	env := newTestEnv(t)
	branch := env.createBranch(t, "North Campus")
	notebook := env.createProduct(t, "Notebook", 20, "20.00")
	pencil := env.createProduct(t, "Pencil", 20, "5.00")

	empty, err := env.transfer.GetBranchStockAll(branch.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	transfer, err := env.transfer.Create(CreateTransferInput{
		Items: []TransferItemInput{
			{ProductID: notebook.ID, Quantity: 3},
			{ProductID: pencil.ID, Quantity: 5},
		},
		ToBranchID: branch.ID,
	})
	require.NoError(t, err)
	_, err = env.transfer.Complete(transfer.ID)
	require.NoError(t, err)

	stock, err := env.transfer.GetBranchStockAll(branch.ID)
	require.NoError(t, err)
	require.Len(t, stock, 2)
	byProduct := map[uuid.UUID]int{}
	for _, row := range stock {
		byProduct[row.ProductID] = row.Quantity
	}
	assert.Equal(t, 3, byProduct[notebook.ID])
	assert.Equal(t, 5, byProduct[pencil.ID])

	_, err = env.transfer.GetBranchStockAll(uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCompleteTransferStateGuards(t *testing.T) {
	env := newTestEnv(t)
	branch := env.createBranch(t, "North Campus")
	p := env.createProduct(t, "Notebook", 10, "20.00")

	transfer, err := env.transfer.Create(CreateTransferInput{
		Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 2}},
		ToBranchID: branch.ID,
	})
	require.NoError(t, err)

	_, err = env.transfer.Complete(transfer.ID)
	require.NoError(t, err)

	// Completion is not repeatable.
	_, err = env.transfer.Complete(transfer.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidStateTransition)
	assert.Equal(t, 8, env.stockOf(t, p.ID))
	assert.Equal(t, 2, env.branchStockOf(t, branch.ID, p.ID))
}

func TestCancelTransfer(t *testing.T) {
	env := newTestEnv(t)
	branch := env.createBranch(t, "North Campus")
	p := env.createProduct(t, "Notebook", 10, "20.00")

	transfer, err := env.transfer.Create(CreateTransferInput{
		Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 2}},
		ToBranchID: branch.ID,
	})
	require.NoError(t, err)

	cancelled, err := env.transfer.Update(transfer.ID, UpdateTransferInput{
		Status: statusPtr(model.TransferCancelled),
	})
	require.NoError(t, err)
	assert.Equal(t, model.TransferCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 10, env.stockOf(t, p.ID))

	// A cancelled transfer cannot be completed or re-cancelled.
	_, err = env.transfer.Complete(transfer.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidStateTransition)
	_, err = env.transfer.Update(transfer.ID, UpdateTransferInput{
		Status: statusPtr(model.TransferCancelled),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidStateTransition)
}

func TestUpdateTransferCannotComplete(t *testing.T) {
	env := newTestEnv(t)
	branch := env.createBranch(t, "North Campus")
	p := env.createProduct(t, "Notebook", 10, "20.00")

	transfer, err := env.transfer.Create(CreateTransferInput{
		Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 2}},
		ToBranchID: branch.ID,
	})
	require.NoError(t, err)

	_, err = env.transfer.Update(transfer.ID, UpdateTransferInput{
		Status: statusPtr(model.TransferCompleted),
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestDeleteTransferPendingOnly(t *testing.T) {
	env := newTestEnv(t)
	branch := env.createBranch(t, "North Campus")
	p := env.createProduct(t, "Notebook", 10, "20.00")

	pending, err := env.transfer.Create(CreateTransferInput{
		Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 2}},
		ToBranchID: branch.ID,
	})
	require.NoError(t, err)
	require.NoError(t, env.transfer.Delete(pending.ID))

	done, err := env.transfer.Create(CreateTransferInput{
		Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 2}},
		ToBranchID: branch.ID,
	})
	require.NoError(t, err)
	_, err = env.transfer.Complete(done.ID)
	require.NoError(t, err)

	err = env.transfer.Delete(done.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidStateTransition)
}

func TestListTransfersFilters(t *testing.T) {
	env := newTestEnv(t)
	north := env.createBranch(t, "North Campus")
	south := env.createBranch(t, "South Campus")
	p := env.createProduct(t, "Notebook", 50, "20.00")

	toNorth, err := env.transfer.Create(CreateTransferInput{
		Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 1}},
		ToBranchID: north.ID,
	})
	require.NoError(t, err)
	_, err = env.transfer.Create(CreateTransferInput{
		Items:      []TransferItemInput{{ProductID: p.ID, Quantity: 1}},
		ToBranchID: south.ID,
	})
	require.NoError(t, err)
	_, err = env.transfer.Complete(toNorth.ID)
	require.NoError(t, err)

	byBranch, err := env.transfer.List(repository.TransferFilter{BranchID: &north.ID})
	require.NoError(t, err)
	assert.Len(t, byBranch, 1)

	byStatus, err := env.transfer.List(repository.TransferFilter{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, south.ID, byStatus[0].ToBranchID)

	byProduct, err := env.transfer.List(repository.TransferFilter{ProductID: &p.ID})
	require.NoError(t, err)
	assert.Len(t, byProduct, 2)
}
