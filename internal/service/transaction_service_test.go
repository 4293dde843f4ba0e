package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-stationery-inventory/internal/apperror"
	"go-stationery-inventory/internal/model"
	"go-stationery-inventory/internal/repository"
)

func TestCreateTransactionDeductsStock(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Notebook", 10, "20.00")
	s := env.createStudent(t, "Ana Cruz", "2024-0001")

	txn, err := env.txns.Create(CreateTransactionInput{
		StudentID: s.ID,
		Items: []TransactionItemInput{
			{ProductID: p.ID, Quantity: 3, Price: decimal.RequireFromString("20.00")},
		},
		IsPaid: true,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(txn.Code, "TXN-"))
	assert.Equal(t, model.TxStudent, txn.Type)
	assert.Equal(t, model.PayCash, txn.PaymentMethod)
	assert.True(t, txn.TotalAmount.Equal(decimal.RequireFromString("60.00")))
	require.NotNil(t, txn.PaidAt)
	require.NotNil(t, txn.Student)
	assert.Equal(t, "Ana Cruz", txn.Student.Name)

	assert.Equal(t, 7, env.stockOf(t, p.ID))

	// Denormalized student state follows the sale.
	student, err := env.students.FindByID(s.ID)
	require.NoError(t, err)
	assert.True(t, student.Items["notebook"])
	assert.True(t, student.Paid)
}

func TestCreateTransactionInsufficientStockRollsBack(t *testing.T) {
	env := newTestEnv(t)
	a := env.createProduct(t, "Notebook", 10, "20.00")
	b := env.createProduct(t, "Pencil", 2, "5.00")
	s := env.createStudent(t, "Ana Cruz", "2024-0001")

	_, err := env.txns.Create(CreateTransactionInput{
		StudentID: s.ID,
		Items: []TransactionItemInput{
			{ProductID: a.ID, Quantity: 3, Price: decimal.RequireFromString("20.00")},
			{ProductID: b.ID, Quantity: 5, Price: decimal.RequireFromString("5.00")},
		},
	})
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)

	// The passing first line must not have moved anything.
	assert.Equal(t, 10, env.stockOf(t, a.ID))
	assert.Equal(t, 2, env.stockOf(t, b.ID))

	var count int64
	require.NoError(t, env.db.Model(&model.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateTransactionNegativePriceRejected(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Notebook", 10, "20.00")
	s := env.createStudent(t, "Ana Cruz", "2024-0001")

	_, err := env.txns.Create(CreateTransactionInput{
		StudentID: s.ID,
		Items: []TransactionItemInput{
			{ProductID: p.ID, Quantity: 1, Price: decimal.RequireFromString("-5")},
		},
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, 10, env.stockOf(t, p.ID))
}

func TestCreateTransactionUnknownStudent(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Notebook", 10, "20.00")
	s := env.createStudent(t, "Ana Cruz", "2024-0001")
	require.NoError(t, env.db.Delete(s).Error)

	_, err := env.txns.Create(CreateTransactionInput{
		StudentID: s.ID,
		Items: []TransactionItemInput{
			{ProductID: p.ID, Quantity: 1, Price: decimal.RequireFromString("20.00")},
		},
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateTransactionSetSnapshotsExpansion(t *testing.T) {
	env := newTestEnv(t)
	pen := env.createProduct(t, "Ballpen", 10, "10.00")
	pad := env.createProduct(t, "Writing Pad", 10, "25.00")
	s := env.createStudent(t, "Ana Cruz", "2024-0001")

	set, err := env.catalog.CreateProduct(CreateProductInput{
		Name:  "Freshman Kit",
		Price: decimal.RequireFromString("45.00"),
		IsSet: true,
		SetItems: []SetItemInput{
			{ComponentID: pen.ID, Quantity: 2},
			{ComponentID: pad.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	txn, err := env.txns.Create(CreateTransactionInput{
		StudentID: s.ID,
		Items: []TransactionItemInput{
			{ProductID: set.ID, Quantity: 2, Price: decimal.RequireFromString("45.00")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 6, env.stockOf(t, pen.ID))
	assert.Equal(t, 8, env.stockOf(t, pad.ID))

	require.Len(t, txn.Items, 1)
	item := txn.Items[0]
	assert.True(t, item.IsSet)
	require.Len(t, item.SetComponents, 2)
}

func TestDeleteTransactionRestoresStock(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Notebook", 10, "20.00")
	s := env.createStudent(t, "Ana Cruz", "2024-0001")

	txn, err := env.txns.Create(CreateTransactionInput{
		StudentID: s.ID,
		Items: []TransactionItemInput{
			{ProductID: p.ID, Quantity: 4, Price: decimal.RequireFromString("20.00")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 6, env.stockOf(t, p.ID))

	require.NoError(t, env.txns.Delete(txn.ID))
	assert.Equal(t, 10, env.stockOf(t, p.ID))

	_, err = env.txns.Get(txn.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteSetTransactionReplaysSnapshot(t *testing.T) {
	env := newTestEnv(t)
	pen := env.createProduct(t, "Ballpen", 10, "10.00")
	s := env.createStudent(t, "Ana Cruz", "2024-0001")

	set, err := env.catalog.CreateProduct(CreateProductInput{
		Name:  "Pen Kit",
		IsSet: true,
		SetItems: []SetItemInput{
			{ComponentID: pen.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	txn, err := env.txns.Create(CreateTransactionInput{
		StudentID: s.ID,
		Items: []TransactionItemInput{
			{ProductID: set.ID, Quantity: 2, Price: decimal.Zero},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 4, env.stockOf(t, pen.ID))

	// Change the definition after the sale; restoration must follow the
	// snapshot, not the new definition.
	require.NoError(t, env.db.Model(&model.ProductSetItem{}).
		Where("product_id = ?", set.ID).Update("quantity", 1).Error)

	require.NoError(t, env.txns.Delete(txn.ID))
	assert.Equal(t, 10, env.stockOf(t, pen.ID))
}

func TestUpdateTransactionReplacesItemsAtomically(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Notebook", 10, "20.00")
	s := env.createStudent(t, "Ana Cruz", "2024-0001")

	txn, err := env.txns.Create(CreateTransactionInput{
		StudentID: s.ID,
		Items: []TransactionItemInput{
			{ProductID: p.ID, Quantity: 2, Price: decimal.RequireFromString("20.00")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 8, env.stockOf(t, p.ID))

	updated, err := env.txns.Update(txn.ID, UpdateTransactionInput{
		Items: []TransactionItemInput{
			{ProductID: p.ID, Quantity: 3, Price: decimal.RequireFromString("20.00")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 7, env.stockOf(t, p.ID))
	assert.True(t, updated.TotalAmount.Equal(decimal.RequireFromString("60.00")))
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 3, updated.Items[0].Quantity)
}

func TestUpdateTransactionFailingItemsLeavesStockUntouched(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Notebook", 10, "20.00")
	s := env.createStudent(t, "Ana Cruz", "2024-0001")

	txn, err := env.txns.Create(CreateTransactionInput{
		StudentID: s.ID,
		Items: []TransactionItemInput{
			{ProductID: p.ID, Quantity: 2, Price: decimal.RequireFromString("20.00")},
		},
	})
	require.NoError(t, err)

	// Restored 2 + persisted 8 = 10 projected; 11 must fail and change
	// nothing.
	_, err = env.txns.Update(txn.ID, UpdateTransactionInput{
		Items: []TransactionItemInput{
			{ProductID: p.ID, Quantity: 11, Price: decimal.RequireFromString("20.00")},
		},
	})
	assert.ErrorIs(t, err, apperror.ErrInsufficientStock)
	assert.Equal(t, 8, env.stockOf(t, p.ID))

	reloaded, err := env.txns.Get(txn.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, 2, reloaded.Items[0].Quantity)
}

func TestUpdateTransactionPaymentToggle(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Notebook", 10, "20.00")
	s := env.createStudent(t, "Ana Cruz", "2024-0001")

	txn, err := env.txns.Create(CreateTransactionInput{
		StudentID: s.ID,
		Items: []TransactionItemInput{
			{ProductID: p.ID, Quantity: 1, Price: decimal.RequireFromString("20.00")},
		},
	})
	require.NoError(t, err)
	require.Nil(t, txn.PaidAt)

	paid, err := env.txns.Update(txn.ID, UpdateTransactionInput{IsPaid: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.NotNil(t, paid.PaidAt)

	student, err := env.students.FindByID(s.ID)
	require.NoError(t, err)
	assert.True(t, student.Paid)

	unpaid, err := env.txns.Update(txn.ID, UpdateTransactionInput{IsPaid: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, unpaid.IsPaid)
	assert.Nil(t, unpaid.PaidAt)

	student, err = env.students.FindByID(s.ID)
	require.NoError(t, err)
	assert.False(t, student.Paid)
}

func TestListTransactionsFilters(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Notebook", 50, "20.00")
	ana := env.createStudent(t, "Ana Cruz", "2024-0001")
	ben := &model.Student{Name: "Ben Reyes", StudentID: "2024-0002", Course: "BSED", Items: model.ItemFlags{}}
	require.NoError(t, env.db.Create(ben).Error)

	_, err := env.txns.Create(CreateTransactionInput{
		StudentID: ana.ID,
		Items:     []TransactionItemInput{{ProductID: p.ID, Quantity: 1, Price: decimal.Zero}},
		IsPaid:    true,
	})
	require.NoError(t, err)
	_, err = env.txns.Create(CreateTransactionInput{
		StudentID: ben.ID,
		Items:     []TransactionItemInput{{ProductID: p.ID, Quantity: 1, Price: decimal.Zero}},
	})
	require.NoError(t, err)

	byCourse, err := env.txns.List(repository.TransactionFilter{Course: "BSED"})
	require.NoError(t, err)
	require.Len(t, byCourse, 1)
	assert.Equal(t, "Ben Reyes", byCourse[0].Student.Name)

	paid := true
	byPaid, err := env.txns.List(repository.TransactionFilter{IsPaid: &paid})
	require.NoError(t, err)
	require.Len(t, byPaid, 1)
	assert.Equal(t, "Ana Cruz", byPaid[0].Student.Name)

	byStudent, err := env.txns.ListByStudent(ana.ID)
	require.NoError(t, err)
	assert.Len(t, byStudent, 1)
}
