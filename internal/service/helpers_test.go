package service

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-stationery-inventory/internal/model"
	"go-stationery-inventory/internal/repository"
)

type testEnv struct {
	db       *gorm.DB
	catalog  CatalogService
	txns     TransactionService
	transfer TransferService
	audit    AuditService
	students repository.StudentRepository
	products repository.ProductRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	path := filepath.Join(t.TempDir(), "service.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Product{}, &model.ProductSetItem{}, &model.PriceHistoryEntry{},
		&model.Student{},
		&model.Transaction{}, &model.TransactionItem{},
		&model.TransferBranch{}, &model.BranchStock{},
		&model.StockTransfer{}, &model.StockTransferItem{},
		&model.AuditLog{},
	))

	products := repository.NewProductRepo(db)
	students := repository.NewStudentRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	branches := repository.NewBranchRepo(db)
	transfers := repository.NewTransferRepo(db)
	audits := repository.NewAuditLogRepo(db)

	return &testEnv{
		db:       db,
		catalog:  NewCatalogService(products, students, nil),
		txns:     NewTransactionService(db, txRepo, students, nil),
		transfer: NewTransferService(db, transfers, branches, nil),
		audit:    NewAuditService(db, audits, products, nil),
		students: students,
		products: products,
	}
}

func (e *testEnv) createProduct(t *testing.T, name string, stock int, price string) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Stock: stock, Price: decimal.RequireFromString(price)}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) createStudent(t *testing.T, name, studentID string) *model.Student {
	t.Helper()
	s := &model.Student{Name: name, StudentID: studentID, Course: "BSIT", Year: 1, Items: model.ItemFlags{}}
	require.NoError(t, e.db.Create(s).Error)
	return s
}

func (e *testEnv) createBranch(t *testing.T, name string) *model.TransferBranch {
	t.Helper()
	b := &model.TransferBranch{Name: name, IsActive: true}
	require.NoError(t, e.db.Create(b).Error)
	return b
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, e.db.First(&p, "id = ?", id).Error)
	return p.Stock
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func boolPtr(b bool) *bool { return &b }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func statusPtr(s model.TransferStatus) *model.TransferStatus { return &s }
