package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"go-stationery-inventory/internal/apperror"
	"go-stationery-inventory/internal/ledger"
	"go-stationery-inventory/internal/model"
	"go-stationery-inventory/internal/repository"
	"go-stationery-inventory/internal/ws"
)

// TransactionItemInput is one requested line item. Price is client-supplied
// and trusted as given; it is snapshotted, not re-derived from the catalog.
type TransactionItemInput struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
}

type CreateTransactionInput struct {
	StudentID     uuid.UUID              `json:"student_id" validate:"uuid_required"`
	Items         []TransactionItemInput `json:"items" validate:"required,min=1,dive"`
	PaymentMethod model.PaymentMethod    `json:"payment_method" validate:"omitempty,oneof=cash online transfer"`
	IsPaid        bool                   `json:"is_paid"`
	Remarks       string                 `json:"remarks"`
}

// UpdateTransactionInput carries a partial edit. A non-empty Items list
// replaces the whole item list, with the old stock effect restored and the
// new one applied in a single atomic commit.
type UpdateTransactionInput struct {
	Items         []TransactionItemInput `json:"items" validate:"omitempty,dive"`
	PaymentMethod *model.PaymentMethod   `json:"payment_method"`
	IsPaid        *bool                  `json:"is_paid"`
	Remarks       *string                `json:"remarks"`
}

type TransactionService interface {
	Create(input CreateTransactionInput) (*model.Transaction, error)
	Get(id uuid.UUID) (*model.Transaction, error)
	List(filter repository.TransactionFilter) ([]model.Transaction, error)
	ListByStudent(studentID uuid.UUID) ([]model.Transaction, error)
	Update(id uuid.UUID, input UpdateTransactionInput) (*model.Transaction, error)
	Delete(id uuid.UUID) error
}

type transactionService struct {
	db           *gorm.DB
	transactions repository.TransactionRepository
	students     repository.StudentRepository
	hub          *ws.Hub
}

func NewTransactionService(db *gorm.DB, transactions repository.TransactionRepository, students repository.StudentRepository, hub *ws.Hub) TransactionService {
	return &transactionService{db: db, transactions: transactions, students: students, hub: hub}
}

// buildItems stages consumption for every requested item in the accumulator
// and returns the snapshotted transaction items plus the running total.
func buildItems(acc *ledger.Accumulator, tx *gorm.DB, inputs []TransactionItemInput) ([]model.TransactionItem, decimal.Decimal, error) {
	items := make([]model.TransactionItem, 0, len(inputs))
	total := decimal.Zero

	for _, in := range inputs {
		product, err := acc.Add(tx, in.ProductID, -in.Quantity)
		if err != nil {
			return nil, decimal.Zero, err
		}

		itemTotal := in.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
		total = total.Add(itemTotal)

		item := model.TransactionItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  in.Quantity,
			Price:     in.Price,
			Total:     itemTotal,
			IsSet:     product.IsSet,
			Status:    model.ItemFulfilled,
		}
		for _, component := range product.SetItems {
			item.SetComponents = append(item.SetComponents, model.SetComponentSnapshot{
				ProductID: component.ComponentID,
				Name:      component.NameSnapshot,
				Quantity:  component.Quantity,
			})
		}
		items = append(items, item)
	}
	return items, total, nil
}

// restoreItems stages positive deltas mirroring each stored item's original
// expansion. Products deleted since the sale are skipped; the rest of the
// restoration still applies.
func restoreItems(acc *ledger.Accumulator, tx *gorm.DB, items []model.TransactionItem) error {
	for _, item := range items {
		if item.IsSet && len(item.SetComponents) > 0 {
			for _, component := range item.SetComponents {
				_, err := acc.AddDirect(tx, component.ProductID, item.Quantity*component.Quantity)
				if err != nil && !errors.Is(err, apperror.ErrNotFound) {
					return err
				}
			}
			continue
		}
		_, err := acc.AddDirect(tx, item.ProductID, item.Quantity)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (s *transactionService) Create(input CreateTransactionInput) (*model.Transaction, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	student, err := s.students.FindByID(input.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("student", input.StudentID.String())
		}
		return nil, err
	}

	method := input.PaymentMethod
	if method == "" {
		method = model.PayCash
	}

	var (
		txn     *model.Transaction
		changes []ledger.StockChange
	)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		acc := ledger.New()
		items, total, err := buildItems(acc, tx, input.Items)
		if err != nil {
			return err
		}
		changes, err = acc.Commit(tx)
		if err != nil {
			return err
		}

		now := time.Now()
		var paidAt *time.Time
		if input.IsPaid {
			paidAt = &now
		}
		txn = &model.Transaction{
			Code: model.NewTransactionCode(),
			Type: model.TxStudent,
			Student: &model.StudentInfo{
				UserID:    student.ID,
				Name:      student.Name,
				StudentID: student.StudentID,
				Course:    student.Course,
				Year:      student.Year,
				Branch:    student.Branch,
			},
			Items:           items,
			TotalAmount:     total,
			PaymentMethod:   method,
			IsPaid:          input.IsPaid,
			PaidAt:          paidAt,
			TransactionDate: now,
			Remarks:         input.Remarks,
		}
		return tx.Create(txn).Error
	})
	if err != nil {
		return nil, err
	}

	s.syncStudentAfterSale(student.ID, txn.Items, input.IsPaid)
	publishStockUpdate(s.hub, "transaction_created", changes)
	return txn, nil
}

// syncStudentAfterSale updates the student's item-received map and paid flag.
// Best-effort: failures are logged, never propagated, so denormalized student
// state cannot roll back a committed sale.
func (s *transactionService) syncStudentAfterSale(studentID uuid.UUID, items []model.TransactionItem, isPaid bool) {
	student, err := s.students.FindByID(studentID)
	if err != nil {
		log.Warn().Err(err).Str("student_id", studentID.String()).
			Msg("student sync skipped: lookup failed")
		return
	}
	if student.Items == nil {
		student.Items = model.ItemFlags{}
	}
	for _, item := range items {
		student.Items[model.ItemKey(item.Name)] = true
	}
	if isPaid && !student.Paid {
		student.Paid = true
	}
	if err := s.students.Save(student); err != nil {
		log.Warn().Err(err).Str("student_id", studentID.String()).
			Msg("student sync failed")
	}
}

func (s *transactionService) Get(id uuid.UUID) (*model.Transaction, error) {
	txn, err := s.transactions.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("transaction", id.String())
		}
		return nil, err
	}
	return txn, nil
}

func (s *transactionService) List(filter repository.TransactionFilter) ([]model.Transaction, error) {
	return s.transactions.FindAll(filter)
}

func (s *transactionService) ListByStudent(studentID uuid.UUID) ([]model.Transaction, error) {
	if _, err := s.students.FindByID(studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("student", studentID.String())
		}
		return nil, err
	}
	return s.transactions.FindByStudent(studentID)
}

func (s *transactionService) Update(id uuid.UUID, input UpdateTransactionInput) (*model.Transaction, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	if input.PaymentMethod != nil {
		switch *input.PaymentMethod {
		case model.PayCash, model.PayOnline, model.PayTransfer:
		default:
			return nil, apperror.Validation("invalid payment method: %s", *input.PaymentMethod)
		}
	}

	var (
		txn     *model.Transaction
		changes []ledger.StockChange
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var loaded model.Transaction
		err := tx.Preload("Items").First(&loaded, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("transaction", id.String())
			}
			return err
		}
		txn = &loaded

		if len(input.Items) > 0 {
			// Restoration of the old items and consumption of the new ones
			// are staged in one accumulator, so a failing new list leaves
			// stock exactly as it was.
			acc := ledger.New()
			if err := restoreItems(acc, tx, txn.Items); err != nil {
				return err
			}
			items, total, err := buildItems(acc, tx, input.Items)
			if err != nil {
				return err
			}
			changes, err = acc.Commit(tx)
			if err != nil {
				return err
			}

			if err := tx.Where("transaction_id = ?", txn.ID).
				Delete(&model.TransactionItem{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].TransactionID = txn.ID
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			txn.Items = items
			txn.TotalAmount = total
		}

		if input.PaymentMethod != nil {
			txn.PaymentMethod = *input.PaymentMethod
		}
		if input.IsPaid != nil {
			txn.IsPaid = *input.IsPaid
			if *input.IsPaid {
				now := time.Now()
				txn.PaidAt = &now
			} else {
				txn.PaidAt = nil
			}
		}
		if input.Remarks != nil {
			txn.Remarks = *input.Remarks
		}
		return tx.Omit("Items").Save(txn).Error
	})
	if err != nil {
		return nil, err
	}

	if txn.Student != nil {
		if len(input.Items) > 0 {
			s.syncStudentAfterSale(txn.Student.UserID, txn.Items, txn.IsPaid)
		}
		if input.IsPaid != nil {
			s.syncStudentPaid(txn.Student.UserID, *input.IsPaid)
		}
	}
	publishStockUpdate(s.hub, "transaction_updated", changes)
	return txn, nil
}

// syncStudentPaid mirrors a payment toggle onto the student record.
func (s *transactionService) syncStudentPaid(studentID uuid.UUID, isPaid bool) {
	student, err := s.students.FindByID(studentID)
	if err != nil {
		log.Warn().Err(err).Str("student_id", studentID.String()).
			Msg("student paid sync skipped: lookup failed")
		return
	}
	student.Paid = isPaid
	if err := s.students.Save(student); err != nil {
		log.Warn().Err(err).Str("student_id", studentID.String()).
			Msg("student paid sync failed")
	}
}

func (s *transactionService) Delete(id uuid.UUID) error {
	var changes []ledger.StockChange
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txn model.Transaction
		err := tx.Preload("Items").First(&txn, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("transaction", id.String())
			}
			return err
		}

		acc := ledger.New()
		if err := restoreItems(acc, tx, txn.Items); err != nil {
			return err
		}
		changes, err = acc.Commit(tx)
		if err != nil {
			return err
		}

		if err := tx.Where("transaction_id = ?", txn.ID).
			Delete(&model.TransactionItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&txn).Error
	})
	if err != nil {
		return err
	}
	publishStockUpdate(s.hub, "transaction_deleted", changes)
	return nil
}
