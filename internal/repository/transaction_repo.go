package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-stationery-inventory/internal/model"
)

// TransactionFilter narrows transaction listings. Nil booleans mean "any".
type TransactionFilter struct {
	Course        string
	StudentID     *uuid.UUID
	PaymentMethod string
	IsPaid        *bool
}

type TransactionRepository interface {
	FindAll(filter TransactionFilter) ([]model.Transaction, error)
	FindByID(id uuid.UUID) (*model.Transaction, error)
	FindByStudent(studentID uuid.UUID) ([]model.Transaction, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) FindAll(filter TransactionFilter) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := r.db.Preload("Items").Order("transaction_date DESC")

	// Student snapshots live in a JSON column; course and student filters are
	// applied in Go for dialect portability.
	if filter.PaymentMethod != "" {
		q = q.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.IsPaid != nil {
		q = q.Where("is_paid = ?", *filter.IsPaid)
	}
	if err := q.Find(&transactions).Error; err != nil {
		return nil, err
	}

	if filter.Course == "" && filter.StudentID == nil {
		return transactions, nil
	}
	out := transactions[:0]
	for _, t := range transactions {
		if filter.Course != "" && (t.Student == nil || t.Student.Course != filter.Course) {
			continue
		}
		if filter.StudentID != nil && (t.Student == nil || t.Student.UserID != *filter.StudentID) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.Preload("Items").First(&transaction, "id = ?", id).Error
	return &transaction, err
}

func (r *transactionRepo) FindByStudent(studentID uuid.UUID) ([]model.Transaction, error) {
	return r.FindAll(TransactionFilter{StudentID: &studentID})
}
