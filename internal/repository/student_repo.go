package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-stationery-inventory/internal/model"
)

type StudentRepository interface {
	Create(student *model.Student) error
	FindAll(course string) ([]model.Student, error)
	FindByID(id uuid.UUID) (*model.Student, error)
	Save(student *model.Student) error
	// RemoveItemKey unsets the given item key on every student that has it.
	RemoveItemKey(key string) error
}

type studentRepo struct {
	db *gorm.DB
}

func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db}
}

func (r *studentRepo) Create(student *model.Student) error {
	return r.db.Create(student).Error
}

func (r *studentRepo) FindAll(course string) ([]model.Student, error) {
	var students []model.Student
	q := r.db.Order("name ASC")
	if course != "" {
		q = q.Where("course = ?", course)
	}
	err := q.Find(&students).Error
	return students, err
}

func (r *studentRepo) FindByID(id uuid.UUID) (*model.Student, error) {
	var student model.Student
	err := r.db.First(&student, "id = ?", id).Error
	return &student, err
}

func (r *studentRepo) Save(student *model.Student) error {
	return r.db.Save(student).Error
}

// Item maps live in a JSON column, so the key removal is done row by row in
// Go to stay portable across dialects.
func (r *studentRepo) RemoveItemKey(key string) error {
	var students []model.Student
	if err := r.db.Find(&students).Error; err != nil {
		return err
	}
	for i := range students {
		s := &students[i]
		if _, ok := s.Items[key]; !ok {
			continue
		}
		delete(s.Items, key)
		if err := r.db.Model(s).Update("items", s.Items).Error; err != nil {
			return err
		}
	}
	return nil
}
