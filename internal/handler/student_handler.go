package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"go-stationery-inventory/internal/model"
	"go-stationery-inventory/internal/repository"
)

// StudentHandler manages the student directory. The directory is simple
// record keeping, so it talks to the repository directly.
type StudentHandler struct {
	students repository.StudentRepository
}

func NewStudentHandler(students repository.StudentRepository) *StudentHandler {
	return &StudentHandler{students: students}
}

type studentRequest struct {
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
	Course    string `json:"course"`
	Year      int    `json:"year"`
	Branch    string `json:"branch"`
}

func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	var req studentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.StudentID = strings.TrimSpace(req.StudentID)
	if req.Name == "" || req.StudentID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Name and student ID are required"})
	}
	student := &model.Student{
		Name:      req.Name,
		StudentID: req.StudentID,
		Course:    req.Course,
		Year:      req.Year,
		Branch:    req.Branch,
		Items:     model.ItemFlags{},
	}
	if err := h.students.Create(student); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
			return c.Status(409).JSON(fiber.Map{"error": "Student ID already exists"})
		}
		return respondError(c, err)
	}
	return c.Status(201).JSON(student)
}

func (h *StudentHandler) GetStudents(c *fiber.Ctx) error {
	students, err := h.students.FindAll(c.Query("course"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(students)
}

func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid student ID"})
	}
	student, err := h.students.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Student not found"})
		}
		return respondError(c, err)
	}
	return c.JSON(student)
}

func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid student ID"})
	}
	student, err := h.students.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Student not found"})
		}
		return respondError(c, err)
	}
	var req studentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		student.Name = name
	}
	if sid := strings.TrimSpace(req.StudentID); sid != "" {
		student.StudentID = sid
	}
	if req.Course != "" {
		student.Course = req.Course
	}
	if req.Year != 0 {
		student.Year = req.Year
	}
	if req.Branch != "" {
		student.Branch = req.Branch
	}
	if err := h.students.Save(student); err != nil {
		return respondError(c, err)
	}
	return c.JSON(student)
}
