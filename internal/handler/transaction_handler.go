package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-stationery-inventory/internal/repository"
	"go-stationery-inventory/internal/service"
)

type TransactionHandler struct {
	service service.TransactionService
}

func NewTransactionHandler(s service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var input service.CreateTransactionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	txn, err := h.service.Create(input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(txn)
}

func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	filter := repository.TransactionFilter{
		Course:        c.Query("course"),
		PaymentMethod: c.Query("paymentMethod"),
	}
	if raw := c.Query("studentId"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid student ID"})
		}
		filter.StudentID = &id
	}
	if raw := c.Query("isPaid"); raw != "" {
		isPaid := raw == "true"
		filter.IsPaid = &isPaid
	}
	transactions, err := h.service.List(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	txn, err := h.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txn)
}

func (h *TransactionHandler) GetTransactionsByStudent(c *fiber.Ctx) error {
	studentID, err := parseUUID(c.Params("studentId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid student ID"})
	}
	transactions, err := h.service.ListByStudent(studentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	var input service.UpdateTransactionInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	txn, err := h.service.Update(id, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txn)
}

func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	if err := h.service.Delete(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted successfully"})
}
