package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"go-stationery-inventory/internal/repository"
	"go-stationery-inventory/internal/service"
)

type TransferHandler struct {
	service service.TransferService
}

func NewTransferHandler(s service.TransferService) *TransferHandler {
	return &TransferHandler{service: s}
}

// Branch endpoints.

func (h *TransferHandler) CreateBranch(c *fiber.Ctx) error {
	var input service.BranchInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	branch, err := h.service.CreateBranch(input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(branch)
}

func (h *TransferHandler) GetBranches(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"
	branches, err := h.service.ListBranches(activeOnly)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(branches)
}

func (h *TransferHandler) GetBranch(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}
	branch, err := h.service.GetBranch(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(branch)
}

func (h *TransferHandler) UpdateBranch(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}
	var input service.BranchInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	branch, err := h.service.UpdateBranch(id, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(branch)
}

func (h *TransferHandler) DeleteBranch(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}
	if err := h.service.DeleteBranch(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Branch deleted successfully"})
}

func (h *TransferHandler) GetBranchStockAll(c *fiber.Ctx) error {
	branchID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}
	stock, err := h.service.GetBranchStockAll(branchID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stock)
}

func (h *TransferHandler) GetBranchStock(c *fiber.Ctx) error {
	branchID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}
	productID, err := parseUUID(c.Params("productId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	stock, err := h.service.GetBranchStock(branchID, productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stock)
}

// Transfer endpoints.

func (h *TransferHandler) CreateTransfer(c *fiber.Ctx) error {
	var input service.CreateTransferInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	transfer, err := h.service.Create(input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(transfer)
}

func (h *TransferHandler) GetTransfers(c *fiber.Ctx) error {
	filter := repository.TransferFilter{
		Status: c.Query("status"),
	}
	if raw := c.Query("productId"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
		}
		filter.ProductID = &id
	}
	if raw := c.Query("branchId"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
		}
		filter.BranchID = &id
	}
	if raw := c.Query("isPaid"); raw != "" {
		isPaid := raw == "true"
		filter.IsPaid = &isPaid
	}
	if raw := c.Query("startDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid start date"})
		}
		filter.StartDate = &t
	}
	if raw := c.Query("endDate"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid end date"})
		}
		filter.EndDate = &t
	}
	transfers, err := h.service.List(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transfers)
}

func (h *TransferHandler) GetTransfer(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}
	transfer, err := h.service.Get(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transfer)
}

func (h *TransferHandler) UpdateTransfer(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}
	var input service.UpdateTransferInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	transfer, err := h.service.Update(id, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transfer)
}

func (h *TransferHandler) DeleteTransfer(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}
	if err := h.service.Delete(id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer deleted successfully"})
}

func (h *TransferHandler) CompleteTransfer(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transfer ID"})
	}
	transfer, err := h.service.Complete(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transfer completed successfully", "data": transfer})
}
