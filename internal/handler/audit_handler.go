package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-stationery-inventory/internal/service"
)

type AuditHandler struct {
	service service.AuditService
}

func NewAuditHandler(s service.AuditService) *AuditHandler {
	return &AuditHandler{service: s}
}

func (h *AuditHandler) CreateAuditLog(c *fiber.Ctx) error {
	var input service.CreateAuditLogInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	log, err := h.service.Create(input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(log)
}

func (h *AuditHandler) GetAuditLogs(c *fiber.Ctx) error {
	status := c.Query("status", "all")
	logs, err := h.service.List(status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(logs)
}

type auditDecisionRequest struct {
	ApprovedBy string `json:"approved_by"`
	Notes      string `json:"notes"`
}

func (h *AuditHandler) ApproveAuditLog(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid audit log ID"})
	}
	var req auditDecisionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	log, err := h.service.Approve(id, req.ApprovedBy)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Audit log approved", "data": log})
}

func (h *AuditHandler) RejectAuditLog(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid audit log ID"})
	}
	var req auditDecisionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	log, err := h.service.Reject(id, req.ApprovedBy, req.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Audit log rejected", "data": log})
}
