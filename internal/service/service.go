// Package service implements the business workflows: catalog maintenance,
// sales transactions, branch transfers and audit-gated stock corrections.
// All stock mutation flows through the ledger accumulator inside a single
// database transaction per operation.
package service

import (
	"go-stationery-inventory/internal/apperror"
	"go-stationery-inventory/internal/ledger"
	"go-stationery-inventory/internal/ws"
	"go-stationery-inventory/pkg/validator"
)

// validateInput runs struct validation and converts the first failure into a
// ValidationError.
func validateInput(data interface{}) error {
	errs := validator.ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return apperror.Validation("validation failed: field '%s' failed on tag '%s'",
		first.Field, first.Tag)
}

// publishStockUpdate broadcasts committed stock changes to ws clients.
func publishStockUpdate(hub *ws.Hub, action string, changes []ledger.StockChange) {
	if len(changes) == 0 {
		return
	}
	hub.Publish(map[string]interface{}{
		"type":    "stock_update",
		"action":  action,
		"changes": changes,
	})
}
