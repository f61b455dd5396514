package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
)

type AdminHandler struct {
	inventoryService InventoryUseCase
}

func NewAdminHandler(inventoryService InventoryUseCase) *AdminHandler {
	if inventoryService == nil {
		panic("inventoryService cannot be nil")
	}
	return &AdminHandler{inventoryService: inventoryService}
}

// Restock POST /admin/products/{productID}/stock
func (h *AdminHandler) Restock(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	var req dto.RestockRequest
	if err := decodeJSON(r, &req); err != nil {
		api.ErrorJSON(w, err)
		return
	}

	stock, err := h.inventoryService.Restock(r.Context(), productID, req.Quantity)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, http.StatusOK, dto.RestockResponse{ProductID: productID, StockQuantity: stock})
}
