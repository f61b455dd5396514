package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
)

type CartHandler struct {
	cartService CartUseCase
}

func NewCartHandler(cartService CartUseCase) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService}
}

// AddItem POST /cart/items
// quantity 沒帶時為 1, Idempotency-Key header 可讓重送不重複加入
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		api.ErrorJSON(w, err)
		return
	}
	delta := 1
	if req.Quantity != nil {
		delta = *req.Quantity
	}

	count, err := h.cartService.Add(r.Context(), middleware.GetSession(r), req.ProductID, delta, r.Header.Get(constants.HeaderIdempotencyKey))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, http.StatusOK, dto.CartCountResponse{CartCount: count})
}

// SetItem PUT /cart/items/{productID}
func (h *CartHandler) SetItem(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	var req dto.SetCartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		api.ErrorJSON(w, err)
		return
	}
	if req.Quantity == nil {
		api.ErrorJSON(w, apperr.InvalidArgument("quantity is required"))
		return
	}

	count, err := h.cartService.SetQuantity(r.Context(), middleware.GetSession(r), productID, *req.Quantity)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, http.StatusOK, dto.CartCountResponse{CartCount: count})
}

// RemoveItem DELETE /cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	count, err := h.cartService.Remove(r.Context(), middleware.GetSession(r), productID)
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, http.StatusOK, dto.CartCountResponse{CartCount: count})
}

func (h *CartHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.cartService.Count(r.Context(), middleware.GetSession(r))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, http.StatusOK, dto.CartCountResponse{CartCount: count})
}

func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.cartService.View(r.Context(), middleware.GetSession(r))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, http.StatusOK, dto.NewCartViewResponse(view))
}
