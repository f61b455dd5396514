package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/service"
)

type CheckoutHandler struct {
	checkoutService CheckoutUseCase
}

func NewCheckoutHandler(checkoutService CheckoutUseCase) *CheckoutHandler {
	if checkoutService == nil {
		panic("checkoutService cannot be nil")
	}
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout POST /checkout
// 成功回 201, CHECKOUT_TIMEOUT 與 CHECKOUT_IN_PROGRESS 可以重試
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		api.ErrorJSON(w, err)
		return
	}

	result, err := h.checkoutService.Checkout(r.Context(), middleware.GetSession(r), service.CheckoutRequest{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, http.StatusCreated, dto.NewCheckoutResponse(result))
}
