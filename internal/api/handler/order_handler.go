package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orderService OrderUseCase
}

func NewOrderHandler(orderService OrderUseCase) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrder(r.Context(), middleware.GetSession(r), chi.URLParam(r, "orderID"))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	api.SuccessJSON(w, http.StatusOK, dto.NewOrderDTO(order))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context(), middleware.GetSession(r))
	if err != nil {
		api.ErrorJSON(w, err)
		return
	}
	res := make([]dto.OrderDTO, 0, len(orders))
	for i := range orders {
		res = append(res, dto.NewOrderDTO(&orders[i]))
	}
	api.SuccessJSON(w, http.StatusOK, res)
}
