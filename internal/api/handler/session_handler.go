package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
)

type SessionHandler struct {
	cartService CartUseCase
}

func NewSessionHandler(cartService CartUseCase) *SessionHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &SessionHandler{cartService: cartService}
}

// Logout 清空購物車並讓 cookie 失效
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.cartService.Clear(r.Context(), middleware.GetSession(r)); err != nil {
		api.ErrorJSON(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}
