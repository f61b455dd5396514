package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/apperr"
)

// AdminMiddleware token 為空時整組 admin 路由關閉
func AdminMiddleware(token string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				http.NotFound(w, r)
				return
			}
			given := r.Header.Get(constants.HeaderAdminToken)
			if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				api.ErrorJSON(w, apperr.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
