package router

import (
	"net/http"
	"time"

	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Server struct {
	CartHandler     *handler.CartHandler
	CheckoutHandler *handler.CheckoutHandler
	OrderHandler    *handler.OrderHandler
	SessionHandler  *handler.SessionHandler
	AdminHandler    *handler.AdminHandler
}

type Options struct {
	SessionTTL      time.Duration
	SecureCookie    bool
	AdminToken      string
	CheckoutLimiter ratelimit.Limiter
	RequestTimeout  time.Duration
}

func SetupRouter(server *Server, opts Options, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.SessionMiddleware(opts.SessionTTL, opts.SecureCookie))
	r.Use(m.IdentityMiddleware)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(m.RecoverMiddleware(logger))
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", server.CartHandler.View)
			r.Get("/count", server.CartHandler.Count)
			r.Post("/items", server.CartHandler.AddItem)
			r.Put("/items/{productID}", server.CartHandler.SetItem)
			r.Delete("/items/{productID}", server.CartHandler.RemoveItem)
		})

		r.Group(func(r chi.Router) {
			if opts.CheckoutLimiter != nil {
				r.Use(m.RateLimitMiddleware(opts.CheckoutLimiter))
			}
			r.Post("/checkout", server.CheckoutHandler.Checkout)
		})

		r.Get("/orders", server.OrderHandler.List)
		r.Get("/orders/{orderID}", server.OrderHandler.Get)

		r.Post("/session/logout", server.SessionHandler.Logout)

		r.Route("/admin", func(r chi.Router) {
			r.Use(m.AdminMiddleware(opts.AdminToken))
			r.Post("/products/{productID}/stock", server.AdminHandler.Restock)
		})
	})
	return r
}
