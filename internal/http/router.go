package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/daycare/internal/auth"
	"github.com/MrJamesThe3rd/daycare/internal/http/billing"
	"github.com/MrJamesThe3rd/daycare/internal/http/family"
	"github.com/MrJamesThe3rd/daycare/internal/http/fee"
	"github.com/MrJamesThe3rd/daycare/internal/http/importcsv"
	"github.com/MrJamesThe3rd/daycare/internal/http/statement"
	"github.com/MrJamesThe3rd/daycare/internal/http/user"
	"github.com/MrJamesThe3rd/daycare/internal/http/web"
)

type Handlers struct {
	Users     *user.Handler
	Fees      *fee.Handler
	Families  *family.Handler
	Billing   *billing.Handler
	Statement *statement.Handler
	Import    *importcsv.Handler
}

func New(tokens *auth.Tokens, allowedOrigins []string, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.With(middleware.AllowContentType("application/json")).Post("/auth/login", h.Users.Login)

		r.Group(func(r chi.Router) {
			r.Use(web.Authenticate(tokens))

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Users.Routes(r)
			})

			r.Route("/fees", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Fees.Routes(r)
			})

			r.Route("/parents", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Families.ParentRoutes(r)
				r.Get("/{id}/statement", h.Statement.Get)
			})

			r.Route("/children", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Families.ChildRoutes(r)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Billing.InvoiceRoutes(r)
			})

			r.Route("/payments", h.Billing.PaymentRoutes)
			r.Route("/import", h.Import.Routes)
		})
	})

	return router
}
