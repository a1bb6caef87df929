package rest

import (
	"net/http"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/internal/category"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/internal/transport/middleware"
	"github.com/frahmantamala/expense-tracker/internal/transport/swagger"
	"github.com/frahmantamala/expense-tracker/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

const APIPrefix = "/api/v1"

// Route binds one method and pattern under APIPrefix to a handler. Routes
// that are not Public sit behind the bearer gate.
type Route struct {
	Method  string
	Pattern string
	Public  bool
	Handler http.HandlerFunc
}

type Handlers struct {
	Health   *HealthHandler
	Auth     *auth.Handler
	User     *user.Handler
	Category *category.Handler
	Expense  *expense.Handler
}

// Routes is the full route table of the API.
func Routes(h Handlers) []Route {
	return []Route{
		{http.MethodGet, "/health", true, h.Health.Health},
		{http.MethodGet, "/ping", true, h.Health.Ping},

		{http.MethodPost, "/auth/register", true, h.Auth.Register},
		{http.MethodPost, "/auth/login", true, h.Auth.Login},
		{http.MethodPost, "/auth/refresh", true, h.Auth.RefreshToken},
		{http.MethodGet, "/auth/profile", false, h.User.GetProfile},

		{http.MethodPost, "/categories", false, h.Category.CreateCategory},
		{http.MethodGet, "/categories", false, h.Category.GetCategories},
		{http.MethodGet, "/categories/stats", false, h.Category.GetStats},
		{http.MethodGet, "/categories/{id}", false, h.Category.GetCategory},
		{http.MethodPatch, "/categories/{id}", false, h.Category.UpdateCategory},
		{http.MethodDelete, "/categories/{id}", false, h.Category.DeleteCategory},

		{http.MethodPost, "/expenses", false, h.Expense.CreateExpense},
		{http.MethodGet, "/expenses", false, h.Expense.GetExpenses},
		{http.MethodGet, "/expenses/stats", false, h.Expense.GetStats},
		{http.MethodGet, "/expenses/by-category", false, h.Expense.GetByCategory},
		{http.MethodGet, "/expenses/{id}", false, h.Expense.GetExpense},
		{http.MethodPatch, "/expenses/{id}", false, h.Expense.UpdateExpense},
		{http.MethodDelete, "/expenses/{id}", false, h.Expense.DeleteExpense},
	}
}

type Options struct {
	Base           *transport.BaseHandler
	AllowedOrigins []string
	// Gate authenticates requests to non-public routes.
	Gate func(http.Handler) http.Handler
}

func RegisterAllRoutes(router chi.Router, routes []Route, opts Options) {
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(opts.Base))
	router.Use(middleware.LoggingMiddleware)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		opts.Base.WriteError(w, internal.ErrRouteNotFound)
	})

	// served outside the API prefix
	router.Get(swagger.DocumentPath, swagger.Document)
	router.Handle("/swagger/*", swagger.Handler())

	router.Route(APIPrefix, func(r chi.Router) {
		for _, route := range routes {
			var h http.Handler = route.Handler
			if !route.Public {
				h = opts.Gate(h)
			}
			r.Method(route.Method, route.Pattern, h)
		}
	})
}

// NewRouter builds a chi router serving routes.
func NewRouter(routes []Route, opts Options) *chi.Mux {
	router := chi.NewRouter()
	RegisterAllRoutes(router, routes, opts)
	return router
}
