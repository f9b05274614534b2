// Package router arma el árbol de rutas del API sobre chi: middlewares
// globales, endpoints operativos en la raíz y los grupos de /v1 según
// el nivel de acceso (público, autenticado, dueño aprobado, admin).
package router

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Peekay0523/MadidiMarket/internal/auth"
	"github.com/Peekay0523/MadidiMarket/internal/config"
	"github.com/Peekay0523/MadidiMarket/internal/domain"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/http/handlers"
	"github.com/Peekay0523/MadidiMarket/internal/rate"
)

// Deps agrupa todo lo que el router necesita ya construido. Limiter es
// el presupuesto global por IP+path y puede ser nil (apagado); Metrics
// es el handler de /metrics y también puede ser nil.
type Deps struct {
	Cfg     *config.Config
	Issuer  *auth.Issuer
	Limiter rate.Limiter
	Metrics stdhttp.Handler

	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	EmailFlows      *handlers.EmailFlowsHandler
	Profile         *handlers.ProfileHandler
	Categories      *handlers.CategoriesHandler
	Businesses      *handlers.BusinessesHandler
	Products        *handlers.ProductsHandler
	Services        *handlers.ServicesHandler
	Cart            *handlers.CartHandler
	Checkout        *handlers.CheckoutHandler
	Orders          *handlers.OrdersHandler
	Reviews         *handlers.ReviewsHandler
	Trips           *handlers.TripsHandler
	ItemRequests    *handlers.ItemRequestsHandler
	Recommendations *handlers.RecommendationsHandler
	Admin           *handlers.AdminHandler
}

// Budget convierte un par (limit, window) de config en RateConfig. Las
// ventanas ya pasaron Validate, así que un parse fallido apaga el
// presupuesto en vez de tumbar el arranque.
func Budget(limit int, window string) httpx.RateConfig {
	d, err := time.ParseDuration(window)
	if err != nil {
		return httpx.RateConfig{}
	}
	return httpx.RateConfig{Limit: limit, Window: d}
}

// New construye el handler raíz.
func New(d Deps) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(httpx.WithRequestID())
	r.Use(httpx.WithRecover())
	r.Use(httpx.WithSecurityHeaders())
	r.Use(httpx.WithCORS(d.Cfg.Server.CORSAllowedOrigins))
	r.Use(httpx.WithLogging())
	r.Use(httpx.WithMetrics())
	r.Use(httpx.WithRateLimit(d.Limiter))

	// Operativos, fuera de /v1.
	d.Health.RegisterRoot(r)
	if d.Metrics != nil {
		r.Method(stdhttp.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/v1", func(v1 chi.Router) {
		// Público; el bearer opcional personaliza reseñas y
		// recomendaciones.
		v1.Group(func(pub chi.Router) {
			pub.Use(httpx.OptionalAuth(d.Issuer))

			d.Auth.Register(pub)
			d.EmailFlows.Register(pub)
			d.Categories.Register(pub)
			d.Businesses.Register(pub)
			d.Products.Register(pub)
			d.Services.Register(pub)
			d.Reviews.Register(pub)
			d.Recommendations.Register(pub)
		})

		// Autenticado.
		v1.Group(func(priv chi.Router) {
			priv.Use(httpx.RequireAuth(d.Issuer))

			d.Auth.RegisterProtected(priv)
			d.EmailFlows.RegisterProtected(priv)
			d.Profile.Register(priv)
			d.Cart.Register(priv)
			d.Checkout.Register(priv)
			d.Orders.Register(priv)
			d.Reviews.RegisterProtected(priv)
			d.Trips.Register(priv)
			d.ItemRequests.Register(priv)
		})

		// Dueño de negocio aprobado.
		v1.Group(func(owner chi.Router) {
			owner.Use(httpx.RequireAuth(d.Issuer))
			owner.Use(httpx.RequireRole(domain.RoleBusinessOwner))
			owner.Use(httpx.RequireApprovedOwner())

			d.Businesses.RegisterOwner(owner)
			d.Products.RegisterOwner(owner)
			d.Services.RegisterOwner(owner)
			d.Orders.RegisterOwner(owner)
			d.ItemRequests.RegisterOwner(owner)
		})

		// Admin.
		v1.Group(func(adm chi.Router) {
			adm.Use(httpx.RequireAuth(d.Issuer))
			adm.Use(httpx.RequireRole(domain.RoleAdmin))

			d.Admin.Register(adm)
			d.Categories.RegisterAdmin(adm)
		})
	})

	return r
}
