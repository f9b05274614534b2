// Command madidi es el servidor del API de Madidi Market.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"

	"github.com/Peekay0523/MadidiMarket/internal/auth"
	"github.com/Peekay0523/MadidiMarket/internal/cache"
	"github.com/Peekay0523/MadidiMarket/internal/config"
	"github.com/Peekay0523/MadidiMarket/internal/email"
	httpx "github.com/Peekay0523/MadidiMarket/internal/http"
	"github.com/Peekay0523/MadidiMarket/internal/http/handlers"
	"github.com/Peekay0523/MadidiMarket/internal/http/router"
	"github.com/Peekay0523/MadidiMarket/internal/metrics"
	"github.com/Peekay0523/MadidiMarket/internal/observability/logger"
	"github.com/Peekay0523/MadidiMarket/internal/rate"
	"github.com/Peekay0523/MadidiMarket/internal/recommend"
	"github.com/Peekay0523/MadidiMarket/internal/security/password"
	adminsvc "github.com/Peekay0523/MadidiMarket/internal/service/admin"
	authsvc "github.com/Peekay0523/MadidiMarket/internal/service/auth"
	"github.com/Peekay0523/MadidiMarket/internal/service/catalog"
	"github.com/Peekay0523/MadidiMarket/internal/service/commerce"
	"github.com/Peekay0523/MadidiMarket/internal/service/errands"
	"github.com/Peekay0523/MadidiMarket/internal/service/reviews"
	"github.com/Peekay0523/MadidiMarket/internal/store/pg"
	migrations "github.com/Peekay0523/MadidiMarket/migrations/postgres"
)

// version se inyecta en build con -ldflags "-X main.version=...".
var version = "dev"

func main() {
	var (
		cfgPath = flag.String("config", "configs/config.yaml", "ruta del config.yaml")
		envFile = flag.String("env-file", ".env", "archivo .env opcional")
		envOnly = flag.Bool("env", false, "ignorar el YAML y configurar sólo por entorno")
	)
	flag.Parse()

	if err := run(*cfgPath, *envFile, *envOnly); err != nil {
		fmt.Fprintln(os.Stderr, "madidi:", err)
		os.Exit(1)
	}
}

func run(cfgPath, envFile string, envOnly bool) error {
	// .env antes de resolver config; su ausencia no es error.
	_ = godotenv.Load(envFile)

	var (
		cfg *config.Config
		err error
	)
	if envOnly {
		cfg, err = config.FromEnv()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       os.Getenv("LOG_LEVEL"),
		ServiceName: "madidi",
		Version:     version,
	})
	defer logger.Sync()
	log := logger.L()

	if cfg.GmailPasswordSuspect() {
		log.Warn("la app password de Gmail no tiene 16 caracteres; el envío va a fallar contra smtp.gmail.com",
			logger.Component("smtp"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres
	lifetime, _ := time.ParseDuration(cfg.Storage.Postgres.ConnMaxLifetime)
	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
		MaxConns:        cfg.Storage.Postgres.MaxOpenConns,
		MinConns:        cfg.Storage.Postgres.MaxIdleConns,
		ConnMaxLifetime: lifetime,
	})
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer store.Close()

	if cfg.Flags.Migrate {
		if err := store.RunMigrations(ctx, migrations.FS, migrations.Dir); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		log.Info("migrations applied")
	}

	// Cache para el estado de checkout pendiente.
	cacheClient, err := cache.New(cache.Config{
		Kind:   cfg.Cache.Kind,
		Addr:   cfg.Cache.Redis.Addr,
		DB:     cfg.Cache.Redis.DB,
		Prefix: cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer cacheClient.Close()

	// Rate limiting sobre Redis; apagado si no hay backend.
	var (
		globalLimiter rate.Limiter
		budgets       rate.MultiLimiter
	)
	if cfg.Rate.Enabled && cfg.Cache.Redis.Addr != "" {
		rc := rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
		window, _ := time.ParseDuration(cfg.Rate.Window)
		globalLimiter = rate.NewRedisLimiter(rc, cfg.Cache.Redis.Prefix+"rl", cfg.Rate.MaxRequests, window)
		budgets = rate.NewMultiRedisLimiter(rc, cfg.Cache.Redis.Prefix+"rl")
	}

	// Email
	var tpls *email.Templates
	if cfg.Email.TemplatesDir != "" {
		tpls, err = email.LoadTemplates(cfg.Email.TemplatesDir)
		if err != nil {
			return fmt.Errorf("email templates: %w", err)
		}
	}
	mailer, err := email.NewService(email.ServiceConfig{
		Sender: email.FromConfig(email.SMTPConfig{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			Username:           cfg.SMTP.Username,
			Password:           config.NormalizeAppPassword(cfg.SMTP.Password),
			From:               cfg.SMTP.From,
			TLSMode:            cfg.SMTP.TLS,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		}),
		Templates: tpls,
		BaseURL:   cfg.Email.BaseURL,
		ResetTTL:  cfg.Auth.Reset.TTL,
		VerifyTTL: cfg.Auth.Verify.TTL,
	})
	if err != nil {
		return fmt.Errorf("email: %w", err)
	}

	// Tokens
	issuer := auth.NewIssuer(cfg.JWT.Issuer, []byte(cfg.JWT.Secret))
	if d, err := time.ParseDuration(cfg.JWT.AccessTTL); err == nil {
		issuer.AccessTTL = d
	}
	refreshTTL, _ := time.ParseDuration(cfg.JWT.RefreshTTL)

	policy := password.Policy{
		MinLength:     cfg.Security.PasswordPolicy.MinLength,
		RequireUpper:  cfg.Security.PasswordPolicy.RequireUpper,
		RequireLower:  cfg.Security.PasswordPolicy.RequireLower,
		RequireDigit:  cfg.Security.PasswordPolicy.RequireDigit,
		RequireSymbol: cfg.Security.PasswordPolicy.RequireSymbol,
	}

	// Services
	authSvc := authsvc.New(authsvc.Deps{
		Store:          store,
		Issuer:         issuer,
		Mailer:         mailer,
		Policy:         policy,
		RefreshTTL:     refreshTTL,
		ResetTTL:       cfg.Auth.Reset.TTL,
		VerifyTTL:      cfg.Auth.Verify.TTL,
		AutoLogin:      cfg.Register.AutoLogin,
		DebugEchoLinks: cfg.Email.DebugEchoLinks,
	})
	catalogSvc := catalog.New(catalog.Deps{Store: store})
	commerceSvc := commerce.New(commerce.Deps{
		Store:         store,
		Cache:         cacheClient,
		UploadsDir:    cfg.Uploads.Dir,
		MaxProofBytes: int64(cfg.Uploads.MaxProofMB) << 20,
		PendingTTL:    cfg.Checkout.PendingTTL,
	})
	reviewsSvc := reviews.New(reviews.Deps{Store: store})
	errandsSvc := errands.New(errands.Deps{Store: store})
	adminSvc := adminsvc.New(adminsvc.Deps{Store: store, Mailer: mailer})
	engine := recommend.New(store, 0)

	// Métricas: HTTP + pool de Postgres + contadores de dominio.
	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{
		Pool: func() *pgxpool.Pool { return store.Pool() },
	})
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := metrics.Register(nil); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	handler := router.New(router.Deps{
		Cfg:     cfg,
		Issuer:  issuer,
		Limiter: globalLimiter,
		Metrics: metricsHandler,

		Health: &handlers.HealthHandler{DB: store, Service: "madidi", Version: version},
		Auth: &handlers.AuthHandler{
			Svc:         authSvc,
			Limiter:     budgets,
			LoginBudget: router.Budget(cfg.Rate.Login.Limit, cfg.Rate.Login.Window),
		},
		EmailFlows: &handlers.EmailFlowsHandler{
			Svc:          authSvc,
			Limiter:      budgets,
			ForgotBudget: router.Budget(cfg.Rate.Forgot.Limit, cfg.Rate.Forgot.Window),
			ResetBudget:  router.Budget(cfg.Rate.Reset.Limit, cfg.Rate.Reset.Window),
		},
		Profile:    &handlers.ProfileHandler{Svc: authSvc, Businesses: catalogSvc},
		Categories: &handlers.CategoriesHandler{Svc: catalogSvc},
		Businesses: &handlers.BusinessesHandler{Svc: catalogSvc, Reviews: reviewsSvc},
		Products:   &handlers.ProductsHandler{Svc: catalogSvc},
		Services:   &handlers.ServicesHandler{Svc: catalogSvc},
		Cart:       &handlers.CartHandler{Svc: commerceSvc},
		Checkout: &handlers.CheckoutHandler{
			Svc:            commerceSvc,
			Limiter:        budgets,
			CheckoutBudget: router.Budget(cfg.Rate.Checkout.Limit, cfg.Rate.Checkout.Window),
			MaxProofBytes:  int64(cfg.Uploads.MaxProofMB) << 20,
		},
		Orders: &handlers.OrdersHandler{Svc: commerceSvc},
		Reviews: &handlers.ReviewsHandler{
			Svc:        reviewsSvc,
			Limiter:    budgets,
			VoteBudget: router.Budget(cfg.Rate.Vote.Limit, cfg.Rate.Vote.Window),
		},
		Trips:           &handlers.TripsHandler{Svc: errandsSvc},
		ItemRequests:    &handlers.ItemRequestsHandler{Svc: errandsSvc},
		Recommendations: &handlers.RecommendationsHandler{Engine: engine},
		Admin:           &handlers.AdminHandler{Svc: adminSvc},
	})

	srv := httpx.NewServer(cfg.Server.Addr, handler)
	log.Info("server listening",
		logger.String("addr", cfg.Server.Addr),
		logger.String("env", cfg.App.Env),
	)
	return srv.Start(ctx)
}
