package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/meli-lister/api/openapi"
	"github.com/donaldgifford/meli-lister/internal/api/handlers"
	mw "github.com/donaldgifford/meli-lister/internal/api/middleware"
	"github.com/donaldgifford/meli-lister/internal/auth"
	"github.com/donaldgifford/meli-lister/internal/config"
	"github.com/donaldgifford/meli-lister/internal/meli"
	"github.com/donaldgifford/meli-lister/internal/session"
	"github.com/donaldgifford/meli-lister/internal/store"
	"github.com/donaldgifford/meli-lister/internal/tracing"
	"github.com/donaldgifford/meli-lister/internal/web"
	"github.com/donaldgifford/meli-lister/pkg/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: "Serves the login, listing form and active listings pages, the JSON\n" +
			"API under /api/v1, OpenAPI docs at /docs and Prometheus metrics.",
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, Version, log)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}

	sessions, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer sessions.Close()

	janitor, err := session.NewJanitor(sessions, cfg.Session.PurgeInterval, log)
	if err != nil {
		return fmt.Errorf("creating session janitor: %w", err)
	}

	rl := meli.NewRateLimiter(
		cfg.Marketplace.RateLimit.PerSecond,
		cfg.Marketplace.RateLimit.Burst,
		cfg.Marketplace.RateLimit.DailyLimit,
	)

	e, err := newServer(cfg, sessions, rl, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	janitor.Start()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			"addr", srv.Addr,
			"version", Version,
			"session_backend", cfg.Session.Backend,
		)
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error("server error", "err", err)
		}
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := e.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down server: %w", err))
	}
	<-janitor.Stop().Done()
	if err := shutdownTracing(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down tracing: %w", err))
	}

	log.Info("server stopped")
	return errors.Join(errs...)
}

// openSessionStore connects the configured session backend.
func openSessionStore(ctx context.Context, cfg *config.Config) (store.SessionStore, error) {
	switch cfg.Session.Backend {
	case config.BackendPostgres:
		s, err := store.NewPostgresStore(ctx, cfg.Database.DSN(), cfg.Database.PoolSize)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		return s, nil
	case config.BackendRedis:
		s, err := store.NewRedisStore(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return s, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// newServer wires the middleware chain, pages, JSON API and operational
// endpoints onto a new echo instance.
func newServer(
	cfg *config.Config,
	sessions store.SessionStore,
	rl *meli.RateLimiter,
	log *slog.Logger,
) (*echo.Echo, error) {
	manager, err := session.NewManager(
		sessions,
		[]byte(cfg.Session.SigningKey),
		session.WithCookieName(cfg.Session.CookieName),
		session.WithTTL(cfg.Session.TTL),
		session.WithSecureCookie(cfg.Session.Secure),
		session.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session manager: %w", err)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	factory := meli.NewFactory(
		meli.WithAPIURL(cfg.Marketplace.APIURL),
		meli.WithAuthURL(cfg.Marketplace.AuthURL),
		meli.WithHTTPClient(&http.Client{Timeout: cfg.Marketplace.Timeout}),
		meli.WithRateLimiter(rl),
	)
	flow := auth.NewFlow(auth.Config{
		ClientID:     cfg.Marketplace.ClientID,
		ClientSecret: cfg.Marketplace.ClientSecret,
		CallbackURL:  cfg.Marketplace.CallbackURL,
	}, factory, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = mw.ErrorHandler(log)

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(mw.RequestLog(log))
	e.Use(mw.Recovery(log))
	e.Use(mw.Metrics())
	e.Use(session.Middleware(manager, mw.Operational))

	handlers.RegisterHealthRoutes(e, handlers.NewHealthHandler(sessions))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	openapi.RegisterRoutes(e)

	handlers.RegisterPageRoutes(e, handlers.NewPagesHandler(flow, cfg.Marketplace.SiteID, log))

	api := humaecho.New(e, openapi.Config(Version))
	handlers.RegisterAPIRoutes(api, handlers.NewAPIHandler(flow, cfg.Marketplace.SiteID, log))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(rl))

	return e, nil
}
