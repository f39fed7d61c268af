package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/aimodel"
	aimodelPostgres "github.com/frahmantamala/chathub/internal/aimodel/postgres"
	"github.com/frahmantamala/chathub/internal/auth"
	authPostgres "github.com/frahmantamala/chathub/internal/auth/postgres"
	"github.com/frahmantamala/chathub/internal/core/events"
	"github.com/frahmantamala/chathub/internal/core/storage"
	"github.com/frahmantamala/chathub/internal/dashboard"
	"github.com/frahmantamala/chathub/internal/followup"
	followupPostgres "github.com/frahmantamala/chathub/internal/followup/postgres"
	"github.com/frahmantamala/chathub/internal/knowledge"
	knowledgePostgres "github.com/frahmantamala/chathub/internal/knowledge/postgres"
	"github.com/frahmantamala/chathub/internal/role"
	rolePostgres "github.com/frahmantamala/chathub/internal/role/postgres"
	"github.com/frahmantamala/chathub/internal/seed"
	"github.com/frahmantamala/chathub/internal/template"
	templatePostgres "github.com/frahmantamala/chathub/internal/template/postgres"
	"github.com/frahmantamala/chathub/internal/tenant"
	tenantPostgres "github.com/frahmantamala/chathub/internal/tenant/postgres"
	"github.com/frahmantamala/chathub/internal/transport/rest"
	"github.com/frahmantamala/chathub/internal/transport/swagger"
	"github.com/frahmantamala/chathub/internal/user"
	userPostgres "github.com/frahmantamala/chathub/internal/user/postgres"
	"github.com/frahmantamala/chathub/internal/widget"
	widgetPostgres "github.com/frahmantamala/chathub/internal/widget/postgres"
	"github.com/frahmantamala/chathub/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *database
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger
	closers  []func() error
}

func (d *Dependencies) Close() {
	if d.EventBus != nil {
		d.EventBus.Wait()
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.Error("close error", "error", err)
		}
	}
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "prefix", rest.APIPrefix)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	deps.Close()
	deps.Logger.Info("Server stopped")
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Configure(config.Observability.Logging.Level, config.Observability.Logging.Format)
	log := logger.LoggerWrapper()

	if _, err := swagger.Load(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	db, err := initDB(config.Database, !config.IsProduction() && config.Observability.Logging.Level == "debug")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps := &Dependencies{
		Config:  config,
		DB:      db,
		Logger:  log,
		closers: []func() error{db.Close},
	}

	if config.Database.AutoMigrate {
		if err := autoMigrate(db.Gorm); err != nil {
			deps.Close()
			return nil, err
		}
	}
	if config.Database.Seed {
		fixtures, err := seed.LoadFixtures()
		if err != nil {
			deps.Close()
			return nil, err
		}
		if _, err := seed.NewSeeder(db.Gorm, fixtures, config.Security.BCryptCost, log).Run(ctx); err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	deps.EventBus = events.NewEventBus(log)
	events.NewActivityLogger(log).RegisterEventHandlers(deps.EventBus)

	pingers := map[string]rest.Pinger{}

	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if config.Redis.Addr != "" {
		redisRevoker := auth.NewRedisRevoker(config.Redis.Addr, config.Redis.Password, config.Redis.DB)
		revoker = redisRevoker
		pingers["redis"] = redisRevoker
		deps.closers = append(deps.closers, redisRevoker.Close)
	}

	var store storage.ObjectStore
	if config.Storage.Endpoint != "" {
		minioStore, err := storage.NewMinioStore(ctx, config.Storage.Endpoint, config.Storage.AccessKey,
			config.Storage.SecretKey, config.Storage.Bucket, config.Storage.UseSSL)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		store = minioStore
	} else {
		localStore, err := storage.NewLocalStore(config.Storage.LocalDir)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		store = localStore
	}

	authService := auth.NewService(
		authPostgres.NewRepository(db.Gorm),
		auth.NewJWTTokenGenerator(config.Security.JWTAccessSecret, config.Security.JWTRefreshSecret,
			config.Security.AccessTokenDuration, config.Security.RefreshTokenDuration),
		revoker,
		deps.EventBus,
		log,
	)
	modelService := aimodel.NewService(aimodelPostgres.NewModelRepository(db.Gorm), deps.EventBus, log)
	templateService := template.NewService(templatePostgres.NewTemplateRepository(db.Gorm), log)
	followupService := followup.NewService(followupPostgres.NewFlowRepository(db.Gorm), deps.EventBus, log)
	knowledgeService := knowledge.NewService(knowledgePostgres.NewSourceRepository(db.Gorm), store, log)
	widgetService := widget.NewService(widgetPostgres.NewSettingsRepository(db.Gorm), widget.MustSchema(),
		deps.EventBus, config.Widget.ScriptURL, log)
	userService := user.NewService(userPostgres.NewUserRepository(db.Gorm), log, config.Security.BCryptCost)
	roleService := role.NewService(rolePostgres.NewRoleRepository(db.Gorm), log)
	tenantService := tenant.NewService(tenantPostgres.NewTenantRepository(db.Gorm), log)

	dashboardService := dashboard.NewService(dashboard.Counters{
		Models:    modelService,
		Templates: templateService,
		Flows:     followupService,
		Sources:   knowledgeService,
		Users:     userService,
		Tenants:   tenantService,
	}, log)

	deps.Router = chi.NewRouter()
	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Health:    rest.NewHealthHandler(db.SQL, pingers),
		Auth:      auth.NewHandler(authService),
		Dashboard: dashboard.NewHandler(dashboardService),
		Models:    aimodel.NewHandler(modelService),
		Templates: template.NewHandler(templateService),
		FollowUps: followup.NewHandler(followupService),
		Knowledge: knowledge.NewHandler(knowledgeService),
		Widget:    widget.NewHandler(widgetService),
		Users:     user.NewHandler(userService),
		Roles:     role.NewHandler(roleService),
		Tenants:   tenant.NewHandler(tenantService),
	}, config.Server, log)

	return deps, nil
}
