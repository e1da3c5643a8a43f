package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/api"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/console"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/credstore"
	natsadapter "github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/messaging/nats"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/adapter/notify"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/config"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/domain"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/tracer"
	"github.com/Abdurahmanit/GroupProject/board-client/internal/usecase"
	"github.com/redis/go-redis/v9"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const metricsNamespace = "board_client"

// App owns every long-lived resource of the client.
type App struct {
	cfg            *config.Config
	log            *logger.Logger
	metrics        *metrics.MetricsManager
	tracerProvider *sdktrace.TracerProvider
	redisClient    *redis.Client
	natsPublisher  *natsadapter.Publisher
	client         *api.Client
	banner         *notify.Banner
	renderer       *console.Renderer
	confirmer      *console.Confirmer
	board          *usecase.Board
}

// New wires the client from cfg; in and out are the terminal streams.
func New(cfg *config.Config, in io.Reader, out io.Writer) (*App, error) {
	appLogger, err := logger.New(logger.LoggerConfig{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputFile: cfg.Log.OutputFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Info("Logger initialized", zap.String("service_name", cfg.ServiceName))

	a := &App{
		cfg:     cfg,
		log:     appLogger,
		metrics: metrics.NewMetricsManager(metricsNamespace),
	}
	a.tracerProvider = tracer.InitTracer(cfg.ServiceName, cfg.Tracing.OTLPEndpoint, appLogger)

	store, err := a.credentialStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	var publisher domain.EventPublisher = natsadapter.NoopPublisher{}
	if cfg.NATS.URL != "" {
		p, err := natsadapter.NewPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix, cfg.NATS.Timeout, appLogger, cfg.ServiceName)
		if err != nil {
			// события не критичны для работы клиента
			appLogger.Warn("NATS unavailable, activity events disabled", zap.Error(err))
		} else {
			a.natsPublisher = p
			publisher = p
		}
	}

	a.renderer = console.NewRenderer(out)
	a.confirmer = console.NewConfirmer(in, out)
	a.banner = notify.NewBanner(cfg.Notification.Duration, a.renderer.Notice, appLogger, a.metrics)

	client, err := api.NewClient(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, a.credential, appLogger, a.metrics)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize API client: %w", err)
	}
	a.client = client

	a.board = usecase.NewBoard(usecase.Deps{
		API:       client,
		Store:     store,
		Notifier:  a.banner,
		Renderer:  a.renderer,
		Confirmer: a.confirmer,
		Publisher: publisher,
		Logger:    appLogger,
		Metrics:   a.metrics,
	})
	client.OnUnauthorized(a.board.Session().HandleUnauthorized)
	a.renderer.SetAffordanceFunc(a.board.Responses().Affordance)

	appLogger.Info("Application wired",
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.String("credential_store", cfg.Credential.Store),
		zap.Bool("events_enabled", a.natsPublisher != nil),
	)
	return a, nil
}

func (a *App) credential() string {
	if a.board == nil {
		return ""
	}
	return a.board.Session().Credential()
}

func (a *App) credentialStore() (domain.CredentialStore, error) {
	switch a.cfg.Credential.Store {
	case config.StoreRedis:
		client, err := credstore.NewRedisClient(a.cfg.Redis, a.log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis credential store: %w", err)
		}
		a.redisClient = client
		return credstore.NewRedisStore(client, a.cfg.Redis.Key, a.log), nil
	case config.StoreMemory:
		return credstore.NewMemoryStore(""), nil
	default:
		return credstore.NewFileStore(a.cfg.Credential.Path, a.log), nil
	}
}

// Start restores the session and loads the feeds.
func (a *App) Start(ctx context.Context) error {
	return a.board.Start(ctx)
}

// ServeMetrics exposes /metrics in the background when a port is configured.
func (a *App) ServeMetrics() {
	if a.cfg.Metrics.Port == "" {
		return
	}
	go func() {
		if err := metrics.StartMetricsServer(a.cfg.Metrics.Port, a.log, a.metrics.Registry); err != nil {
			a.log.Error("Metrics server stopped", zap.Error(err))
		}
	}()
}

func (a *App) Board() *usecase.Board            { return a.board }
func (a *App) Banner() *notify.Banner           { return a.banner }
func (a *App) Renderer() *console.Renderer      { return a.renderer }
func (a *App) Confirmer() *console.Confirmer    { return a.confirmer }
func (a *App) Metrics() *metrics.MetricsManager { return a.metrics }
func (a *App) Logger() *logger.Logger           { return a.log }

// Close releases connections and flushes telemetry.
func (a *App) Close() {
	if a.banner != nil {
		a.banner.Close()
	}
	if a.natsPublisher != nil {
		a.natsPublisher.Close()
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if a.tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
