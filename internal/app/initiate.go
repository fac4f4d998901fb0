package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgconfig"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkglog"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgrouter"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgroutine"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgtelemetry"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkguid"
)

const serviceName = "mulehunter"

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func (a *App) initConfig() {
	path := "/config/config.yaml"
	if os.Getenv("LOCAL") == "true" {
		path = "./config/config.yaml"

		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file loaded", "error", err)
		}
	}

	cfg, err := pkgconfig.NewViper(path)
	if err != nil {
		fatal("failed to load config", err)
	}

	pkglog.SetLevel(cfg.GetString("log.level"))

	if tz := cfg.GetString("tz"); tz != "" {
		//nolint:errcheck,gosec // TZ is advisory, timestamps are stored in UTC
		os.Setenv("TZ", tz)
	}

	a.config = cfg
	a.addCloser("Config", func(context.Context) error { return cfg.Close() })
}

func (a *App) initLibraries() {
	a.tasks = pkgroutine.NewManager(int(a.config.GetInt("app.max_background_tasks")))
	a.uuid = pkguid.NewUUID()

	sf, err := pkguid.NewSnowflake(a.config.GetInt("app.node_id"))
	if err != nil {
		fatal("failed to init snowflake", err)
	}
	a.snowflake = sf

	shutdown, err := pkgtelemetry.InitProvider(a.ctx, pkgtelemetry.ProviderConfig{
		ServiceName:    serviceName,
		ServiceVersion: a.config.GetString("telemetry.service_version"),
		Environment:    a.config.GetString("telemetry.environment"),
		OTLPEndpoint:   a.config.GetString("telemetry.otlp_endpoint"),
		Interval:       a.config.GetDuration("telemetry.interval"),
	})
	if err != nil {
		fatal("failed to init telemetry", err)
	}
	a.addCloser("Telemetry", shutdown)

	metrics, err := pkgtelemetry.NewMetrics()
	if err != nil {
		fatal("failed to init metrics", err)
	}
	a.metrics = metrics
}

func (a *App) initHTTPServer() {
	a.router = pkgrouter.NewRouter(a.uuid)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Correlation-ID", "X-Request-ID"},
		ExposedHeaders: []string{"X-Correlation-ID"},
	})

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("server.address.http"),
		Handler:           corsHandler.Handler(a.router),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// initGRPCServer exposes only the standard health service; the transfer
// module reports the scorer's status through it.
func (a *App) initGRPCServer() {
	a.grpcServer = grpc.NewServer()
	a.health = grpchealth.NewServer()
	healthpb.RegisterHealthServer(a.grpcServer, a.health)
}
