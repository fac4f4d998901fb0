package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/redis/go-redis/v9"

	"github.com/Rupali2507/MULE-HUNTER/internal/health"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgconfig"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkggraph"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgrouter"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkgroutine"
	"github.com/Rupali2507/MULE-HUNTER/internal/pkg/pkguid"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/event"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/inbound"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/scorer"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/store"
	"github.com/Rupali2507/MULE-HUNTER/internal/transfer/usecase"
)

type Dependency struct {
	Config    pkgconfig.Config
	Goroutine *pkgroutine.Manager
	Router    *pkgrouter.Router
	Context   context.Context
	ID        pkguid.StringID
	NumberID  pkguid.NumberID
	Metrics   usecase.Metrics
	// Health receives the scorer status; nil disables the background prober.
	Health health.StatusSetter
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// New wires the transaction ingestion module and returns its shutdown func.
func New(dep Dependency) (func(context.Context) error, error) {
	if dep.ID == nil {
		dep.ID = pkguid.NewUUID()
	}
	if dep.Context == nil {
		dep.Context = context.Background()
	}

	var closers []closer
	shutdown := func(ctx context.Context) error {
		var errs []error
		// reverse order: consumers drain before the sinks they write to close
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].fn(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", closers[i].name, err))
			}
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (func(context.Context) error, error) {
		_ = shutdown(context.Background())
		return nil, err
	}

	cfg := dep.Config

	storage, storeClosers, err := newStore(dep)
	closers = append(closers, storeClosers...)
	if err != nil {
		return fail(err)
	}

	publisher, sinkClosers, err := newPublisher(dep.Context, cfg)
	closers = append(closers, sinkClosers...)
	if err != nil {
		return fail(err)
	}

	baseURL := cfg.GetString("scorer.base_url")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	uc := usecase.New(usecase.Dependency{
		Scorer: scorer.New(scorer.Config{
			BaseURL:   baseURL,
			RateLimit: cfg.GetFloat("scorer.rate_limit"),
			RateBurst: int(cfg.GetInt("scorer.rate_burst")),
		}, nil),
		Store:         storage,
		Events:        publisher,
		Metrics:       dep.Metrics,
		ID:            dep.ID,
		Policy:        usecase.NewPolicy(cfg.GetFloat("scorer.risk_threshold")),
		ScoringBudget: cfg.GetDuration("scorer.timeout"),
	})

	probe := health.NewScorerProbe(baseURL, cfg.GetString("scorer.health_path"), cfg.GetDuration("scorer.timeout"))
	if dep.Health != nil && dep.Goroutine != nil {
		interval := cfg.GetDuration("scorer.health_interval")
		dep.Goroutine.Go(dep.Context, "scorer health", func(ctx context.Context) error {
			return health.Watch(ctx, probe, dep.Health, health.ScorerService, interval)
		})
	}

	inbound.RegisterHTTPEndpoint(dep.Router, uc, probe)

	return shutdown, nil
}

func newStore(dep Dependency) (usecase.Store, []closer, error) {
	cfg := dep.Config
	var (
		storage usecase.Store
		closers []closer
	)

	switch driver := cfg.GetString("storage.driver"); driver {
	case "", "memory":
		ids := dep.NumberID
		if ids == nil {
			sf, err := pkguid.NewSnowflake(-1)
			if err != nil {
				return nil, nil, fmt.Errorf("init snowflake: %w", err)
			}
			ids = sf
		}
		storage = store.NewInMemoryStore(ids)

	case "sqlite":
		path := cfg.GetString("storage.sqlite.path")
		if path == "" {
			path = "./data/mulehunter.db"
		}
		gs, err := store.NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		storage = gs
		closers = append(closers, closer{"SQLite", func(context.Context) error { return gs.Close() }})

	case "postgres":
		maxConns := cfg.GetInt("storage.postgres.max_conns")
		if maxConns <= 0 {
			maxConns = 25
		}
		pool, err := store.OpenPostgresPool(dep.Context, store.PostgresConfig{
			URL:      cfg.GetString("storage.postgres.url"),
			MaxConns: int32(maxConns),
		})
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, closer{"Postgres", func(context.Context) error { pool.Close(); return nil }})

		ps, err := store.NewPostgresStore(pool)
		if err != nil {
			return nil, closers, err
		}
		if err := ps.Migrate(dep.Context); err != nil {
			return nil, closers, err
		}
		storage = ps

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
	}

	if cfg.GetBool("enrichment.redis.enabled") {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetString("enrichment.redis.addr"),
			Password: cfg.GetString("enrichment.redis.password"),
			DB:       int(cfg.GetInt("enrichment.redis.db")),
		})
		closers = append(closers, closer{"Redis", func(context.Context) error { return client.Close() }})

		if err := client.Ping(dep.Context).Err(); err != nil {
			slog.Warn("redis unreachable, transactions will not be enriched until it recovers", "error", err)
		}

		signals := store.NewRedisSignals(client, cfg.GetString("enrichment.redis.key_prefix"))
		storage = store.NewEnriched(storage, signals, cfg.GetDuration("enrichment.redis.timeout"))
	}

	return storage, closers, nil
}

func newPublisher(ctx context.Context, cfg pkgconfig.Config) (event.Publisher, []closer, error) {
	consumerCfg := event.ConsumerConfig{
		Workers:     int(cfg.GetInt("events.workers")),
		MaxRetries:  int(cfg.GetInt("events.max_retries")),
		BaseBackoff: cfg.GetDuration("events.base_backoff"),
	}
	buffer := int(cfg.GetInt("events.buffer"))
	if buffer <= 0 {
		buffer = 512
	}

	var (
		fanout  event.Fanout
		closers []closer
	)
	attach := func(name string, handler event.Handler) {
		bus := event.NewBus(name, buffer)
		consumer := event.NewConsumer(name, bus, handler, consumerCfg)
		consumer.Start()
		fanout = append(fanout, bus)
		closers = append(closers, closer{name + " consumer", consumer.Stop})
	}

	if cfg.GetBool("events.graph.enabled") {
		graph, err := pkggraph.NewNeo4j(ctx, pkggraph.Options{
			URI:      cfg.GetString("events.graph.uri"),
			Database: cfg.GetString("events.graph.database"),
			Username: cfg.GetString("events.graph.username"),
			Password: cfg.GetString("events.graph.password"),
		})
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, closer{"Neo4j", graph.Close})
		attach("graph", event.NewGraphRecorder(graph))
	}

	if cfg.GetBool("events.kafka.enabled") {
		kcfg := kafka.ConfigMap{}
		// extra librdkafka settings, e.g. "acks:all,linger.ms:5"
		for k, v := range cfg.GetMap("events.kafka.properties") {
			kcfg[k] = v
		}
		kcfg["bootstrap.servers"] = strings.Join(cfg.GetArray("events.kafka.brokers"), ",")

		producer, err := kafka.NewProducer(&kcfg)
		if err != nil {
			return nil, closers, fmt.Errorf("create kafka producer: %w", err)
		}
		closers = append(closers, closer{"Kafka", func(context.Context) error {
			producer.Flush(5000)
			producer.Close()
			return nil
		}})
		attach("kafka", event.NewReviewForwarder(producer, cfg.GetString("events.kafka.topic")))
	}

	if cfg.GetBool("events.discord.enabled") {
		session, err := discordgo.New("Bot " + cfg.GetString("events.discord.token"))
		if err != nil {
			return nil, closers, fmt.Errorf("create discord session: %w", err)
		}
		attach("discord", event.NewDiscordNotifier(session, cfg.GetString("events.discord.channel_id")))
	}

	if len(fanout) == 0 {
		attach("log", event.LogHandler{})
	}

	return fanout, closers, nil
}
