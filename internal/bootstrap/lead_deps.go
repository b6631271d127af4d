package bootstrap

import (
	"context"
	"os"
	"time"

	"lead_server/adapter/out/mongodb"
	"lead_server/adapter/out/notify"
	"lead_server/config"
	"lead_server/core/port/out"
	"lead_server/core/service/analytics"
	"lead_server/core/service/errorlog"
	"lead_server/core/service/geo"
	"lead_server/core/service/lead"
	"lead_server/core/service/search"
	"lead_server/internal/stream"
	"lead_server/pkg/cache"
	"lead_server/pkg/logger"
	"lead_server/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

const streamGroup = "leadserver"

type Dependencies struct {
	Config  *config.Config
	MongoDB *mongo.Client
	Redis   *redis.Client
	ZLog    zerolog.Logger

	// Repositories
	LeadRepo  *mongodb.LeadAdapter
	ErrorRepo *mongodb.ErrorLogAdapter
	Feed      *mongodb.ChangeFeedAdapter

	// Outbound
	Notifier *notify.WebhookNotifier
	Producer out.JobProducer
	Stream   *stream.RedisStream
	Cache    out.ResponseCache

	// Observability
	Metrics *metrics.Registry

	// Services
	GeoResolver      *geo.Resolver
	LeadService      *lead.Service
	SearchService    *search.Service
	ErrorService     *errorlog.Service
	AnalyticsService *analytics.Service
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	deps.ZLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	// MongoDB
	mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.MongoDB = mongoClient
	cleanups = append(cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	})

	db := mongoClient.Database(cfg.MongoDBName)
	deps.LeadRepo = mongodb.NewLeadAdapter(db)
	deps.ErrorRepo = mongodb.NewErrorLogAdapter(db)
	deps.Feed = mongodb.NewChangeFeedAdapter(db)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := deps.LeadRepo.EnsureIndexes(ctx); err != nil {
		logger.WithError(err).Warn("Failed to ensure lead indexes")
	}
	if err := deps.ErrorRepo.EnsureIndexes(ctx); err != nil {
		logger.WithError(err).Warn("Failed to ensure error log indexes")
	}

	// Redis is optional: without it the API still captures leads, but
	// enrichment runs only on demand and the submit limiter goes local.
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable, continuing without job queue")
			redisClient.Close()
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })

			deps.Stream = stream.NewRedisStream(
				redisClient,
				streamGroup,
				cfg.ConsumerBatchSize,
				time.Duration(cfg.ConsumerBlockMS)*time.Millisecond,
				cfg.ConsumerMaxRetries,
				deps.ZLog,
			)
			deps.Producer = stream.NewProducer(deps.Stream)
			deps.Cache = cache.NewRedisCache(redisClient)
		}
	}

	// Outbound
	deps.Notifier = notify.NewWebhookNotifier(cfg.AlertWebhookURL)
	deps.Metrics = metrics.NewRegistry(0)

	// Services
	deps.GeoResolver = geo.NewResolver()
	deps.LeadService = lead.NewService(deps.LeadRepo, deps.GeoResolver, deps.Producer)
	deps.SearchService = search.NewService(deps.LeadRepo, deps.GeoResolver)
	deps.ErrorService = errorlog.NewService(deps.ErrorRepo)
	deps.AnalyticsService = analytics.NewService(deps.LeadRepo, deps.ErrorRepo).WithCache(deps.Cache)

	return deps, cleanup, nil
}
