// @title          Composer API
// @version        1.0
// @description    Post composition, scheduling and dispatch.
// @BasePath       /
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/replyrocket/composer/docs"
	"github.com/replyrocket/composer/internal/api"
	"github.com/replyrocket/composer/internal/core/domain"
	"github.com/replyrocket/composer/internal/core/ports"
	"github.com/replyrocket/composer/internal/core/service"
	"github.com/replyrocket/composer/internal/infrastructure/config"
	mongostore "github.com/replyrocket/composer/internal/infrastructure/db/mongo"
	"github.com/replyrocket/composer/internal/infrastructure/db/postgres"
	redisstore "github.com/replyrocket/composer/internal/infrastructure/db/redis"
	"github.com/replyrocket/composer/internal/infrastructure/events"
	"github.com/replyrocket/composer/internal/infrastructure/http/handlers"
	"github.com/replyrocket/composer/internal/infrastructure/mail"
	"github.com/replyrocket/composer/internal/infrastructure/openai"
	"github.com/replyrocket/composer/internal/infrastructure/queue"
	"github.com/replyrocket/composer/internal/infrastructure/twitter"
	"github.com/replyrocket/composer/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type eventSink interface {
	ports.EventPublisher
	Close() error
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.New(logger.Options{})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "composer",
	})

	db, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer func() { _ = postgres.Close(db) }()

	mongoClient, mongoDB, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer func() { _ = rdb.Close() }()

	sink := newEventSink(cfg, log)
	defer func() { _ = sink.Close() }()

	// --- Adapters ---
	accounts := postgres.NewAccountRepository(db)
	posts := postgres.NewPostRepository(db)
	attempts := mongostore.NewDispatchLog(mongoDB)
	guard := redisstore.NewDeliveryGuard(rdb)

	platform := twitter.NewClient(twitter.Config{
		ClientID:     cfg.Twitter.ClientID,
		ClientSecret: cfg.Twitter.ClientSecret,
		CallbackURL:  cfg.TwitterCallbackURL(),
		APIBaseURL:   cfg.Twitter.APIBaseURL,
	}, logger.Component(log, "twitter"))
	generator := openai.NewGenerator(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
	}, logger.Component(log, "openai"))
	mailer := mail.NewResendMailer(cfg.Mail.ResendAPIKey, cfg.Mail.From,
		int(domain.VerificationCodeTTL/time.Minute), logger.Component(log, "mail"))

	// --- Services ---
	credentials := service.NewCredentialRefresher(accounts, platform, logger.Component(log, "credentials"))
	dispatch := service.NewDispatchService(posts, credentials, platform, attempts, guard, sink, logger.Component(log, "dispatch"))

	router := api.NewRouter(api.Deps{
		Auth:     service.NewAuthService(accounts, redisstore.NewSignupStore(rdb), mailer, cfg.JWTSecret, cfg.JWTTTL, logger.Component(log, "auth")),
		Accounts: service.NewAccountService(accounts, platform, redisstore.NewOAuthStateStore(rdb), logger.Component(log, "accounts")),
		Posts:    service.NewPostService(posts, accounts, credentials, platform, attempts, logger.Component(log, "posts")),
		Compose:  service.NewComposeService(generator, accounts, logger.Component(log, "compose")),
		Dispatch: dispatch,
		Checks: map[string]handlers.Check{
			"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
			"mongo":    func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		JWTSecret:     cfg.JWTSecret,
		CronSecret:    cfg.CronSecret,
		AppURL:        cfg.AppURL,
		SecureCookies: cfg.IsProduction(),
		Log:           log,
	})

	sweepCtx, stopSweeps := context.WithCancel(ctx)
	ticker := queue.NewSweepTicker(cfg.SweepInterval, dispatch, logger.Component(log, "sweeper"))
	ticker.Start(sweepCtx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Bool("sweeper", ticker.Enabled()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	stopSweeps()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	select {
	case <-ticker.Done():
	case <-shutdownCtx.Done():
		log.Warn().Msg("sweep still running at shutdown")
	}
	log.Info().Msg("server stopped")
}

// newEventSink returns the Kafka publisher when brokers are configured and a
// log-only publisher otherwise.
func newEventSink(cfg *config.Config, log zerolog.Logger) eventSink {
	if len(cfg.Kafka.Brokers) == 0 {
		return events.NewLogPublisher(logger.Component(log, "events"))
	}
	pub, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		log.Warn().Err(err).Msg("kafka publisher unavailable, falling back to log sink")
		return events.NewLogPublisher(logger.Component(log, "events"))
	}
	return pub
}
