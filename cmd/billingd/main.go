package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/billingkit/modules/billing"
	"github.com/dmitrymomot/billingkit/pkg/config"
	"github.com/dmitrymomot/billingkit/pkg/httpserver"
	"github.com/dmitrymomot/billingkit/pkg/mailer"
	"github.com/dmitrymomot/billingkit/pkg/pg"
	"github.com/dmitrymomot/billingkit/pkg/redis"

	billingcore "github.com/dmitrymomot/billingkit/pkg/billing"
)

type appConfig struct {
	PlanCatalogPath string `env:"PLAN_CATALOG_PATH" envDefault:"plans.yaml"`

	// GatewayCallbackSecret selects the HMAC callback verifier. When
	// empty, callbacks are verified with the Paddle webhook scheme.
	GatewayCallbackSecret string `env:"GATEWAY_CALLBACK_SECRET"`

	// DevMailer logs receipts instead of sending them.
	DevMailer bool `env:"DEV_MAILER" envDefault:"true"`
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	var (
		appCfg    appConfig
		pgCfg     pg.Config
		redisCfg  redis.Config
		httpCfg   httpserver.Config
		paddleCfg billingcore.PaddleConfig
		acctCfg   billingcore.AccountClientConfig
		mailCfg   mailer.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&paddleCfg)
	config.MustLoad(&acctCfg)
	config.MustLoad(&mailCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		fatal(log, "failed to connect to postgres", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		fatal(log, "failed to apply migrations", err)
	}

	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		fatal(log, "failed to connect to redis", err)
	}
	defer redisClient.Close()

	accounts, err := billingcore.NewAccountClient(acctCfg)
	if err != nil {
		fatal(log, "failed to create account service client", err)
	}

	catalog, err := billingcore.NewCatalog(ctx, billingcore.NewYAMLSource(appCfg.PlanCatalogPath))
	if err != nil {
		fatal(log, "failed to load plan catalog", err)
	}

	paddle, err := billingcore.NewPaddleProvider(paddleCfg)
	if err != nil {
		fatal(log, "failed to create paddle provider", err)
	}
	provider := billingcore.WithBreaker(paddle, billingcore.DefaultBreakerConfig())

	var verifier billingcore.CallbackVerifier = paddle
	if appCfg.GatewayCallbackSecret != "" {
		verifier = billingcore.NewSigner(appCfg.GatewayCallbackSecret)
	}

	var sender mailer.EmailSender
	if appCfg.DevMailer {
		sender = mailer.NewDevSender(log)
	} else {
		if sender, err = mailer.NewPostmarkSender(mailCfg); err != nil {
			fatal(log, "failed to create postmark sender", err)
		}
	}

	svc := billingcore.NewService(
		catalog,
		accounts,
		billingcore.NewPostgresStore(pool),
		provider,
		verifier,
		billingcore.NewRedisNonceStore(redisClient),
		billingcore.WithLogger(log),
		billingcore.WithReceiptNotifier(mailer.NewReceiptNotifier(sender)),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/health", httpserver.HealthCheckHandler(log,
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))
	r.Mount("/billing", billing.Handle(svc, log))

	srv := httpserver.New(httpCfg, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil && err != http.ErrServerClosed {
		fatal(log, "http server exited", err)
	}
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
