package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"storefront/internal/config"
	handlers "storefront/internal/controllers/http"
	"storefront/internal/infra/logger"
	mmysql "storefront/internal/infra/mysql"
	"storefront/internal/infra/rabbitmq"
	"storefront/internal/infra/redis"
	mysqlrepo "storefront/internal/repository/mysql"
	"storefront/internal/seed"
	"storefront/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "home goods storefront backend",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply schema migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "rollback", Usage: "roll back N migrations instead of applying"},
				},
				Action: runMigrate,
			},
			{
				Name:   "seed",
				Usage:  "load the default catalog",
				Action: runSeed,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("storefront exited")
	}
}

func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
}

func runMigrate(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if steps := c.Int("rollback"); steps > 0 {
		return mmysql.Rollback(cfg.MySQL.DSN(), steps, log)
	}
	return mmysql.Migrate(cfg.MySQL.DSN(), log)
}

func runSeed(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	db, err := mmysql.NewMySQL(cfg.MySQL, log)
	if err != nil {
		return err
	}
	res, err := seed.Run(c.Context, mysqlrepo.NewStore(db), log)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"categories": res.Categories, "products": res.Products}).Info("Seed finished")
	return nil
}

func serve(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mmysql.NewMySQL(cfg.MySQL, log)
	if err != nil {
		return err
	}
	store := mysqlrepo.NewStore(db)

	var cache redis.ProductCacheInterface
	if addr := cfg.Redis.Addr(); addr != "" {
		client, err := redis.NewClient(ctx, addr, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, product cache disabled")
		} else {
			defer client.Close()
			cache = redis.NewProductCache(client, cfg.ProductCacheTTL)
		}
	}

	var pub rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			log.WithError(err).Warn("RabbitMQ unavailable, order events disabled")
		} else {
			defer p.Close()
			pub = rabbitmq.NewBreakerPublisher(p, rabbitmq.BreakerSettings{}, log)
		}
	}

	auditor := services.NewAuditLogger(store, log)
	ledger := services.NewWalletLedger(store, log)
	orders := services.NewOrderService(store, ledger, pub, auditor, log)
	orders.SetCompany(cfg.Company.Domain())
	if cache != nil {
		orders.SetProductCache(cache)
	}
	defer orders.Wait()

	h := handlers.NewHandler(
		services.NewCartService(store, log),
		orders,
		services.NewCatalogService(store, cache, auditor, log),
		services.NewDashboardService(store, ledger, cfg.LowStockThreshold, log),
		ledger,
		log,
	)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(r, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("Starting storefront")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
