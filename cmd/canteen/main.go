package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/canteen/internal/confirm"
	"github.com/Skotchmaster/canteen/internal/es"
	"github.com/Skotchmaster/canteen/internal/httpserver"
	"github.com/Skotchmaster/canteen/internal/mailing"
	"github.com/Skotchmaster/canteen/internal/media"
	"github.com/Skotchmaster/canteen/internal/mykafka"
	"github.com/Skotchmaster/canteen/internal/payment"
	"github.com/Skotchmaster/canteen/internal/remote"
	"github.com/Skotchmaster/canteen/internal/repo"
	"github.com/Skotchmaster/canteen/internal/service/cart"
	"github.com/Skotchmaster/canteen/internal/service/catalog"
	"github.com/Skotchmaster/canteen/internal/service/checkout"
	"github.com/Skotchmaster/canteen/internal/service/feedback"
	"github.com/Skotchmaster/canteen/internal/service/identity"
	"github.com/Skotchmaster/canteen/internal/service/order"
	"github.com/Skotchmaster/canteen/pkg/config"
	pkgdb "github.com/Skotchmaster/canteen/pkg/db"
	"github.com/Skotchmaster/canteen/pkg/logging"
	loggingmw "github.com/Skotchmaster/canteen/pkg/middleware/logging"
)

const kvRedis = "redis"

type storage struct {
	store repo.Store
	ready func(ctx context.Context) error
	close func() error
}

func openStorage(ctx context.Context, cfg config.Config) (*storage, error) {
	if cfg.KVDriver == kvRedis {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return &storage{
			store: repo.NewRedisRepo(client, cfg.ServiceName+":"),
			ready: func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close: client.Close,
		}, nil
	}

	db, err := pkgdb.Open(ctx, cfg.KVDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	gr := &repo.GormRepo{DB: db}
	if err := gr.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &storage{
		store: gr,
		ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func() error { return pkgdb.Close(db) },
	}, nil
}

func paymentHandoff(cfg config.Config) payment.Handoff {
	if cfg.PaymentProvider == payment.ProviderMidtrans {
		config.MustNonEmpty(cfg.MidtransServerKey, "MIDTRANS_SERVER_KEY")
		return payment.NewMidtransHandoff(cfg.MidtransServerKey, cfg.MidtransProduction)
	}
	return payment.LinkHandoff{BaseURL: cfg.PaymentURL, Service: cfg.PaymentService}
}

func main() {
	cfg := config.Load()
	config.MustNonEmptyBytes(cfg.ProfileSecret, "PROFILE_SECRET")
	config.MustOneOf(cfg.KVDriver, "KV_DRIVER", pkgdb.DriverSQLite, pkgdb.DriverPostgres, kvRedis)
	config.MustOneOf(cfg.PaymentProvider, "PAYMENT_PROVIDER", payment.ProviderLink, payment.ProviderMidtrans)

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	st, err := openStorage(openCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("storage open: %v", err)
	}

	var events mykafka.Publisher = mykafka.Nop{}
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers)
		events = producer
	}

	cat := &catalog.CatalogService{Store: st.store, Events: events}
	ords := &order.OrderService{Store: st.store, Events: events}
	crt := &cart.CartService{Store: st.store}
	fb := &feedback.FeedbackService{Store: st.store}
	co := &checkout.CheckoutService{Cart: crt, Orders: ords, Payment: paymentHandoff(cfg)}

	var users identity.UserSource
	if cfg.RemoteAPIURL != "" {
		rc := remote.NewClient(cfg.RemoteAPIURL, cfg.RemoteTimeout)
		cat.Remote = rc
		co.Remote = rc
		users = rc

		hctx, hcancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rc.Health(hctx); err != nil {
			logger.Warn("remote_unhealthy", "url", cfg.RemoteAPIURL, "error", err)
		} else {
			logger.Info("remote_healthy", "url", cfg.RemoteAPIURL)
		}
		hcancel()
	}

	ids, err := identity.NewIdentityService(st.store, identity.SeedDirectory{}, users)
	if err != nil {
		log.Fatalf("identity: %v", err)
	}
	if err := ids.Init(ctx); err != nil {
		log.Fatalf("identity init: %v", err)
	}
	co.Identity = ids

	if cfg.ESURL != "" {
		esClient, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
		if err != nil {
			logger.Warn("es_disabled", "reason", "client init failed", "error", err)
		} else {
			cat.Index = &es.MenuIndex{Client: esClient, IndexName: cfg.ESIndex}
		}
	}

	if cfg.SMTPHost != "" {
		mailer := mailing.NewMailer(mailing.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			Inbox:    cfg.Inbox,
		})
		co.Mail = mailer
		fb.Notify = mailer
	}

	admin := &httpserver.AdminHTTP{Catalog: cat, Orders: ords, Feedback: fb, Broker: confirm.NewBroker(confirm.DefaultTTL)}
	if cfg.S3Bucket != "" {
		images, err := media.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey)
		if err != nil {
			logger.Warn("image_storage_disabled", "error", err)
		} else {
			admin.Images = images
		}
	}

	if menu, err := cat.LoadMenu(ctx); err != nil {
		logger.Warn("menu_load_failed", "error", err)
	} else {
		logger.Info("menu_loaded", "dishes", len(menu))
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		MenuHandler:     &httpserver.MenuHTTP{Catalog: cat},
		AuthHandler:     &httpserver.AuthHTTP{Identity: ids},
		CartHandler:     &httpserver.CartHTTP{Cart: crt, Catalog: cat},
		OrderHandler:    &httpserver.OrderHTTP{Orders: ords, Checkout: co},
		AdminHandler:    admin,
		FeedbackHandler: &httpserver.FeedbackHTTP{Feedback: fb},
		ProfileSecret:   cfg.ProfileSecret,
		Ready:           st.ready,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr, "kv_driver", cfg.KVDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}
	if err := st.close(); err != nil {
		logger.Error("storage_close_failed", "error", err)
	}

	logger.Info("stopped")
}
