package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/wichananm65/storefront-backend/internal/address"
	"github.com/wichananm65/storefront-backend/internal/auth"
	"github.com/wichananm65/storefront-backend/internal/cart"
	"github.com/wichananm65/storefront-backend/internal/category"
	"github.com/wichananm65/storefront-backend/internal/config"
	"github.com/wichananm65/storefront-backend/internal/database"
	"github.com/wichananm65/storefront-backend/internal/events"
	"github.com/wichananm65/storefront-backend/internal/order"
	"github.com/wichananm65/storefront-backend/internal/payment"
	"github.com/wichananm65/storefront-backend/internal/product"
	"github.com/wichananm65/storefront-backend/internal/user"
	"github.com/wichananm65/storefront-backend/internal/wishlist"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	publisher, closePublisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer closePublisher.Close()

	productService := product.NewService(st.products)
	if seeded, err := productService.Seed(ctx, product.DefaultCatalog()); err != nil {
		return err
	} else if seeded {
		log.Info("seeded product catalog")
	}

	orderService := order.NewService(st.orders, order.Policy{
		TaxRate:      cfg.Pricing.TaxRate,
		ShippingFlat: cfg.Pricing.ShippingFlat,
		Deferred:     cfg.Pricing.Deferred,
	},
		order.WithCatalog(productService),
		order.WithPublisher(publisher),
		order.WithLogger(log),
	)

	var (
		processor payment.Processor
		webhook   *payment.Webhook
	)
	if cfg.Payment.Provider == config.ProviderStripe {
		stripeProcessor := payment.NewStripeProcessor(cfg.Payment.StripeSecretKey, cfg.Payment.StripeWebhookSecret, nil)
		processor = stripeProcessor
		webhook = payment.NewWebhook(orderService, stripeProcessor, log)
	}
	addressService := address.NewService(st.addresses)
	builder := payment.NewBuilder(orderService, processor, payment.Config{
		Currency:  cfg.Payment.Currency,
		ClientURL: cfg.Payment.ClientURL,
		Timeout:   cfg.Payment.Timeout,
	}, log).WithAddressBook(addressService)

	cartService := cart.NewService(st.carts)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	productHandler := product.NewHandler(productService)
	categoryHandler := category.NewHandler(category.NewService(st.categories))
	userHandler := user.NewHandler(user.NewService(st.users), issuer, cartService)
	cartHandler := cart.NewHandler(cartService)
	orderHandler := order.NewHandler(orderService)
	paymentHandler := payment.NewHandler(builder, webhook, orderService)
	addressHandler := address.NewHandler(addressService)
	wishlistHandler := wishlist.NewHandler(wishlist.NewService(st.wishlists, productService))

	app := fiber.New(fiber.Config{DisableStartupMessage: true, Immutable: true})
	app.Use(recover.New())
	app.Use(logger.New())
	setupCORS(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "store": cfg.StoreDriver, "payment": cfg.Payment.Provider})
	})

	productHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	userHandler.RegisterPublicRoutes(app)
	orderHandler.RegisterPublicRoutes(app)
	paymentHandler.RegisterPublicRoutes(app)

	app.Use(auth.Middleware(cfg.JWTSecret, nil))

	userHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	paymentHandler.RegisterProtectedRoutes(app)
	wishlistHandler.RegisterProtectedRoutes(app)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "store", cfg.StoreDriver, "payment", cfg.Payment.Provider)
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Stripe-Signature",
	}))
}

func newPublisher(cfg config.Config, log *slog.Logger) (events.Publisher, io.Closer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.Nop{}, nopCloser{}, nil
	}
	producer, err := events.NewKafkaProducer(cfg.KafkaBrokers)
	if err != nil {
		return nil, nil, err
	}
	p := events.NewKafkaPublisher(producer, log)
	return p, p, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// stores holds the repositories of the configured store driver.
type stores struct {
	users      user.Repository
	products   product.Repository
	categories category.Repository
	orders     order.Repository
	carts      cart.Repository
	wishlists  wishlist.Repository
	addresses  address.Repository
	closers    []func() error
}

func (s *stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("connected to postgres")
		return &stores{
			users:      user.NewPostgresRepository(db),
			products:   product.NewPostgresRepository(db),
			categories: category.NewPostgresRepository(db),
			orders:     order.NewPostgresRepository(db),
			carts:      cart.NewPostgresRepository(db),
			wishlists:  wishlist.NewPostgresRepository(db),
			addresses:  address.NewPostgresRepository(db),
			closers:    []func() error{db.Close},
		}, nil

	case config.StoreMongo:
		client, db, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		disconnect := func() error {
			c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(c)
		}
		if err := database.EnsureIndexes(ctx, db); err != nil {
			disconnect()
			return nil, err
		}
		log.Info("connected to mongo", "database", cfg.MongoDatabase)
		return &stores{
			users:      user.NewMongoRepository(db),
			products:   product.NewMongoRepository(db),
			categories: category.NewMongoRepository(db),
			orders:     order.NewMongoRepository(db),
			carts:      cart.NewMongoRepository(db),
			wishlists:  wishlist.NewMongoRepository(db),
			addresses:  address.NewMongoRepository(db),
			closers:    []func() error{disconnect},
		}, nil

	default:
		log.Warn("using in-memory store, data is lost on restart")
		products := product.NewInMemoryRepository(nil)
		return &stores{
			users:      user.NewInMemoryRepository(nil),
			products:   products,
			categories: category.NewCatalogRepository(products),
			orders:     order.NewInMemoryRepository(),
			carts:      cart.NewInMemoryRepository(nil),
			wishlists:  wishlist.NewInMemoryRepository(nil),
			addresses:  address.NewInMemoryRepository(nil),
		}, nil
	}
}
