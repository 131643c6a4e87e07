// @title                      Storefront API
// @version                    1.0
// @description                Product catalog, shopping cart and JWT authentication.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/huertohogar/storefront-api/internal/api"
	"github.com/huertohogar/storefront-api/internal/core/ports"
	"github.com/huertohogar/storefront-api/internal/core/security"
	"github.com/huertohogar/storefront-api/internal/core/service"
	"github.com/huertohogar/storefront-api/internal/infrastructure/db/memory"
	mongodb "github.com/huertohogar/storefront-api/internal/infrastructure/db/mongo"
	"github.com/huertohogar/storefront-api/internal/infrastructure/db/postgres"
	redisdb "github.com/huertohogar/storefront-api/internal/infrastructure/db/redis"
	"github.com/huertohogar/storefront-api/internal/infrastructure/http/handlers"
	"github.com/huertohogar/storefront-api/internal/infrastructure/seed"
	"github.com/huertohogar/storefront-api/internal/pkg/config"
	"github.com/huertohogar/storefront-api/pkg/logger"
)

type stores struct {
	users    ports.UserRepository
	products ports.ProductRepository
	cart     ports.CartRepository
	health   map[string]handlers.Pinger
	close    func(context.Context)
}

func main() {
	envErr := godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "storefront-api",
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found; relying on existing environment")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	hasher, err := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	codec, err := security.NewTokenCodec(
		security.DecodeSecret(cfg.Auth.JWTSecret),
		cfg.Auth.JWTTTL,
		security.WithIssuer(cfg.Auth.JWTIssuer),
	)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close(context.Background())

	var guard *redisdb.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		guard = redisdb.NewIdempotencyStore(rdb)
		st.health["redis"] = redisdb.NewChecker(rdb)
	} else {
		log.Info().Msg("REDIS_ADDR not set; Idempotency-Key handling disabled")
	}

	authService := service.NewAuthService(st.users, hasher, codec, log, cfg.Auth.AllowRoleAssignment)
	productService := service.NewProductService(st.products, log)
	cartService := service.NewCartService(st.cart, st.products, log)

	if cfg.Seed.Enabled {
		seeder := seed.New(st.products, st.users, hasher, log)
		if err := seeder.Run(ctx, seed.Admin{
			Username: cfg.Seed.AdminUsername,
			Password: cfg.Seed.AdminPassword,
			FullName: cfg.Seed.AdminFullName,
		}); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	deps := api.Dependencies{
		Logger:      log,
		Users:       st.users,
		Tokens:      codec,
		Auth:        authService,
		Products:    productService,
		Cart:        cartService,
		Health:      st.health,
		CORSOrigins: cfg.CORSOrigins,
	}
	// A nil *IdempotencyStore must not reach the interface field.
	if guard != nil {
		deps.Idempotency = guard
	}
	e := api.NewRouter(deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("storefront api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:    postgres.NewUserRepository(pool),
			products: postgres.NewProductRepository(pool),
			cart:     postgres.NewCartRepository(pool),
			health:   map[string]handlers.Pinger{"postgres": postgres.NewChecker(pool)},
			close:    func(context.Context) { pool.Close() },
		}, nil

	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			users:    mongodb.NewUserRepository(db),
			products: mongodb.NewProductRepository(db),
			cart:     mongodb.NewCartRepository(db),
			health:   map[string]handlers.Pinger{"mongo": mongodb.NewChecker(db)},
			close: func(ctx context.Context) {
				if err := client.Disconnect(ctx); err != nil {
					log.Error().Err(err).Msg("mongo disconnect")
				}
			},
		}, nil

	default:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return &stores{
			users:    memory.NewUserRepository(),
			products: memory.NewProductRepository(),
			cart:     memory.NewCartRepository(),
			health:   map[string]handlers.Pinger{},
			close:    func(context.Context) {},
		}, nil
	}
}
