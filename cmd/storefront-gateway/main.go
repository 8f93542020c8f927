package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/storefront-core/internal/pkg/cache"
	"github.com/jcmexdev/storefront-core/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront-core/internal/storefront"
	"github.com/jcmexdev/storefront-core/internal/storefront/checkout/mutationlog/sqlite"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-core/internal/storefront/core/ports"
	"github.com/jcmexdev/storefront-core/internal/storefront/infra/adapters/service"
	"github.com/jcmexdev/storefront-core/internal/storefront/infra/httpx"
)

func main() {
	telemetry.InitLogger(getEnv("OTEL_SERVICE_NAME", "storefront-gateway"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "storefront-gateway"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	backends := buildBackends()

	userID := getEnv("STOREFRONT_USER_ID", "demo-user")
	cfg := storefront.Config{
		UserID:   userID,
		CartID:   getEnv("STOREFRONT_CART_ID", userID),
		Currency: getEnv("STOREFRONT_CURRENCY", "USD"),
		Address: entity.Address{
			StreetAddress: getEnv("STOREFRONT_STREET", "1600 Amphitheatre Parkway"),
			City:          getEnv("STOREFRONT_CITY", "Mountain View"),
			State:         getEnv("STOREFRONT_STATE", "CA"),
			Country:       getEnv("STOREFRONT_COUNTRY", "United States"),
			ZipCode:       94043,
		},
	}

	var opts []storefront.Option
	if path := os.Getenv("MUTATION_LOG_PATH"); path != "" {
		repo, err := sqlite.Open(path)
		if err != nil {
			slog.Error("failed to open mutation log", "path", path, "error", err)
			os.Exit(1)
		}
		defer repo.Close()
		opts = append(opts, storefront.WithMutationLog(repo))
		slog.Info("mutation log enabled", "path", path)
	}

	session := storefront.NewSession(cfg, backends, opts...)
	defer session.Close()

	handler := httpx.NewHandler(session)
	addr := ":" + getEnv("PORT", "8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           httpx.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("storefront gateway running", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}

// buildBackends selects between the in-memory fakes (BACKEND_MODE=fake, the
// default) and the deployed JSON/HTTP services.
func buildBackends() storefront.Backends {
	if getEnv("BACKEND_MODE", "fake") == "fake" {
		cart := service.NewFakeCartService()
		catalog := service.NewFakeProductCatalog()
		return storefront.Backends{
			Cart:      cart,
			Catalog:   catalog,
			Shipping:  service.NewFakeShippingService(),
			Checkout:  service.NewFakeCheckoutService(cart, catalog),
			Converter: service.NewFakeCurrencyConverter(),
		}
	}

	var catalog ports.ProductCatalog = service.NewHTTPProductCatalog(getEnv("CATALOG_SERVICE_URL", "http://localhost:9101"), nil)
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisCache := cache.NewRedisCache(redisAddr, "storefront")
		catalog = service.NewCachedProductCatalog(catalog, redisCache, 0)
		slog.Info("catalog cache enabled", "addr", redisAddr)
	}

	return storefront.Backends{
		Cart:      service.NewHTTPCartService(getEnv("CART_SERVICE_URL", "http://localhost:9100"), nil),
		Catalog:   catalog,
		Shipping:  service.NewHTTPShippingService(getEnv("SHIPPING_SERVICE_URL", "http://localhost:9102"), nil),
		Checkout:  service.NewHTTPCheckoutService(getEnv("CHECKOUT_SERVICE_URL", "http://localhost:9103"), nil),
		Converter: service.NewHTTPCurrencyConverter(getEnv("CURRENCY_SERVICE_URL", "http://localhost:9104"), nil),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
