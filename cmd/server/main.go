package main

import (
	"fmt"
	"log"
	"os"

	"github.com/shelfwatch/backend/config"
	httpDelivery "github.com/shelfwatch/backend/internal/delivery/http"
	"github.com/shelfwatch/backend/internal/domain"
	"github.com/shelfwatch/backend/internal/infrastructure/advisor"
	"github.com/shelfwatch/backend/internal/infrastructure/cache"
	"github.com/shelfwatch/backend/internal/infrastructure/catalog"
	"github.com/shelfwatch/backend/internal/infrastructure/kvstore"
	"github.com/shelfwatch/backend/internal/infrastructure/notify"
	"github.com/shelfwatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ShelfWatch Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache Type: %s", cfg.Cache.Type)

	// Initialize the key-value store backing the recommendation cache
	var store domain.KeyValueStore
	switch cfg.Cache.Type {
	case "file":
		fileStore, err := kvstore.NewFile(cfg.Cache.Path)
		if err != nil {
			log.Fatalf("Failed to open cache file %s: %v", cfg.Cache.Path, err)
		}
		store = fileStore
		log.Printf("Cache file: %s", cfg.Cache.Path)
	default:
		store = kvstore.NewMemory()
	}

	recommendationCache := cache.NewRecommendationCache(store, cfg.Cache.TTL)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	advisorClient := advisor.NewClient(advisor.Config{
		APIKey:         cfg.Advisor.APIKey,
		BaseURL:        cfg.Advisor.BaseURL,
		RequestTimeout: cfg.Advisor.RequestTimeout,
		QuotaPerMinute: cfg.Advisor.QuotaPerMinute,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		advisorClient.SetDebug(true)
		log.Printf("Advisor client debug mode enabled")
	}

	if key := cfg.Advisor.APIKey; len(key) >= 8 {
		log.Printf("Advisor API configured: %s (key: %s...)", cfg.Advisor.BaseURL, key[:8])
	} else {
		log.Printf("Advisor API configured: %s", cfg.Advisor.BaseURL)
	}

	productCatalog := catalog.NewMemory()
	recorder := notify.NewRecorder(cfg.Dashboard.NotificationHistory)

	// Initialize usecase layer
	dashboardService := usecase.NewDashboardService(
		productCatalog,
		recommendationCache,
		advisorClient,
		recorder,
		usecase.DashboardServiceConfig{
			Debounce:    cfg.Dashboard.Debounce,
			Concurrency: cfg.Dashboard.Concurrency,
			ItemTimeout: cfg.Dashboard.ItemTimeout,
		},
	)
	defer dashboardService.Stop()

	log.Printf("Dashboard: debounce=%s, concurrency=%d, item_timeout=%s",
		cfg.Dashboard.Debounce,
		cfg.Dashboard.Concurrency,
		cfg.Dashboard.ItemTimeout)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(dashboardService, productCatalog, recommendationCache, recorder)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
