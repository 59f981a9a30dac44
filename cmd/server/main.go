package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/compareit/backend/config"
	httpDelivery "github.com/compareit/backend/internal/delivery/http"
	"github.com/compareit/backend/internal/domain"
	"github.com/compareit/backend/internal/infrastructure/cache"
	"github.com/compareit/backend/internal/infrastructure/connector"
	"github.com/compareit/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting CompareIt Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Cache: %s (TTL %s)", cfg.Cache.Type, cfg.Cache.TTL)

	// Cache backend per configuration
	var resultCache domain.CacheRepository
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		resultCache = redisCache
	default:
		resultCache = cache.NewMemoryCache(cfg.Cache.SweepInterval)
	}

	// One connector client per configured source, registered in sorted name
	// order so the downstream tie-break order is deterministic.
	names := make([]string, 0, len(cfg.Scrape.Sources))
	for name := range cfg.Scrape.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	connectors := make([]domain.SourceConnector, 0, len(names))
	for _, name := range names {
		client := connector.NewClient(name, cfg.Scrape.Sources[name], cfg.Scrape.RequestsPerMinute)
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
		}
		connectors = append(connectors, client)
		log.Printf("Source configured: %s -> %s", name, cfg.Scrape.Sources[name])
	}

	orchestrator := usecase.NewFetchOrchestrator(connectors, usecase.OrchestratorConfig{
		MaxRetries:       cfg.Scrape.MaxRetries,
		RetryDelay:       cfg.Scrape.RetryDelay,
		PerSourceTimeout: cfg.Scrape.PerSourceTimeout,
	})

	matcher := usecase.NewMatchingService(usecase.MatchConfig{
		MinMatchScore:      cfg.Matching.MinMatchScore,
		Brands:             cfg.Matching.Brands,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	aggregator := usecase.NewAggregationService(matcher, cfg.Matching.EnableDebugLogging)

	searchService := usecase.NewSearchService(resultCache, orchestrator, aggregator, usecase.SearchServiceConfig{
		CacheTTL:           cfg.Cache.TTL,
		RequestTimeout:     cfg.Scrape.RequestTimeout,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	log.Printf("Matching: threshold=%.2f, brands=%d, debug=%v",
		cfg.Matching.MinMatchScore, len(cfg.Matching.Brands), cfg.Matching.EnableDebugLogging)

	handler := httpDelivery.NewHandler(searchService)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
