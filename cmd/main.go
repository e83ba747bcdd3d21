package main

import (
	"context"
	"log"
	"time"

	"recommend-service/api"
	"recommend-service/cache"
	"recommend-service/config"
	"recommend-service/diagnostics"
	"recommend-service/events"
	"recommend-service/metrics"
	"recommend-service/model"
	"recommend-service/pipeline"
	"recommend-service/source"
)

func main() {
	cfg := config.Load()

	metrics.Init("recommend-service", "1.0", "production")

	cacheMgr := cache.NewManager(cfg.CacheTTL)

	apiSource := source.NewAPISource(cfg.FrontendURL, cfg.RequestTimeout)

	sources := []source.ProductSource{apiSource}
	if cfg.EnableScrape {
		sources = append(sources, source.NewScrapeSource(cfg.FrontendURL, cfg.RequestTimeout))
	} else {
		log.Println("Scrape source disabled via ENABLE_SCRAPE")
	}

	var explainer pipeline.Explainer
	if cfg.ExplainURL != "" {
		log.Printf("Explanation service enabled at %s", cfg.ExplainURL)
		explainer = pipeline.NewHTTPExplainer(cfg.ExplainURL, cfg.RequestTimeout)
	}

	engine := pipeline.NewEngine(cacheMgr, explainer, sources...)

	targets := []diagnostics.Target{
		{
			Name:     "frontend_home",
			Protocol: model.ProtocolHTTP,
			URL:      cfg.FrontendURL,
			Timeout:  cfg.ProbeTimeout,
		},
		{
			Name:     "frontend_json",
			Protocol: model.ProtocolHTTP,
			URL:      cfg.FrontendURL + "/api/products",
			Timeout:  cfg.ProbeTimeout,
		},
		{
			Name:       "catalog",
			Protocol:   model.ProtocolSkip,
			SkipReason: "catalog is gRPC, no HTTP probe",
		},
	}
	aggregator := diagnostics.NewAggregator(diagnostics.NewProber(), targets)

	publisher := events.NewPublisher(cfg.NATSURL)
	defer publisher.Close()

	if cfg.WarmCache {
		go warmCache(cacheMgr, apiSource, cfg.CacheTTL)
	}

	handler := api.NewHandler(engine, aggregator, publisher)

	log.Println("Starting the recommend service")
	api.StartServer(handler, cfg.Port)
}

// warmCache keeps the API source entry fresh so the first request after a
// quiet period does not pay the upstream round trip.
func warmCache(mgr *cache.Manager, src source.ProductSource, interval time.Duration) {
	refresh := func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if _, err := mgr.GetOrFetch(ctx, src.Name(), src.FetchProducts); err != nil {
			log.Printf("Cache warm-up fetch failed: %v", err)
		}
	}

	log.Println("Performing initial cache warm-up...")
	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		refresh()
	}
}
