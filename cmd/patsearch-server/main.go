package main

import (
	"flag"
	"time"

	"patsearch-backend/lib/configutil"
	"patsearch-backend/lib/patentstore"
	"patsearch-backend/lib/scrapers/patentscope"
	"patsearch-backend/lib/serviceutil"
	"patsearch-backend/lib/telemetry"
	"patsearch-backend/services/patents"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	flag.Parse()
	telemetry.InitSlog(*verbose)

	config, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if config.Port == 0 {
		config.Port = 8130
	}
	if config.Database == "" {
		config.Database = "patents.db"
	}

	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "cmd/patsearch-server")
	if err == nil {
		defer tel.Shutdown(ctx)
		telemetry.InstrumentPerfStats(ctx)
	}

	store, err := patentstore.Open(config.Database)
	if err != nil {
		serviceutil.Fatal("failed to open patent store", err)
	}
	defer store.Close()

	engine := patents.NewPortalEngine(patentscope.ClientOptions{
		BaseURL:    config.BaseUrl,
		MinDelay:   time.Duration(config.MinDelaySeconds) * time.Second,
		MaxDelay:   time.Duration(config.MaxDelaySeconds) * time.Second,
		Timeout:    time.Duration(config.TimeoutSeconds) * time.Second,
		MaxRetries: config.MaxRetries,
	})
	service := patents.NewService(engine, &store)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	service.RegisterHTTP(router)

	go serviceutil.StartHttpServer(config.Port, router)

	<-ctx.Done()
}
