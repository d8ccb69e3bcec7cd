package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talentbase.org/internal/auth"
	"talentbase.org/internal/config"
	"talentbase.org/internal/hiring"
	"talentbase.org/internal/httpapi"
	"talentbase.org/internal/obs"
	"talentbase.org/internal/storage"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	tokens, err := auth.NewTokens(cfg.TokenSecret,
		auth.WithIssuer(cfg.TokenIssuer),
		auth.WithTTL(cfg.TokenTTL),
	)
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	files, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// Postgres when a DSN is set, otherwise an in-memory store for local runs.
	var (
		store hiring.Store
		probe httpapi.ReadyProbe
	)
	if cfg.PGDSN != "" {
		pg, err := hiring.OpenPG(cfg.PGDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pg.Close()
		store = pg
		probe = httpapi.ReadyProbe{DB: pg.DB()}
	} else {
		log.Print("TALENTBASE_PG_DSN not set, using in-memory store")
		store = hiring.NewInMemory()
	}

	svc := hiring.NewService(store, tokens, files)

	var opts []httpapi.Option
	if cfg.RateLimit > 0 {
		opts = append(opts, httpapi.WithRateLimit(cfg.RateLimit, cfg.RateBurst))
	}
	api := httpapi.New(svc, files, probe, version, opts...)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting talentbase-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
