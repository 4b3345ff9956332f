package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/openscout/scout/internal/config"
	"github.com/openscout/scout/internal/handler"
	searchhandler "github.com/openscout/scout/internal/handler/search"
	"github.com/openscout/scout/internal/service/ai"
	searchservice "github.com/openscout/scout/internal/service/search"
	"github.com/openscout/scout/internal/service/sources"
	"github.com/openscout/scout/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	feed := store.NewFeed()
	defer feed.Close()

	// Persistence is best effort: the service keeps running in memory when
	// the local database cannot be opened.
	var persister store.Persister
	if sqlite, err := store.NewSQLitePersister(cfg.Storage.DataPath); err != nil {
		log.Printf("warning: failed to open conversation storage: %v", err)
		log.Println("continuing with in-memory conversations only")
	} else {
		persister = sqlite
		defer sqlite.Close()
	}

	conversationStore, err := store.New(persister, feed)
	if err != nil {
		log.Fatalf("failed to load persisted conversations: %v", err)
	}

	sourceProvider := sources.NewProvider()

	var orchestrator searchhandler.Orchestrator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI search - check AI_API_KEY / AI_MODEL")
		} else {
			orchestrator = searchservice.New(conversationStore, sourceProvider, aiService, cfg.Search.MaxSources)
			log.Println("AI search service initialized successfully")
		}
	} else {
		log.Println("AI credentials not configured, search endpoint disabled")
	}

	router := handler.NewRouter(conversationStore, orchestrator, feed)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Scout backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
