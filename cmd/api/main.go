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

	"voicewidget/internal/config"
	"voicewidget/internal/handler"
	chathandler "voicewidget/internal/handler/chat"
	"voicewidget/internal/model/scenario"
	"voicewidget/internal/service/ai"
	"voicewidget/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	scenarios := scenario.NewMemoryStore(scenario.Seed())
	sessions := session.NewStore()

	var completer chathandler.Completer
	if cfg.AI.Enabled() {
		client, err := ai.NewClient(cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize completion client: %v", err)
		} else {
			completer = client
			log.Println("completion client initialized successfully")
		}
	} else {
		log.Println("OPENROUTER_API_KEY not set, chat endpoint will answer 503")
	}

	router := handler.NewRouter(scenarios, sessions, completer, cfg.Server.ClientOrigin)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("voice widget backend listening on %s", serverCfg.Addr)
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
