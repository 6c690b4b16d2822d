package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/showlog/showlogbackend/database"
	"github.com/showlog/showlogbackend/handlers"
	"github.com/showlog/showlogbackend/realtime"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}
}

func (a *app) serve() error {
	if a.cfg.DatabasePath != database.MemoryPath && !strings.HasPrefix(a.cfg.DatabasePath, "file:") {
		dir := filepath.Dir(a.cfg.DatabasePath)
		log.Printf("Ensuring storage directory exists: %s", dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	normalizer, err := a.normalizer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(a.cfg.AllowedOrigins)
	go hub.Run(ctx)

	router, err := handlers.NewRouter(a.cfg, db, normalizer, hub)
	if err != nil {
		return err
	}

	log.Printf("Using database: %s", a.cfg.DatabasePath)
	if !a.cfg.AuthEnabled() {
		log.Printf("Warning: ADMIN_PASSWORD_HASH is not set; mutating routes are unprotected")
	}

	serverAddr := ":" + a.cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", serverAddr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
