package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	v1 "github.com/liber-hq/liber/api/v1"
	"github.com/liber-hq/liber/config"
	"github.com/liber-hq/liber/log"
	"github.com/liber-hq/liber/store"
	"github.com/liber-hq/liber/version"
	"github.com/liber-hq/liber/worker"
)

// StartServer starts the HTTP server.
func StartServer(ctx context.Context, store *store.Store, ingestPool worker.WorkPool) (*http.Server, error) {
	handler, err := setupHandler(store, ingestPool)
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Opts.Host, config.Opts.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	return server, nil
}

// Shutdown drains in-flight requests before stopping.
func Shutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Failed to shut down HTTP server", zap.Error(err))
	}
}

func setupHandler(store *store.Store, ingestPool worker.WorkPool) (http.Handler, error) {
	router := mux.NewRouter()
	router.Use(clientIPMiddleware)

	apiHandler := v1.NewHandler(store, ingestPool)
	if err := v1.Server(router, apiHandler); err != nil {
		return nil, err
	}

	router.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(); err != nil {
			http.Error(w, "Database Connection Error", http.StatusInternalServerError)
			return
		}

		w.Write([]byte("OK"))
	}).Name("healthcheck")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(version.GetCurrentVersion()))
	}).Name("version")

	return router, nil
}
