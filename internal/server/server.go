// Package server exposes stored analysis results over a small JSON API so
// downstream renderers consume plain data values instead of recomputing the
// pipeline.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/antlab/forageshift/internal/resultsdb"
)

// Controller represents the results API server
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	Server   http.Server
	store    *resultsdb.Store
	logger   *zap.SugaredLogger
	handlers *Handlers
}

// NewController creates a new results API controller
func NewController(ctx context.Context, wg *sync.WaitGroup, store *resultsdb.Store, listenAddr string, logger *zap.SugaredLogger) *Controller {
	ctrl := &Controller{
		ctx:    ctx,
		wg:     wg,
		store:  store,
		logger: logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	router := mux.NewRouter()
	router.HandleFunc("/health", ctrl.handlers.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/summaries", ctrl.handlers.Summaries).Methods(http.MethodGet)
	router.HandleFunc("/api/shifts", ctrl.handlers.Shifts).Methods(http.MethodGet)
	router.HandleFunc("/api/regression/latest", ctrl.handlers.LatestRegression).Methods(http.MethodGet)
	router.Use(ctrl.logRequest)

	ctrl.Server = http.Server{
		Addr:         listenAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return ctrl
}

// StartController starts the HTTP listener and shuts it down when the
// controller context is cancelled.
func (c *Controller) StartController() error {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.logger.Infof("results API listening on %s", c.Server.Addr)
		if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.logger.Errorf("results API server error: %v", err)
		}
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			c.logger.Errorf("results API shutdown error: %v", err)
		}
	}()

	return nil
}

func (c *Controller) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		c.logger.Debugf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
