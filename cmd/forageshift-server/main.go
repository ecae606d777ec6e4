package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/antlab/forageshift/internal/log"
	"github.com/antlab/forageshift/internal/resultsdb"
	"github.com/antlab/forageshift/internal/server"
	"github.com/antlab/forageshift/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to YAML configuration file")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	filename, _ := filepath.Abs(*cfgFile)
	provider := config.NewYAMLProvider(filename)
	cfg, err := provider.LoadConfig()
	if err != nil {
		log.Errorf("Failed to load configuration. Did you pass the -config flag? Run with -h for help: %v", err)
		os.Exit(1)
	}

	if cfg.Storage.ResultsPath == "" {
		log.Errorf("No results_path configured; nothing to serve")
		os.Exit(1)
	}

	store, err := resultsdb.Open(cfg.Storage.ResultsPath)
	if err != nil {
		log.Errorf("Failed to open results database %s: %v", cfg.Storage.ResultsPath, err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	controller := server.NewController(ctx, &wg, store, cfg.HTTP.ListenAddr, log.GetSugaredLogger())
	if err := controller.StartController(); err != nil {
		log.Errorf("Failed to start REST server: %v", err)
		os.Exit(1)
	}

	log.Infof("serving results from %s on %s", cfg.Storage.ResultsPath, cfg.HTTP.ListenAddr)

	<-ctx.Done()
	log.Info("shutdown signal received")
	wg.Wait()
}
