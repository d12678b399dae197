// mapservice runs the WebSocket map generation service.
//
// Usage:
//
//	mapservice --config config.yaml
//	mapservice --hash-token sesame   (print a bcrypt token hash and exit)
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cinderworks/mapforge/internal/config"
	"github.com/cinderworks/mapforge/internal/logger"
	"github.com/cinderworks/mapforge/internal/server"
	"github.com/cinderworks/mapforge/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Service configuration file")
	hashToken := flag.String("hash-token", "", "Print the bcrypt hash of a token and exit")
	noStore := flag.Bool("no-store", false, "Run without the map archive database")
	flag.Parse()

	if *hashToken != "" {
		hash, err := server.HashToken(*hashToken)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	cfg.Logging.ApplyEnvOverrides()
	if err := logger.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	var st *store.Store
	if !*noStore {
		st, err = store.Open(store.Config{
			Driver: cfg.Store.Driver,
			Path:   cfg.Store.Path,
			DSN:    cfg.Store.DSN,
		})
		if err != nil {
			logger.Error("failed to open map archive", "error", err)
			os.Exit(1)
		}
		defer st.Close()
		logger.Info("map archive opened", "driver", cfg.Store.Driver)
	}

	srv := server.New(cfg, st)
	if err := srv.Start(); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
}
