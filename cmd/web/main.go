package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/peterkuimelis/smtx/internal/config"
	"github.com/peterkuimelis/smtx/internal/logging"
	"github.com/peterkuimelis/smtx/internal/web"
)

func main() {
	configDir := os.Getenv("SMTX_CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}
	if err := config.Load(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	port := flag.Int("port", config.GetInt("web.port"), "HTTP port to listen on")
	dataDir := flag.String("data", config.GetString("dataDir"), "directory holding the unit and skill catalogs")
	rostersFile := flag.String("rosters", config.GetString("rostersFile"), "path to rosters YAML file")
	flag.Parse()

	logs := logging.NewSlogManager()
	if err := logs.SetupFile(os.Stderr, config.GetString("logFile"), config.GetString("logLevel")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logs.Close()
	slog.SetDefault(logs.Logger())

	srv, err := web.NewServer(*dataDir, *rostersFile, logs.Logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", *port)
	slog.Info(fmt.Sprintf("smtx web UI listening on http://localhost:%d", *port))
	if err := srv.ListenAndServe(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
