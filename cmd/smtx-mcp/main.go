package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/smtx/internal/config"
	"github.com/peterkuimelis/smtx/internal/logging"
	smtxmcp "github.com/peterkuimelis/smtx/internal/mcp"
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

	rosters := flag.String("rosters", config.GetString("rostersFile"), "path to rosters YAML file")
	dataDir := flag.String("data", config.GetString("dataDir"), "directory holding the unit and skill catalogs")
	port := flag.String("port", strconv.Itoa(config.GetInt("mcp.port")), "TCP port for human player connection")
	logFile := flag.String("log-file", config.GetString("logFile"), "write diagnostics to this file instead of stderr")
	flag.Parse()

	// stdout carries the MCP protocol; diagnostics go to stderr or a file.
	logs := logging.NewSlogManager()
	if err := logs.SetupFile(os.Stderr, *logFile, config.GetString("logLevel")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logs.Close()

	smtxmcp.Configure(smtxmcp.SessionConfig{
		RostersFile: *rosters,
		DataDir:     *dataDir,
		Port:        *port,
		Slog:        logs.Logger(),
	})

	s := server.NewMCPServer("smtx", "1.0.0")
	smtxmcp.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
