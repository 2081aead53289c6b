package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/peterkuimelis/smtx/internal/config"
	"github.com/peterkuimelis/smtx/internal/console"
	"github.com/peterkuimelis/smtx/internal/logging"
	smtxnet "github.com/peterkuimelis/smtx/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := config.Load(configDir()); err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := os.Args[1]
	switch cmd {
	case "play":
		runPlay(ctx, os.Args[2:])
	case "host":
		runHost(ctx, os.Args[2:])
	case "join":
		runJoin(ctx, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  smtx-cli play [--teams DIR]")
	fmt.Println("  smtx-cli host [--roster N] [--port P] [--rosters FILE] [--data DIR]")
	fmt.Println("  smtx-cli join [--roster N] [--addr ADDR]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Pick a team file and play both sides on this terminal")
	fmt.Println("  host    Start a battle server and play as Player 1")
	fmt.Println("  join    Connect to a battle server and play as Player 2")
}

func configDir() string {
	if dir := os.Getenv("SMTX_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "."
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// logFlags registers the logging flags shared by every command.
func logFlags(fs *flag.FlagSet, defaultLevel string) (file, level *string) {
	file = fs.String("log-file", config.GetString("logFile"), "write diagnostics to this file instead of stderr")
	level = fs.String("log-level", defaultLevel, "debug, info, warn or error")
	return file, level
}

func setupLogging(file, level string) *logging.SlogManager {
	m := logging.NewSlogManager()
	if err := m.SetupFile(os.Stderr, file, level); err != nil {
		fatal(err)
	}
	slog.SetDefault(m.Logger())
	return m
}

func runPlay(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	teams := fs.String("teams", config.GetString("teamsDir"), "directory holding the team files")
	// Keep stderr quiet while the transcript is on the terminal.
	defaultLevel := config.GetString("logLevel")
	if config.GetString("logFile") == "" {
		defaultLevel = "warn"
	}
	logFile, logLevel := logFlags(fs, defaultLevel)
	fs.Parse(args)

	logs := setupLogging(*logFile, *logLevel)
	defer logs.Close()

	game := &console.Game{
		View:     console.NewStreamView(os.Stdin, os.Stdout),
		TeamsDir: *teams,
		Slog:     logs.Logger(),
	}
	if err := game.Play(ctx); err != nil {
		logs.Close()
		fatal(err)
	}
}

func runHost(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	rosterNum := fs.Int("roster", 1, "roster number to use (from the rosters file)")
	port := fs.String("port", strconv.Itoa(config.GetInt("net.port")), "TCP port to listen on")
	rostersFile := fs.String("rosters", config.GetString("rostersFile"), "path to rosters file")
	dataDir := fs.String("data", config.GetString("dataDir"), "directory holding the unit and skill catalogs")
	events := fs.String("events", "", "append one line per battle event to this file")
	logFile, logLevel := logFlags(fs, config.GetString("logLevel"))
	fs.Parse(args)

	logs := setupLogging(*logFile, *logLevel)
	defer logs.Close()

	srv := &smtxnet.Server{
		RostersFile: *rostersFile,
		DataDir:     *dataDir,
		Port:        *port,
		HostRoster:  *rosterNum,
		View:        console.NewStreamView(os.Stdin, os.Stdout),
		Slog:        logs.Logger(),
	}
	if *events != "" {
		f, err := os.OpenFile(*events, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		srv.EventLog = f
	}

	if err := srv.Run(ctx); err != nil {
		logs.Close()
		fatal(err)
	}
}

func runJoin(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	rosterNum := fs.Int("roster", 2, "roster number to use (from the host's rosters file)")
	addr := fs.String("addr", config.GetString("net.addr"), "server address to connect to")
	logFile, logLevel := logFlags(fs, config.GetString("logLevel"))
	fs.Parse(args)

	logs := setupLogging(*logFile, *logLevel)
	defer logs.Close()

	slog.Info("Connecting", "addr", *addr, "roster", *rosterNum)
	view := console.NewStreamView(os.Stdin, os.Stdout)
	if err := smtxnet.Connect(ctx, *addr, *rosterNum, view); err != nil {
		logs.Close()
		fatal(err)
	}
}
