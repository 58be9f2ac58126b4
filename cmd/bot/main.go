package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ch1nq/arcadio-go/pkg/api"
	"github.com/ch1nq/arcadio-go/pkg/fleet"
	"github.com/ch1nq/arcadio-go/pkg/log"
	"github.com/ch1nq/arcadio-go/pkg/repositories"
	"github.com/ch1nq/arcadio-go/pkg/strategy"
	"github.com/ch1nq/arcadio-go/pkg/version"
)

func main() {
	hostname := flag.String("hostname", "localhost", "Game server hostname")
	port := flag.Int("port", 8080, "Game server port")
	numBots := flag.Int("bots", 1, "Number of concurrent bots")
	strategyName := flag.String("strategy", "avoid", "Strategy: forward, random, avoid or script")
	scriptPath := flag.String("script", "", "Script file for the script strategy")
	slow := flag.Bool("slow", false, "Wrap the strategy in the slow runner, which skips ticks while a decision is still being computed")
	pullUpdates := flag.Bool("pull-updates", false, "Request updates instead of having them pushed")
	reconnect := flag.Bool("reconnect", false, "Start a new game when one ends")
	sqlitePath := flag.String("sqlite", "", "SQLite database path for match history")
	replayDir := flag.String("replay-dir", "", "Directory for game journals")
	apiPort := flag.Int("api-port", 0, "Port for the status API, 0 disables it")
	connectsPerSecond := flag.Float64("connects-per-second", fleet.DefaultMaxConnectsPerSecond, "Connection rate limit across the fleet")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting bot version %s", version.Get())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	newStrategy, err := newStrategyFactory(*strategyName, *scriptPath, *slow)
	if err != nil {
		panic(fmt.Sprintf("Failed to configure the %s strategy: %v", *strategyName, err))
	}

	var saveMatchChan chan fleet.SaveMatchRequest
	repository := newRepository(ctx, *sqlitePath)
	if repository != nil {
		defer repository.Close(ctx)

		saveMatchChannelSize := 100
		saveMatchChan = make(chan fleet.SaveMatchRequest, saveMatchChannelSize)
		saveMatchWorker := fleet.NewSaveMatchWorker(fleet.NewSaveMatchWorkerOptions{
			Repository:    repository,
			SaveMatchChan: saveMatchChan,
		})
		go saveMatchWorker.Start(ctx)
	}

	fleetManager := fleet.NewManager(fleet.NewManagerOptions{
		Host:                 *hostname,
		Port:                 *port,
		NumBots:              *numBots,
		StrategyName:         *strategyName,
		NewStrategy:          newStrategy,
		RequestUpdates:       *pullUpdates,
		Reconnect:            *reconnect,
		ReplayDir:            *replayDir,
		SaveMatchChan:        saveMatchChan,
		MaxConnectsPerSecond: *connectsPerSecond,
	})

	if *apiPort > 0 {
		apiServer := api.NewAPIServer(api.NewAPIServerOptions{
			Port:         *apiPort,
			FleetManager: fleetManager,
			Repository:   repository,
		})
		go apiServer.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := apiServer.Stop(stopCtx); err != nil {
				log.Error("Failed to stop API server: %v", err)
			}
		}()
	}

	log.Info("Starting fleet manager")
	fleetManager.Start(ctx)
}

// newRepository opens the match repository. DATABASE_URL selects
// Postgres, the sqlite flag selects SQLite, and with neither set there
// is no repository and matches are not saved.
func newRepository(ctx context.Context, sqlitePath string) repositories.Repository {
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		return repositories.NewPostgresRepository(ctx, connStr)
	}
	if sqlitePath != "" {
		repository, err := repositories.NewSQLiteRepository(ctx, sqlitePath)
		if err != nil {
			panic(fmt.Sprintf("Failed to open sqlite database: %v", err))
		}
		return repository
	}
	return nil
}

// newStrategyFactory returns a factory that builds one strategy
// instance per session.
func newStrategyFactory(name, scriptPath string, slow bool) (func() strategy.Strategy, error) {
	var newStrategy func() strategy.Strategy
	switch name {
	case "forward":
		newStrategy = strategy.NewForwardStrategy
	case "random":
		newStrategy = func() strategy.Strategy {
			return strategy.NewRandomStrategy(strategy.NewRandomStrategyOptions{})
		}
	case "avoid":
		newStrategy = func() strategy.Strategy {
			return strategy.NewAvoidStrategy(strategy.NewAvoidStrategyOptions{})
		}
	case "script":
		if scriptPath == "" {
			return nil, fmt.Errorf("the script strategy needs a script file")
		}
		// Check the script loads before the fleet starts.
		if _, err := strategy.NewScriptStrategy(strategy.NewScriptStrategyOptions{Path: scriptPath}); err != nil {
			return nil, err
		}
		newStrategy = func() strategy.Strategy {
			s, err := strategy.NewScriptStrategy(strategy.NewScriptStrategyOptions{Path: scriptPath})
			if err != nil {
				panic(fmt.Sprintf("Failed to load script strategy: %v", err))
			}
			return s
		}
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}

	if slow {
		inner := newStrategy
		newStrategy = func() strategy.Strategy {
			return strategy.NewSlowStrategyRunner(strategy.NewSlowStrategyRunnerOptions{Inner: inner()})
		}
	}

	return newStrategy, nil
}
