package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ch1nq/arcadio-go/observer/game"
	"github.com/ch1nq/arcadio-go/observer/network"
	"github.com/ch1nq/arcadio-go/pkg/log"
	"github.com/ch1nq/arcadio-go/pkg/queue"
	"github.com/ch1nq/arcadio-go/pkg/version"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	hostname := flag.String("hostname", "localhost", "Game server hostname")
	port := flag.Int("port", 8080, "Game server port")
	windowSize := flag.Int("window-size", 800, "Window size in pixels")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting observer version %s", version.Get())

	serverMessageQueue := queue.NewInMemoryQueue(1024)
	networkManager := network.NewNetworkManager(*hostname, *port, serverMessageQueue)

	ebiten.SetWindowSize(*windowSize, *windowSize)
	ebiten.SetWindowTitle("Arcadio Observer")
	if err := ebiten.RunGame(game.NewGame(networkManager)); err != nil {
		panic(fmt.Sprintf("Failed to run game: %v", err))
	}
}
