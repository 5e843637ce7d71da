package main

import (
	"context"
	"flag"
	"log"
	"os"

	"coffeeRelay/cmd/app"
	"coffeeRelay/configs"
	"coffeeRelay/internal/logger"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config file, empty for defaults and env only")
	flag.Parse()

	config, err := configs.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(config.Log.Level, config.Log.Encoding)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	wait, err := app.NewApp(config, zapLogger).LetsGo(context.Background())
	if err != nil {
		zapLogger.Fatal("Failed to start relay", zap.Error(err))
	}

	exitCode := <-wait
	zapLogger.Info("Relay exited", zap.Int("exit_code", exitCode))
	_ = zapLogger.Sync()
	os.Exit(exitCode)
}
