package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sumo-service/internal/config"
	"sumo-service/internal/core"
	"sumo-service/internal/hardware"
	"sumo-service/internal/logger"
	"sumo-service/internal/messaging"
)

func main() {
	var serviceLogLevel int
	var redisHost string
	var redisPort int
	flag.IntVar(&serviceLogLevel, "log", 3, "Service log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")
	flag.StringVar(&redisHost, "redis-host", "127.0.0.1", "Redis server address")
	flag.IntVar(&redisPort, "redis-port", 6379, "Redis server port")

	flag.Parse()

	// Create standard logger with appropriate format
	var stdLogger *log.Logger
	if os.Getenv("INVOCATION_ID") != "" {
		// Running under systemd, use minimal format
		stdLogger = log.New(os.Stdout, "", 0)
	} else {
		// Running interactively, use timestamps
		stdLogger = log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds|log.Lmsgprefix)
	}

	// Create leveled logger
	l := logger.NewLogger(stdLogger, logger.LogLevel(serviceLogLevel))

	l.Infof("Starting sumo service...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redis := messaging.NewRedisClient(redisHost, redisPort, l)
	io := hardware.NewLinuxHardwareIO()

	system := core.NewSumoSystem(io, redis, config.Default(), l)
	if err := system.Start(ctx); err != nil {
		l.Fatalf("Failed to start system: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	l.Infof("Received signal %v, shutting down...", sig)
	cancel()
	system.Shutdown()
	l.Infof("Shutdown complete")
}
