package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if err := newRootCommand(logger, os.Stdout).ExecuteContext(context.Background()); err != nil {
		logger.Fatalf("Application exited with error: %v", err)
	}
}
