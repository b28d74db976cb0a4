package main

import (
	"log/slog"
	"os"

	"github.com/gcbaptista/go-search-server/internal/cli"
	"github.com/gcbaptista/go-search-server/internal/logger"
)

func main() {
	logger.Setup("info", "text")
	if err := cli.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
