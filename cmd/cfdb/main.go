package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/chunger/cfdb/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(cli.ExitCode(err))
	}
}
