package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mizly/CryVigilance/cmd/cryvigilance/commands"
)

// Version information (set via ldflags during build)
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := commands.Execute(ctx, Version, Commit); err != nil {
		os.Exit(1)
	}
}
