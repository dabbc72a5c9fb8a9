package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/fstate/internal/command"
	_ "github.com/keshon/fstate/internal/command/all"
	"github.com/keshon/fstate/internal/logging"
)

func main() {
	logging.InitDefault()
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := command.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		logging.Sync()
		os.Exit(1)
	}
}
