// Command modelc compiles declarative model schemas.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/syssam/modelc/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
