// Command carcrawl pulls listing pages from the search API and appends new rows per partition
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"carcrawl/cmd/carcrawl/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := commands.ExecuteContext(ctx)
	stop()
	os.Exit(code)
}
