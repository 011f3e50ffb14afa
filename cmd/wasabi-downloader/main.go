// Command wasabi-downloader downloads files from Wasabi Hot Cloud Storage.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/S-Muro0526/wasabi/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.NewApp().Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
