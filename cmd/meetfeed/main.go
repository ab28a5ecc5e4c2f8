package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/meetfeed/meetfeed-client/pkg/apierror"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "meetfeed: %s\n", apierror.Message(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if apierror.IsCanceled(err) {
			return nil
		}
		return err
	}
	return nil
}
