package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kyleking/gh-star-scout/cmd"
	"github.com/kyleking/gh-star-scout/internal/errors"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Version = version

	if err := cmd.Execute(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var structErr *errors.Error
		if stderrors.As(err, &structErr) {
			for _, suggestion := range structErr.Suggestions {
				fmt.Fprintf(os.Stderr, "  hint: %s\n", suggestion)
			}
		}

		stop()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch errors.GetType(err) {
	case errors.ErrTypeValidation, errors.ErrTypeConfig:
		return 2
	default:
		return 1
	}
}
