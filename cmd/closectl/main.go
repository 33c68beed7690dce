package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/SscSPs/closing_engine/internal/apperrors"
	"github.com/SscSPs/closing_engine/internal/cli"
)

func main() {
	os.Exit(run())
}

// run returns 3 when a close left a partial write that needs an operator.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if apperrors.NeedsOperator(err) {
			return 3
		}
		return 1
	}
	return 0
}
