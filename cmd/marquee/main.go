package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// Signal-driven shutdown surfaces as context.Canceled; that is a
		// clean exit, not something to print.
		if errors.Is(err, context.Canceled) {
			return
		}
		fmt.Fprintln(os.Stderr, "marquee:", err)
		os.Exit(1)
	}
}
