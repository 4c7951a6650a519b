package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err = runApp(ctx, cfg, output{out: os.Stdout, logOut: os.Stderr}); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
