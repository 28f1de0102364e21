package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marleypowell/astal/pkg/inspect"
	"github.com/marleypowell/astal/pkg/variable"
)

// stringVar is the variable type both streaming subcommands drive.
type stringVar = variable.Variable[string]

// streamConfig describes one streaming run: how to attach the driver and
// whether to expose the inspector.
type streamConfig struct {
	name  string
	serve string
	start func(v *stringVar)
}

// runStream wires a string variable to stdout (and optionally the
// inspector), attaches the driver, and blocks until interrupted.
func runStream(cfg streamConfig) error {
	logger := slog.Default().With("component", "astal-cli")

	v := variable.New("")
	defer v.Drop()

	unsubscribe := v.Subscribe(func(val string) {
		fmt.Println(val)
	})
	defer unsubscribe()

	// OnError is last-registration-wins, so fold the inspector's handler
	// into the stderr one instead of registering twice.
	onError := func(err error) {
		fmt.Fprintf(os.Stderr, "\033[31mdriver error:\033[0m %s\n", err)
	}

	var srv *inspect.Server
	if cfg.serve != "" {
		srv = inspect.NewServer()
		srv.Register(cfg.name, v)
		record := srv.ErrorHandler(cfg.name)
		printErr := onError
		onError = func(err error) {
			printErr(err)
			record(err)
		}
		go func() {
			if err := srv.ListenAndServe(cfg.serve); err != nil {
				logger.Error("inspector failed", "error", err)
			}
		}()
	}
	v.OnError(onError)

	cfg.start(v)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("inspector shutdown", "error", err)
		}
	}
	return nil
}
