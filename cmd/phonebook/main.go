package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"phonebook/internal/app"
	logx "phonebook/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./phonebook.yaml", "path to config (yaml or json)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	if err := a.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal start:", err)
		os.Exit(1)
	}

	// The console returns on EOF (e.g. piped input) or on signal.
	if err := a.Console().Run(ctx, os.Stdin, os.Stdout); err != nil {
		a.Logger().Error("console stopped", logx.Err(err))
	}

	stopCtx, stopCancel := app.ShutdownContext()
	defer stopCancel()
	_ = a.Stop(stopCtx)
}
