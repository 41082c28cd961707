package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"drivego/internal/app"
	"drivego/internal/ui"
)

type launchOptions struct {
	StartHidden bool
	SettingsTab string
}

func parseLaunchOptions(args []string) (launchOptions, error) {
	var opts launchOptions
	fs := flag.NewFlagSet("drivego", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.StartHidden, "start-hidden", false, "start minimized to the system tray")
	fs.StringVar(&opts.SettingsTab, "settings-tab", "", "open the settings window on the given tab")
	if err := fs.Parse(args); err != nil {
		return launchOptions{}, err
	}
	if fs.NArg() > 0 {
		return launchOptions{}, fmt.Errorf("unexpected argument: %q", fs.Arg(0))
	}

	return opts, nil
}

func main() {
	opts, err := parseLaunchOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Initialize(ctx)
	if err != nil {
		slog.Error("initialize app runtime", "error", err)
		os.Exit(1)
	}

	var closeOnce sync.Once
	closeRuntime := func() {
		closeOnce.Do(func() {
			_ = rt.Close()
		})
	}
	defer closeRuntime()

	launch := ui.LaunchOptions{StartHidden: opts.StartHidden}
	if opts.SettingsTab != "" {
		if route := app.ParseRoute("#settings/" + opts.SettingsTab); route.TabNamed {
			launch.OpenSettings = true
			launch.InitialTab = route.Tab
		}
	}

	dep := ui.BuildRuntimeDependencies(rt, launch, func() {
		stop()
		closeRuntime()
	})

	if err := ui.Run(dep); err != nil {
		slog.Error("run ui", "error", err)
		os.Exit(1)
	}
}
