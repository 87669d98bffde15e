package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	appLog "classclock/internal/log"
	"classclock/internal/ticker"
	"classclock/internal/web"
)

type serveOptions struct {
	Listen  string
	NoWatch bool
}

func addServe(topLevel *cobra.Command) {
	so := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clock: tick, announce, reload and serve the clock page.",
		Example: `
classclock serve
classclock serve --listen :8080 --timetable timetable2.json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return runServe(so)
		},
	}

	cmd.Flags().StringVar(&so.Listen, "listen", "", "HTTP listen address (overrides config if set).")
	cmd.Flags().BoolVar(&so.NoWatch, "no-watch", false, "Do not reload local timetable files on change.")

	topLevel.AddCommand(cmd)
}

func runServe(so *serveOptions) error {
	cfg, err := ro.loadConfig(false)
	if err != nil {
		return err
	}
	if so.Listen != "" {
		cfg.Listen = so.Listen
	}
	if so.NoWatch {
		cfg.Watch = false
	}

	a := newApp(cfg, true)
	defer a.close()

	appLog.Info("classclock starting",
		"version", version,
		"listen", cfg.Listen,
		"timezone", a.loc.String(),
		"lang", cfg.Lang,
		"timetable", cfg.Timetable,
		"refresh", cfg.RefreshCron,
		"tick", cfg.Tick.String(),
		"watch", cfg.Watch,
		"speech", cfg.Speech.Enabled,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	// A failed first load leaves the clock running with an empty timetable.
	if _, err := a.load(ctx); err != nil {
		appLog.Error("initial timetable load failed", err)
	}

	stopCron, err := a.loader.Schedule(cfg.RefreshCron, a.loc)
	if err != nil {
		return err
	}
	defer stopCron()

	tk := ticker.New(a.clock, cfg.Tick, a.metrics).WithNow(a.now)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = tk.Run(ctx)
	}()
	if cfg.Watch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.loader.Watch(ctx); err != nil {
				appLog.Error("timetable watch stopped", err)
			}
		}()
	}

	srv := web.NewServer(cfg, web.Deps{
		Clock:   a.clock,
		Loader:  a.loader,
		Ticker:  tk,
		Sink:    a.sink,
		Metrics: a.metrics,
	})
	err = srv.ListenAndServe(ctx)
	cancel()
	wg.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	appLog.Info("classclock exiting")
	return nil
}
