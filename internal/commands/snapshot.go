package commands

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"classclock/internal/capture"
	appLog "classclock/internal/log"
	"classclock/internal/render"
	"classclock/internal/web"
)

type snapshotOptions struct {
	Out         string
	URL         string
	At          string
	Width       int
	Height      int
	MinuteMarks bool
}

func addSnapshot(topLevel *cobra.Command) {
	so := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write the clock face to a PNG (headless Chromium) or SVG file.",
		Example: `
classclock snapshot --out clock.png
classclock snapshot --out clock.svg --at 10:40 --minutes
classclock snapshot --out wall.png --url http://classroom-pi:8080
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return runSnapshot(cmd.Context(), so)
		},
	}

	cmd.Flags().StringVarP(&so.Out, "out", "o", "clock.png", "Output file; .svg writes the face without a browser.")
	cmd.Flags().StringVar(&so.URL, "url", "", "Capture a running classclock server (or its /clock page) instead of an in-process one.")
	cmd.Flags().StringVar(&so.At, "at", "", "Draw the clock at HH:MM today.")
	cmd.Flags().IntVar(&so.Width, "width", capture.DefaultWidth, "Viewport width in pixels.")
	cmd.Flags().IntVar(&so.Height, "height", capture.DefaultHeight, "Viewport height in pixels.")
	cmd.Flags().BoolVar(&so.MinuteMarks, "minutes", false, "Draw minute marks.")

	topLevel.AddCommand(cmd)
}

func runSnapshot(ctx context.Context, so *snapshotOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if so.URL != "" {
		return capturePNG(ctx, so.URL, so)
	}

	cfg, err := ro.loadConfig(true)
	if err != nil {
		return err
	}
	a := newApp(cfg, false)
	defer a.close()

	now, err := atTime(so.At, a.loc)
	if err != nil {
		return err
	}
	if _, err := a.load(ctx); err != nil {
		appLog.Warn("drawing without a timetable", "reason", err.Error())
	}

	if strings.EqualFold(filepath.Ext(so.Out), ".svg") {
		body := render.SVG(a.clock.Snapshot(now), render.Options{MinuteMarks: so.MinuteMarks, Size: so.Width})
		return os.WriteFile(so.Out, body, 0o644)
	}

	// Serve the page in-process, frozen at now and without auth, for Chromium.
	local := *cfg
	local.BasicAuth = nil
	srv := web.NewServer(&local, web.Deps{Clock: a.clock}).WithNow(func() time.Time { return now })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	httpSrv := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = httpSrv.Serve(ln) }()
	defer httpSrv.Close()

	return capturePNG(ctx, "http://"+ln.Addr().String(), so)
}

func capturePNG(ctx context.Context, url string, so *snapshotOptions) error {
	res, err := capture.ClockPNG(ctx, capture.Options{
		URL:         url,
		MinuteMarks: so.MinuteMarks,
		OutputPath:  so.Out,
		Width:       so.Width,
		Height:      so.Height,
	})
	if err != nil {
		return err
	}
	appLog.Info("snapshot written", "out", so.Out, "url", res.URL, "state", res.State, "bytes", res.Bytes)
	return nil
}
