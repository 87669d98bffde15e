package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"classclock/internal/clock"
	"classclock/internal/config"
	"classclock/internal/loader"
	appLog "classclock/internal/log"
	"classclock/internal/metrics"
	"classclock/internal/render"
	"classclock/internal/source"
	"classclock/internal/speech"
	"classclock/internal/ticker"
	"classclock/internal/timetable"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators a Server drives. Only Clock is required.
type Deps struct {
	Clock   *clock.PeriodClock
	Loader  *loader.Loader
	Ticker  *ticker.Ticker
	Sink    speech.Sink
	Metrics *metrics.Metrics
}

// Server exposes the clock page, its SVG face and a small JSON API.
type Server struct {
	cfg     *config.Config
	clock   *clock.PeriodClock
	loader  *loader.Loader
	ticker  *ticker.Ticker
	sink    speech.Sink
	metrics *metrics.Metrics
	loc     *time.Location
	now     func() time.Time
	router  chi.Router

	// The SVG face changes once a second; cache the last rendering so that
	// many displays polling the same second share it.
	svgMu    sync.RWMutex
	svgCache *svgCache
}

type svgCache struct {
	second  int64
	version uint64
	options render.Options
	body    []byte
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, deps Deps) *Server {
	loc, err := cfg.Location()
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", cfg.Timezone)
	}
	sink := deps.Sink
	if sink == nil {
		sink = speech.Discard
	}
	s := &Server{
		cfg:     cfg,
		clock:   deps.Clock,
		loader:  deps.Loader,
		ticker:  deps.Ticker,
		sink:    sink,
		metrics: deps.Metrics,
		loc:     loc,
		now:     time.Now,
	}
	s.router = s.routes()
	return s
}

// WithNow replaces the time source, mainly for tests.
func (s *Server) WithNow(now func() time.Time) *Server {
	s.now = now
	return s
}

// Handler returns the router, wrapped in basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// ListenAndServe serves on cfg.Listen until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLog.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(metrics.RequestMiddleware(s.metrics))

	r.Get("/health", s.handleHealth)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/clock", http.StatusFound)
	})
	r.Get("/clock", s.handleClockPage)
	r.Post("/clock/announce/{kind}", s.handleClockAnnounce)
	r.Post("/clock/timetable", s.handleClockTimetable)
	r.Get("/clock.svg", s.handleClockSVG)
	if s.metrics != nil {
		r.Get("/metrics", s.metrics.Handler().ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/now", s.handleNow)
		r.Get("/timetable", s.handleTimetable)
		r.Get("/stream", s.handleStream)
		r.Post("/announce/{kind}", s.handleAnnounce)
		r.Post("/reload", s.handleReload)
	})
	return r
}

func (s *Server) currentTime() time.Time {
	return s.now().In(s.loc)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleNow returns the snapshot for the current second.
func (s *Server) handleNow(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.clock.Snapshot(s.currentTime()))
}

// handleStream pushes every tick's snapshot as a Server-Sent Event.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.ticker == nil {
		writeError(w, http.StatusServiceUnavailable, "ticker not running")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch, cancel := s.ticker.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				appLog.Error("failed to encode snapshot", err)
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

type periodDTO struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type timetableResponse struct {
	Timetable string      `json:"timetable"`
	Periods   []periodDTO `json:"periods"`
	// Current is the index of the running period, -1 if none.
	Current int `json:"current"`
}

// handleTimetable lists the periods and the running one. Both come from the
// same store generation, so Current always indexes into Periods.
func (s *Server) handleTimetable(w http.ResponseWriter, _ *http.Request) {
	tbl := s.clock.Store().Table()
	_, idx := tbl.Find(timetable.FromTime(s.currentTime()))

	resp := timetableResponse{
		Periods: make([]periodDTO, 0, len(tbl.Periods)),
		Current: idx,
	}
	if s.loader != nil {
		resp.Timetable = s.loader.Active().String()
	}
	for i, p := range tbl.Periods {
		resp.Periods = append(resp.Periods, periodDTO{Index: i, Name: p.Name, Start: p.Start, End: p.End})
	}
	writeJSON(w, http.StatusOK, resp)
}

type announceResponse struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// handleAnnounce builds the sentence for {kind} and hands it to the speech
// sink.
//
// POST /api/announce/{kind}   kind: time, name, start, end, remaining
func (s *Server) handleAnnounce(w http.ResponseWriter, r *http.Request) {
	kind, err := clock.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	text := s.announce(kind)
	writeJSON(w, http.StatusOK, announceResponse{Kind: string(kind), Text: text})
}

// announce speaks kind as of now and returns the sentence.
func (s *Server) announce(kind clock.Kind) string {
	text := s.clock.AnnouncementText(kind, s.currentTime())
	s.sink.Speak(text)
	s.metrics.IncAnnouncements(string(kind))
	appLog.Debug("announcement requested", "kind", string(kind), "text", text)
	return text
}

type reloadResponse struct {
	Timetable string `json:"timetable"`
	Periods   int    `json:"periods"`
}

// handleReload loads a timetable. With ?timetable=<name> it switches to that
// configured entry; otherwise the active one is read again.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	res, status, err := s.reload(r.Context(), r.URL.Query().Get("timetable"))
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Timetable: res.Ref.String(), Periods: res.Periods})
}

// reload loads the configured timetable called name, or the active one when
// name is empty. On failure it also returns the HTTP status to report.
func (s *Server) reload(ctx context.Context, name string) (loader.Result, int, error) {
	if s.loader == nil {
		return loader.Result{}, http.StatusServiceUnavailable, errors.New("loader not configured")
	}

	ref := s.loader.Active()
	if name = strings.TrimSpace(name); name != "" {
		t, ok := s.cfg.Find(name)
		if !ok {
			return loader.Result{}, http.StatusNotFound, errors.New("unknown timetable: " + name)
		}
		ref = source.RefFrom(t)
	}
	if ref.Location == "" {
		return loader.Result{}, http.StatusBadRequest, errors.New("no timetable selected")
	}

	res, err := s.loader.Load(ctx, ref)
	switch {
	case errors.Is(err, loader.ErrSuperseded):
		return loader.Result{}, http.StatusConflict, err
	case err != nil:
		return loader.Result{}, http.StatusBadGateway, err
	}
	return res, http.StatusOK, nil
}

func renderOptions(r *http.Request) render.Options {
	q := r.URL.Query()
	opts := render.Options{
		MinuteMarks: q.Get("minutes") == "1" || q.Get("minutes") == "true",
		Size:        parseIntDefault(q.Get("size"), 400),
	}
	if opts.Size < 50 || opts.Size > 4000 {
		opts.Size = 400
	}
	return opts
}

// handleClockPage renders the wall clock. ?controls=0 hides the buttons, as
// the snapshot command does.
func (s *Server) handleClockPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	snap := s.clock.Snapshot(s.currentTime())
	opts := render.PageOptions{
		Options:  renderOptions(r),
		Lang:     s.clock.Lang(),
		Refresh:  parseIntDefault(q.Get("refresh"), 1),
		Controls: q.Get("controls") != "0",
	}
	if opts.Controls && s.loader != nil {
		for _, t := range s.cfg.Timetables {
			opts.Timetables = append(opts.Timetables, t.Name)
		}
		opts.Active = s.loader.Active().Name
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.Page(w, snap, opts); err != nil {
		appLog.Error("failed to render clock page", err)
	}
}

// backToClock answers a page form with a redirect to /clock, keeping the
// minute-mark setting.
func backToClock(w http.ResponseWriter, r *http.Request) {
	target := "/clock"
	if m := r.PostFormValue("minutes"); m == "1" || m == "true" {
		target += "?minutes=1"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleClockAnnounce is the form version of handleAnnounce.
func (s *Server) handleClockAnnounce(w http.ResponseWriter, r *http.Request) {
	kind, err := clock.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.announce(kind)
	backToClock(w, r)
}

// handleClockTimetable switches timetables from the page. A failed load has
// already been spoken and cleared the store, so the page shows it.
func (s *Server) handleClockTimetable(w http.ResponseWriter, r *http.Request) {
	_, status, err := s.reload(r.Context(), r.PostFormValue("timetable"))
	switch status {
	case http.StatusServiceUnavailable, http.StatusNotFound, http.StatusBadRequest:
		http.Error(w, err.Error(), status)
		return
	}
	if err != nil {
		appLog.Warn("timetable switch from the clock page did not apply", "reason", err.Error())
	}
	backToClock(w, r)
}

func (s *Server) handleClockSVG(w http.ResponseWriter, r *http.Request) {
	now := s.currentTime()
	opts := renderOptions(r)
	// Read before the snapshot: a swap in between leaves an older version on
	// a newer face, which only costs a re-render.
	version := s.clock.Store().Version()

	s.svgMu.RLock()
	c := s.svgCache
	s.svgMu.RUnlock()

	var body []byte
	if c != nil && c.second == now.Unix() && c.version == version && c.options == opts {
		body = c.body
	} else {
		body = render.SVG(s.clock.Snapshot(now), opts)
		s.svgMu.Lock()
		s.svgCache = &svgCache{second: now.Unix(), version: version, options: opts, body: body}
		s.svgMu.Unlock()
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
