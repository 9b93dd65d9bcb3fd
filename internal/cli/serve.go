package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/hexroute/pkg/hexgrid"
	pkgio "github.com/matzehuels/hexroute/pkg/io"
	"github.com/matzehuels/hexroute/pkg/network"
	"github.com/matzehuels/hexroute/pkg/observability"
	"github.com/matzehuels/hexroute/pkg/observability/prom"
	"github.com/matzehuels/hexroute/pkg/pipeline"
	"github.com/matzehuels/hexroute/pkg/render"
	"github.com/matzehuels/hexroute/pkg/table"
)

const (
	defaultServeAddr = "localhost:8080"
	shutdownTimeout  = 5 * time.Second
)

// serveCommand creates the serve command, which routes a board once and
// serves the resulting tables over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var run runFlags
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve routing tables and routes over HTTP",
		Long: `Build and route a board once, then serve the result:

  GET /chips                       chip list with entry counts
  GET /chips/{x}/{y}/table         encoded table (?format=loader|runtime)
  GET /chips/{x}/{y}/rows          decoded table rows as JSON
  GET /routes                      the workload as a route file
  GET /routes/{key}/dot            one route tree as Graphviz DOT
  GET /routing                     every router's forwarding entries
  GET /metrics                     Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			registry := prometheus.NewRegistry()
			prom.New(registry).Register()
			defer observability.Reset()

			cfg, opts, err := run.options(cmd)
			if err != nil {
				return err
			}
			result, err := c.execute(ctx, cfg, opts)
			if err != nil {
				return err
			}

			srv := &server{result: result}
			handler := srv.routes(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			printSuccess("Serving %s", cfg.Board.Describe())
			printKeyValue("url", StyleLink.Render("http://"+addr))
			printStats(result.Stats.Chips, result.Stats.Routes, result.Stats.Entries, result.CacheInfo.TablesHit)
			return listenAndServe(ctx, addr, handler, c.Logger)
		},
	}

	run.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "listen address")
	return cmd
}

// listenAndServe runs the HTTP server until ctx is cancelled, then shuts it
// down gracefully.
func listenAndServe(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// server answers table queries from one pipeline result.
type server struct {
	result *pipeline.Result
}

type chipInfo struct {
	X       int              `json:"x"`
	Y       int              `json:"y"`
	Board   hexgrid.Position `json:"board"`
	Cores   int              `json:"cores"`
	Entries int              `json:"entries"`
	Rows    int              `json:"rows"`
}

func (s *server) routes(metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "run": s.result.RunID})
	})
	r.Get("/chips", s.listChips)
	r.Route("/chips/{x}/{y}", func(r chi.Router) {
		r.Get("/table", s.chipTable)
		r.Get("/rows", s.chipRows)
	})
	r.Get("/routes", s.listRoutes)
	r.Get("/routes/{key}/dot", s.routeDOT)
	r.Get("/routing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = pkgio.WriteRouting(s.result.Network, w)
	})
	r.Handle("/metrics", metrics)
	return r
}

// observe reports every request to the server hooks, labelled by route
// pattern so that chip coordinates do not explode label cardinality.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			pattern = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.Server().OnRequest(r.Context(), r.Method, pattern, status, time.Since(start))
		loggerFromContext(r.Context()).Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *server) listChips(w http.ResponseWriter, r *http.Request) {
	n := s.result.Network
	var chips []chipInfo
	for chip := range n.Chips() {
		rows, _ := table.Rows(n, chip.Router)
		chips = append(chips, chipInfo{
			X:       chip.Position.X,
			Y:       chip.Position.Y,
			Board:   chip.Board,
			Cores:   len(chip.Cores),
			Entries: n.NumEntries(chip.Router),
			Rows:    len(rows),
		})
	}
	writeJSON(w, http.StatusOK, chips)
}

func (s *server) chipTable(w http.ResponseWriter, r *http.Request) {
	pos, ok := chipPosition(w, r)
	if !ok {
		return
	}
	format := table.FormatLoader
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := table.ParseFormat(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}

	data, ok := s.result.Tables[pos][format]
	if !ok {
		// Formats not requested at startup are encoded on demand.
		chip, found := s.result.Network.Chip(pos)
		if !found {
			writeError(w, http.StatusNotFound, "no chip at "+pos.String())
			return
		}
		var err error
		if data, err = table.Generate(s.result.Network, chip.Router, format); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename="+pipeline.TableFileName(pos, format))
	_, _ = w.Write(data)
}

func (s *server) chipRows(w http.ResponseWriter, r *http.Request) {
	pos, ok := chipPosition(w, r)
	if !ok {
		return
	}
	chip, found := s.result.Network.Chip(pos)
	if !found {
		writeError(w, http.StatusNotFound, "no chip at "+pos.String())
		return
	}
	rows, err := table.Rows(s.result.Network, chip.Router)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rows == nil {
		rows = []table.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *server) listRoutes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := pkgio.WriteRoutes(s.result.Specs, s.result.Network, w); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *server) routeDOT(w http.ResponseWriter, r *http.Request) {
	key, err := strconv.ParseUint(chi.URLParam(r, "key"), 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "route key must be an unsigned 32-bit integer")
		return
	}
	dot, err := render.RouteDOT(s.result.Network, network.RouteKey(key))
	if errors.Is(err, render.ErrNoRoute) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

func chipPosition(w http.ResponseWriter, r *http.Request) (hexgrid.Position, bool) {
	x, errX := strconv.Atoi(chi.URLParam(r, "x"))
	y, errY := strconv.Atoi(chi.URLParam(r, "y"))
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "chip coordinates must be integers")
		return hexgrid.Position{}, false
	}
	return hexgrid.Position{X: x, Y: y}, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
