// Package api provides the prioq HTTP server: schedule a posted workload,
// browse run history and scrape metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"prioq/internal/logging"
	"prioq/internal/metrics"
	"prioq/internal/report"
	"prioq/internal/sched"
	"prioq/internal/store"
	"prioq/internal/telemetry"
	"prioq/internal/workload"
)

// maxBodyBytes caps a posted workload.
const maxBodyBytes = 8 << 20

// Server is the prioq HTTP API server.
type Server struct {
	log     *zap.Logger
	metrics *metrics.Collector
	history *store.DB // nil disables /v1/runs and persistence
}

// NewServer creates a new API server. history may be nil.
func NewServer(log *zap.Logger, collector *metrics.Collector, history *store.DB) *Server {
	return &Server{log: log, metrics: collector, history: history}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/schedule", s.handleSchedule)
		if s.history != nil {
			r.Get("/runs", s.handleListRuns)
			r.Get("/runs/{id}", s.handleGetRun)
			r.Get("/runs/{id}/timeline", s.handleTimeline)
		}
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error("http shutdown", zap.Error(err))
		return err
	}
	s.log.Debug("graceful shutdown complete")
	return nil
}

// scheduleRequest is a workload posted as JSON.
type scheduleRequest = workload.File

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tasks, err := req.BuildTasks()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, span := telemetry.StartSchedule(r.Context(), "api", len(tasks))
	rep, status, err := s.schedule(ctx, tasks)
	telemetry.EndSchedule(span, rep, err)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	s.respond(w, http.StatusOK, rep)
}

// schedule runs tasks, feeds metrics and stores the run when history is
// enabled. On failure it returns the HTTP status to answer with.
func (s *Server) schedule(ctx context.Context, tasks []*sched.Task) (report.Report, int, error) {
	observers := sched.Observers{logging.Observer(s.log)}
	if s.metrics != nil {
		observers = append(observers, s.metrics)
	}
	rep := report.New("", sched.New(sched.WithObserver(observers)).Schedule(tasks))
	if err := rep.Validate(); err != nil {
		return rep, http.StatusUnprocessableEntity, err
	}
	if s.metrics != nil {
		s.metrics.ObserveRun(rep.Results, rep.Statistics)
	}

	if s.history != nil {
		run, err := s.history.SaveRun(ctx, store.Run{
			Source:     "api",
			Statistics: rep.Statistics,
			Results:    rep.Results,
		})
		if err != nil {
			s.log.Error("save run", zap.Error(err))
			return rep, http.StatusInternalServerError, errors.New("could not save run")
		}
		rep.RunID = run.ID
	}
	return rep, http.StatusOK, nil
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.history.ListRuns(r.Context(), limit)
	if err != nil {
		s.log.Error("list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list runs")
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	s.respond(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.history.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error("get run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load run")
		return
	}
	s.respond(w, http.StatusOK, run)
}

// handleTimeline answers "what was running at ?at=" or, with ?from=&to=,
// "what ran in this window" for a stored run.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	at, atErr := parseTime(q.Get("at"))
	from, fromErr := parseTime(q.Get("from"))
	to, toErr := parseTime(q.Get("to"))
	point := q.Has("at")
	if (point && atErr != nil) || (!point && (fromErr != nil || toErr != nil)) {
		writeError(w, http.StatusBadRequest, "need ?at=<time> or ?from=<time>&to=<time>")
		return
	}

	run, err := s.history.GetRun(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Error("get run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load run")
		return
	}
	tl := sched.NewTimeline(run.Results)

	if point {
		resp := map[string]any{"time": at, "running": nil}
		if res, ok := tl.At(at); ok {
			resp["running"] = res
		}
		s.respond(w, http.StatusOK, resp)
		return
	}

	results := tl.Window(from, to)
	if results == nil {
		results = []sched.Result{}
	}
	s.respond(w, http.StatusOK, map[string]any{"from": from, "to": to, "results": results})
}

func parseTime(v string) (float64, error) {
	if v == "" {
		return 0, errors.New("missing")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite time: %s", v)
	}
	return f, nil
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// writeJSON writes a JSON response with the given status code. The body is
// encoded before the header is sent; if encoding fails the client gets a 500.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"could not encode response","type":"error"}}` + "\n"))
		return fmt.Errorf("encode response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(append(body, '\n'))
	return err
}

// respond writes a JSON response and logs it if that fails.
func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		s.log.Error("write response", zap.Int("status", status), zap.Error(err))
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}
