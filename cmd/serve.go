package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/edgar-cli/internal/edgar"
	"github.com/sells-group/edgar-cli/internal/output"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve fetched data and accept background fetch jobs",
	Long: `Start an HTTP server over the JSON output directory.

GET  /api/tickers      lists tickers with fetched data
GET  /api/data/{ticker} returns a ticker's JSON document
POST /api/jobs         starts a background fetch for a ticker
GET  /api/jobs         lists jobs
GET  /api/jobs/{id}    returns one job`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		userAgent, _ := cmd.Flags().GetString("user-agent")
		outputDir, _ := cmd.Flags().GetString("output-dir")
		if outputDir == "" {
			outputDir = cfg.Output.Dir
		}

		f, err := buildFetcher(cfg, userAgent)
		if err != nil {
			return err
		}

		srv := &viewerServer{
			pipeline:  edgar.NewPipeline(f, cfg),
			jobs:      newJobStore(),
			outputDir: outputDir,
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.routes(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = httpSrv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.String("output_dir", outputDir))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().String("user-agent", "", "SEC-compliant User-Agent; overrides config")
	serveCmd.Flags().String("output-dir", "", "directory of fetched JSON output (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type viewerServer struct {
	pipeline  *edgar.Pipeline
	jobs      *jobStore
	outputDir string
}

func (s *viewerServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/tickers", s.handleListTickers)
	r.Get("/api/data/{ticker}", s.handleGetData)
	r.Post("/api/jobs", s.handleCreateJob)
	r.Get("/api/jobs", s.handleListJobs)
	r.Get("/api/jobs/{id}", s.handleGetJob)

	return r
}

func (s *viewerServer) handleListTickers(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, http.StatusOK, []string{})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cannot read output directory"})
		return
	}

	tickers := []string{}
	for _, e := range entries {
		if name := e.Name(); strings.HasSuffix(name, ".json") {
			tickers = append(tickers, strings.TrimSuffix(name, ".json"))
		}
	}
	sort.Strings(tickers)
	writeJSON(w, http.StatusOK, tickers)
}

func (s *viewerServer) handleGetData(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(chi.URLParam(r, "ticker"))

	// The ticker came off the wire; keep path traversal out.
	if ticker == "" || ticker != filepath.Base(ticker) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ticker"})
		return
	}

	path := filepath.Join(s.outputDir, ticker+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no data for ticker"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *viewerServer) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ticker string `json:"ticker"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing 'ticker' field"})
		return
	}

	j := s.jobs.create(ticker)

	go s.runJob(j.ID, ticker)

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": j.ID, "ticker": ticker})
}

// runJob fetches one ticker and writes its JSON document. Jobs run off the
// request context: a disconnecting client must not cancel a running fetch.
func (s *viewerServer) runJob(jobID, ticker string) {
	s.jobs.update(jobID, jobRunning, "")

	result, err := s.pipeline.RunTicker(context.Background(), ticker, edgar.Options{})
	if err != nil {
		zap.L().Error("job failed", zap.String("job", jobID), zap.String("ticker", ticker), zap.Error(err))
		s.jobs.update(jobID, jobError, err.Error())
		return
	}

	w := &output.JSONWriter{}
	if _, err := w.Write(result, s.outputDir); err != nil {
		zap.L().Error("job write failed", zap.String("job", jobID), zap.Error(err))
		s.jobs.update(jobID, jobError, err.Error())
		return
	}

	s.jobs.update(jobID, jobComplete, "")
}

func (s *viewerServer) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobs.list())
}

func (s *viewerServer) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	j, ok := s.jobs.get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "job not found"})
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
