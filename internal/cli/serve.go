package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/cellforge/cellforge/pkg/cache"
	"github.com/cellforge/cellforge/pkg/errors"
	"github.com/cellforge/cellforge/pkg/pipeline"
	"github.com/cellforge/cellforge/pkg/project"
	"github.com/cellforge/cellforge/pkg/store"
)

// maxManifestBytes bounds the request body of generate calls.
const maxManifestBytes = 1 << 20

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		mongoURI  string
		redisAddr string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation pipeline over HTTP",
		Long: `Serve exposes the pipeline as a small HTTP API: POST a manifest to
/v1/generate and fetch the stored artifacts afterwards. With --mongo-uri
artifacts are persisted to MongoDB; otherwise an in-memory store is used
and artifacts survive only as long as the process.`,
		Example: `  cellforge serve
  cellforge serve --addr :9000 --mongo-uri mongodb://localhost:27017
  cellforge serve --redis-addr localhost:6379`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			runner, err := c.newServeRunner(ctx, redisAddr, noCache)
			if err != nil {
				return fmt.Errorf("create runner: %w", err)
			}

			var st store.ArtifactStore
			if mongoURI != "" {
				st, err = store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI})
				if err != nil {
					return err
				}
			} else {
				st = store.NewMemoryStore()
			}
			defer st.Close(context.Background())
			runner.Store = st

			srv := &server{runner: runner, store: st, logger: c.Logger}
			return srv.listen(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection string for artifact persistence")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for a shared artifact cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// newServeRunner builds the pipeline runner for server use. A Redis address
// selects a shared cache; otherwise the local file cache is used.
func (c *CLI) newServeRunner(ctx context.Context, redisAddr string, noCache bool) (*pipeline.Runner, error) {
	if redisAddr == "" {
		return c.newRunner(noCache)
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	runner := pipeline.NewRunner(rc, nil, c.Logger)
	// Namespace keys in the shared instance; Redis is rarely ours alone.
	runner.Keyer = cache.NewScopedKeyer(runner.Keyer, appName+":")
	return runner, nil
}

// server is the HTTP front end over the pipeline runner.
type server struct {
	runner *pipeline.Runner
	store  store.ArtifactStore
	logger *log.Logger
}

func (s *server) listen(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/v1", func(r chi.Router) {
		r.Get("/blocks", s.handleBlocks)
		r.Post("/generate", s.handleGenerate)
		r.Get("/runs/{runID}", s.handleRun)
		r.Get("/artifacts/{id}", s.handleArtifact)
	})
	return r
}

// logRequests logs one line per request through the CLI logger.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func (s *server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	infos, err := libraryInfo()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, infos)
}

// generateResponse is the reply to a generate call. Artifact bytes stay in
// the store; the response carries IDs and sizes.
type generateResponse struct {
	RunID   string           `json:"run_id"`
	Project string           `json:"project"`
	Elapsed string           `json:"elapsed"`
	Targets []targetResponse `json:"targets"`
}

type targetResponse struct {
	Target    string         `json:"target"`
	CellKey   string         `json:"cell_key"`
	View      string         `json:"view"`
	Artifacts map[string]int `json:"artifact_sizes"`
	CacheHits []string       `json:"cache_hits,omitempty"`
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxManifestBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	m, err := project.Parse(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"
	res, err := s.runner.Execute(r.Context(), m, pipeline.Options{Refresh: refresh})
	if err != nil {
		s.writeError(w, statusForError(err), err)
		return
	}

	resp := generateResponse{
		RunID:   res.RunID,
		Project: res.Project,
		Elapsed: res.Elapsed.Round(time.Millisecond).String(),
	}
	for _, tr := range res.Targets {
		sizes := make(map[string]int, len(tr.Artifacts))
		for format, data := range tr.Artifacts {
			sizes[format] = len(data)
		}
		resp.Targets = append(resp.Targets, targetResponse{
			Target:    tr.Target,
			CellKey:   tr.CellKey,
			View:      tr.View,
			Artifacts: sizes,
			CacheHits: tr.CacheHits,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// artifactMeta is one run artifact without its payload.
type artifactMeta struct {
	ID        string    `json:"id"`
	Target    string    `json:"target"`
	View      string    `json:"view"`
	Format    string    `json:"format"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	arts, err := s.store.ListRun(r.Context(), runID)
	if err != nil {
		s.writeError(w, statusForError(err), err)
		return
	}
	if len(arts) == 0 {
		s.writeError(w, http.StatusNotFound,
			errors.New(errors.ErrCodeNotFound, "run %q not found", runID))
		return
	}

	metas := make([]artifactMeta, len(arts))
	for i, a := range arts {
		metas[i] = artifactMeta{
			ID:        a.ID,
			Target:    a.Target,
			View:      a.View,
			Format:    a.Format,
			Size:      len(a.Data),
			CreatedAt: a.CreatedAt,
		}
	}
	s.writeJSON(w, http.StatusOK, metas)
}

func (s *server) handleArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, statusForError(err), err)
		return
	}
	w.Header().Set("Content-Type", contentTypeFor(a.Format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.Data)
}

func contentTypeFor(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "svg":
		return "image/svg+xml"
	case "dot":
		return "text/vnd.graphviz"
	default:
		return "application/octet-stream"
	}
}

// statusForError maps pipeline error codes to HTTP statuses.
func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeBlockNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidManifest, errors.ErrCodeInvalidBlock,
		errors.ErrCodeInvalidPath, errors.ErrCodeUnsupportedSchema:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{
		Error: err.Error(),
		Code:  string(errors.GetCode(err)),
	})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}
