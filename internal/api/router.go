package api

import (
	"context"
	"net/http"

	"github.com/Harshitk-cp/medvalidate/internal/api/handlers"
	mw "github.com/Harshitk-cp/medvalidate/internal/api/middleware"
	"github.com/Harshitk-cp/medvalidate/internal/config"
	"github.com/Harshitk-cp/medvalidate/internal/corpus"
	"github.com/Harshitk-cp/medvalidate/internal/domain"
	"github.com/Harshitk-cp/medvalidate/internal/llm"
	"github.com/Harshitk-cp/medvalidate/internal/metrics"
	"github.com/Harshitk-cp/medvalidate/internal/service"
	"github.com/Harshitk-cp/medvalidate/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and the services behind it.
type App struct {
	Router    *chi.Mux
	Validator *service.Validator
	Audit     *service.AuditService
}

// Options carries what NewRouter needs besides the services.
type Options struct {
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
	RecentReport   int
	// Ping reports database health; nil when persistence is disabled.
	Ping func(ctx context.Context) error
}

// NewApp loads the corpora named by the configuration and wires the
// validator, the optional secondary opinion and the optional audit store.
// db may be nil.
func NewApp(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) (*App, error) {
	datasets, err := corpus.LoadDatasets(corpus.Paths{
		Training:   config.TrainingDataPath(),
		Validation: config.ValidationDataPath(),
		Test:       config.TestDataPath(),
	}, logger)
	if err != nil {
		logger.Warn("corpus partially loaded, continuing with the records read", zap.Error(err))
	}

	counts := datasets.Counts()
	metrics.RecordCorpus(counts)

	v := service.NewValidator(corpus.Build(datasets.Training), logger)
	v.SetDatasetCounts(counts)
	v.SetObserver(metrics.NewRecorder())

	llmProvider := config.LLMProvider()
	opinionClient, err := llm.NewClient(llmProvider, config.LLMAPIKey())
	if err != nil {
		logger.Warn("secondary opinion disabled", zap.String("provider", llmProvider), zap.Error(err))
	} else if opinionClient != nil {
		v.SetOpinionClient(opinionClient, config.SecondOpinionTimeout())
		logger.Info("secondary opinion enabled", zap.String("provider", llmProvider))
	}

	var correctionStore domain.CorrectionStore
	opts := Options{
		APIKey:         config.APIKey(),
		RateLimitRPS:   config.RateLimitRPS(),
		RateLimitBurst: config.RateLimitBurst(),
		RecentReport:   config.ReportRecentCorrections(),
	}
	if db != nil {
		cs := store.NewCorrectionStore(db)
		if err := cs.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		correctionStore = cs
		opts.Ping = db.Ping
	}
	audit := service.NewAuditService(v, correctionStore, logger)

	return &App{
		Router:    NewRouter(ctx, v, audit, corpus.Summarize(datasets), opts, logger),
		Validator: v,
		Audit:     audit,
	}, nil
}

func NewRouter(ctx context.Context, v *service.Validator, audit *service.AuditService, overview corpus.Overview, opts Options, logger *zap.Logger) *chi.Mux {
	validationHandler := handlers.NewValidationHandler(v, audit, opts.RecentReport, logger)
	corpusHandler := handlers.NewCorpusHandler(overview)
	correctionHandler := handlers.NewCorrectionHandler(audit)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                              // Generate/extract request ID first
	r.Use(middleware.RealIP)                                         // Extract real IP
	r.Use(mw.Metrics)                                                // Collect metrics
	r.Use(mw.Logging(logger))                                        // Log all requests
	r.Use(middleware.Recoverer)                                      // Recover from panics
	r.Use(mw.RateLimit(ctx, opts.RateLimitRPS, opts.RateLimitBurst)) // Rate limiting

	// Health and metrics (no auth)
	r.Get("/health", healthHandler(v, opts.Ping))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(opts.APIKey))

		r.Post("/validate", validationHandler.Validate)
		r.Post("/resolve", validationHandler.Resolve)
		r.Get("/report", validationHandler.Report)
		r.Get("/corpus/overview", corpusHandler.Overview)

		r.Route("/corrections", func(r chi.Router) {
			r.Get("/", correctionHandler.List)
			r.Get("/rules", correctionHandler.RuleCounts)
			r.Get("/{id}", correctionHandler.GetByID)
		})
	})

	return r
}

func healthHandler(v *service.Validator, ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"diagnoses": len(v.Index().Diagnoses()),
		})
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.CorrectionStore = (*store.CorrectionStore)(nil)
	_ domain.OpinionClient   = (*llm.ChatClient)(nil)
	_ domain.OpinionClient   = (*llm.AnthropicClient)(nil)
	_ domain.OpinionClient   = (*llm.GeminiClient)(nil)
	_ domain.OpinionClient   = (*llm.MockClient)(nil)
	_ service.Observer       = metrics.Recorder{}
)
