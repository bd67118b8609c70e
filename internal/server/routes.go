package server

import (
	"context"
	"net/http"

	"github.com/coursechat/coursechat/internal/agent"
	"github.com/coursechat/coursechat/internal/handler"
	"github.com/coursechat/coursechat/internal/middleware"
	"github.com/coursechat/coursechat/internal/rag"
	"github.com/coursechat/coursechat/internal/security"
	"github.com/coursechat/coursechat/internal/service"
	"github.com/coursechat/coursechat/internal/tools"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// setupRoutes returns (router, sessionStore, error) so the store can be
// closed on shutdown.
func (s *Server) setupRoutes() (http.Handler, *service.SessionStore, error) {
	cfg := s.cfg
	ctx := context.Background()

	// ─── Backends ───────────────────────────────────────────────────────────────
	var store *service.VectorStore
	if cfg.ElasticsearchHost != "" {
		var err error
		store, err = service.NewVectorStore(service.VectorStoreConfig{
			Scheme:       cfg.ElasticsearchScheme,
			Host:         cfg.ElasticsearchHost,
			Port:         cfg.ElasticsearchPort,
			User:         cfg.ElasticsearchUser,
			Password:     cfg.ElasticsearchPassword,
			VerifyCerts:  cfg.ElasticsearchVerifyCerts,
			MaxRetries:   cfg.ElasticsearchMaxRetries,
			ChunksIndex:  cfg.ChunksIndex,
			CatalogIndex: cfg.CatalogIndex,
			MaxResults:   cfg.MaxSearchResults,
		})
		if err != nil {
			log.Warn().Err(err).Msg("vector store unavailable")
		}
	} else {
		log.Warn().Msg("ELASTICSEARCH_HOST not set - course search disabled")
	}

	var sessions *service.SessionStore
	if cfg.DatabaseURL != "" {
		var err error
		sessions, err = service.NewSessionStore(ctx, cfg.DatabaseURL, cfg.MaxHistory)
		if err != nil {
			log.Warn().Err(err).Msg("session store unavailable - queries will run without history")
		} else if err := sessions.EnsureSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("session schema setup failed")
			sessions.Close()
			sessions = nil
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set - session persistence disabled")
	}

	if cfg.AnthropicAPIKey == "" {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - /api/v1/query will fail")
	}

	log.Info().
		Bool("search_enabled", store != nil).
		Bool("sessions_enabled", sessions != nil).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Int("max_tool_rounds", cfg.MaxToolRounds).
		Msg("service configuration")

	// ─── Tools ──────────────────────────────────────────────────────────────────
	registry := tools.NewRegistry()
	if store != nil {
		if err := registry.Register(tools.NewContentSearchTool(store)); err != nil {
			return nil, nil, err
		}
		if err := registry.Register(tools.NewOutlineTool(store)); err != nil {
			return nil, nil, err
		}
	}

	// ─── Agent + facade ─────────────────────────────────────────────────────────
	client := agent.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicBaseURL)
	chatAgent := agent.NewChatAgent(client, cfg.MaxToolRounds)

	var history rag.HistoryStore
	if sessions != nil {
		history = sessions
	}
	ragSystem := rag.NewSystem(chatAgent, registry, history)

	// ─── Handlers ───────────────────────────────────────────────────────────────
	validator := security.NewQueryValidator()
	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)

	var searchCheck, sessionsCheck handler.HealthChecker
	if store != nil {
		searchCheck = store
	}
	if sessions != nil {
		sessionsCheck = sessions
	}
	healthH := handler.NewHealthHandler(searchCheck, sessionsCheck)
	queryH := handler.NewQueryHandler(ragSystem, validator, auditLogger)

	var coursesH *handler.CoursesHandler
	if store != nil {
		coursesH = handler.NewCoursesHandler(store)
	}
	var sessionsH *handler.SessionsHandler
	if sessions != nil {
		sessionsH = handler.NewSessionsHandler(sessions)
	}

	// ─── Router ─────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Post("/query", queryH.Query)
			if coursesH != nil {
				r.Get("/courses", coursesH.Stats)
			}
			if sessionsH != nil {
				r.Delete("/session/{session_id}", sessionsH.Clear)
			}
		})
	})

	return r, sessions, nil
}
