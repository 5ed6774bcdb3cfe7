package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"composer-backend/application/commands/bus"
	querybus "composer-backend/application/queries/bus"
	"composer-backend/application/services"
	"composer-backend/infrastructure/config"
	"composer-backend/interfaces/http/rest/handlers"
	"composer-backend/interfaces/http/rest/middleware"
	"composer-backend/pkg/auth"
	"composer-backend/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus      *bus.CommandBus
	queryBus        *querybus.QueryBus
	deletionService *services.DeletionService
	metrics         *observability.Metrics
	jwtValidator    *auth.JWTValidator
	cfg             *config.Config
	logger          *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	deletionService *services.DeletionService,
	metrics *observability.Metrics,
	jwtValidator *auth.JWTValidator,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:      commandBus,
		queryBus:        queryBus,
		deletionService: deletionService,
		metrics:         metrics,
		jwtValidator:    jwtValidator,
		cfg:             cfg,
		logger:          logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.jwtValidator, rt.logger))

		r.Route("/flows", func(r chi.Router) {
			flowHandler := handlers.NewFlowHandler(rt.commandBus, rt.queryBus, rt.deletionService, rt.logger)
			r.Post("/", flowHandler.CreateFlow)
			r.Get("/", flowHandler.ListFlows)
			r.Get("/{flowID}", flowHandler.GetFlow)
			r.Get("/{flowID}/graph", flowHandler.GetFlowGraph)
			r.Delete("/{flowID}", flowHandler.DeleteFlow)

			// Node endpoints
			nodeHandler := handlers.NewNodeHandler(rt.commandBus, rt.deletionService, rt.logger)
			r.Post("/{flowID}/nodes", nodeHandler.CreateNode)
			r.Patch("/{flowID}/nodes/{nodeID}", nodeHandler.UpdateNode)
			r.Delete("/{flowID}/nodes/{nodeID}", nodeHandler.DeleteNode)
			r.Post("/{flowID}/nodes/bulk-delete", nodeHandler.BulkDeleteNodes)

			// Edge endpoints
			edgeHandler := handlers.NewEdgeHandler(rt.commandBus, rt.deletionService, rt.logger)
			r.Post("/{flowID}/edges", edgeHandler.ConnectNodes)
			r.Delete("/{flowID}/edges/{edgeID}", edgeHandler.DeleteEdge)
			r.Post("/{flowID}/edges/bulk-delete", edgeHandler.BulkDeleteEdges)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
