package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/charsheet-go/internal/api/handler"
	"github.com/mcoot/charsheet-go/internal/api/middleware"
	sharedmw "github.com/mcoot/charsheet-go/internal/middleware"
	"github.com/mcoot/charsheet-go/internal/services/auth"
	"github.com/mcoot/charsheet-go/internal/services/character"
	"github.com/mcoot/charsheet-go/internal/services/token"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger              *slog.Logger
	AuthService         *auth.Service
	TokenService        *token.Service
	CharacterController *character.Controller
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	characterHandler := handler.NewCharacterHandler(cfg.CharacterController, cfg.Logger)

	// Create middleware
	requirePrincipal := middleware.RequirePrincipal()

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(sharedmw.RequestID())
	api.Use(sharedmw.Logging(cfg.Logger))
	api.Use(middleware.Authenticate(cfg.TokenService, cfg.AuthService, cfg.Logger))

	// Account routes (no principal required for registering or logging in)
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(requirePrincipal)
	authProtected.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)

	// Character routes (all require a principal)
	characters := api.PathPrefix("/characters").Subrouter()
	characters.Use(requirePrincipal)
	characters.HandleFunc("", characterHandler.List).Methods(http.MethodGet)
	characters.HandleFunc("", characterHandler.Create).Methods(http.MethodPost)
	characters.HandleFunc("/{id}", characterHandler.Get).Methods(http.MethodGet)
	characters.HandleFunc("/{id}", characterHandler.Update).Methods(http.MethodPatch)
	characters.HandleFunc("/{id}", characterHandler.Delete).Methods(http.MethodDelete)
	characters.HandleFunc("/{id}/control", characterHandler.Assign).Methods(http.MethodPut)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
