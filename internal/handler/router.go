package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured.
//
// The chat and speech-to-text endpoints are mounted outside the auth
// middleware: they authenticate inline so a demo-flagged request can run
// tokenless through the demo limiter. Everything else user-facing sits
// behind the middleware.
func NewRouter(
	authHandler *AuthHandler,
	chatHandler *ChatHandler,
	speechHandler *SpeechHandler,
	creditHandler *CreditHandler,
	scenarioHandler *ScenarioHandler,
	authMiddleware func(http.Handler) http.Handler,
) http.Handler {
	router := mux.NewRouter()

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"language-coach-server"}`))
	}).Methods("GET")

	// Endpoints with inline auth (demo-capable)
	api.HandleFunc("/chat", chatHandler.Chat).Methods("POST")
	api.HandleFunc("/speech-to-text", speechHandler.SpeechToText).Methods("POST")

	// Protected routes (require authentication)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware)

	protected.HandleFunc("/text-to-speech", speechHandler.TextToSpeech).Methods("POST")
	protected.HandleFunc("/credits", creditHandler.GetBalance).Methods("GET")
	protected.HandleFunc("/scenarios", scenarioHandler.ListScenarios).Methods("GET")
	protected.HandleFunc("/scenarios/{id}", scenarioHandler.GetScenario).Methods("GET")
	protected.HandleFunc("/auth/profile", authHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/auth/validate", authHandler.ValidateToken).Methods("GET")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // Vite dev server
			"http://localhost:4173", // Vite preview
			"http://localhost:3000", // Alternative dev port
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
		},
		ExposedHeaders: []string{
			"Link",
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}
