package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"language-coach-server/internal/config"
	"language-coach-server/internal/handler"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Wiring
	container, err := config.NewContainer()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Handlers
	authHandler := handler.NewAuthHandler(container.ProfileRepository, container.Logger)
	chatHandler := handler.NewChatHandler(
		container.AuthService,
		container.EntitlementService,
		container.ChatService,
		container.DemoLimiter,
		container.Logger,
	)
	speechHandler := handler.NewSpeechHandler(
		container.AuthService,
		container.EntitlementService,
		container.SpeechService,
		container.DemoLimiter,
		container.Logger,
	)
	creditHandler := handler.NewCreditHandler(container.EntitlementService, container.Logger)
	scenarioHandler := handler.NewScenarioHandler(container.ScenarioRepository, container.Logger)

	authMiddleware := handler.NewAuthMiddleware(container.AuthService, container.Logger)

	// Router
	router := handler.NewRouter(
		authHandler,
		chatHandler,
		speechHandler,
		creditHandler,
		scenarioHandler,
		authMiddleware.Middleware,
	)

	// start server
	server := &http.Server{
		Addr:    ":" + container.Config.GetServerPort(),
		Handler: router,
	}

	// Run server
	go func() {
		container.Logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Error("Server failed to start", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	container.Logger.Info("Shutting down server...")
	_ = server.Close()

	container.Logger.Info("Server exited")
}
