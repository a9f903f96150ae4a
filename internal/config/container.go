package config

import (
	"language-coach-server/internal/domain"
	"language-coach-server/internal/infra/supabase"
	"language-coach-server/internal/provider/openai"
	"language-coach-server/internal/repository"
	"language-coach-server/internal/service"
	"language-coach-server/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient

	ProfileRepository      domain.ProfileRepository
	CreditRepository       domain.CreditRepository
	ScenarioRepository     domain.ScenarioRepository
	ConversationRepository domain.ConversationRepository

	AuthService        domain.AuthService
	EntitlementService domain.EntitlementService
	ChatService        domain.ChatService
	SpeechService      domain.SpeechService
	DemoLimiter        domain.DemoLimiter
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	// Initialize Supabase client
	supabaseClient := supabase.NewSupabaseClient(config, appLogger)
	if err := supabaseClient.Initialize(); err != nil {
		return nil, err
	}

	// Initialize repositories
	profileRepo := repository.NewSupabaseProfileRepository(supabaseClient, appLogger)
	creditRepo := repository.NewSupabaseCreditRepository(supabaseClient, appLogger)
	scenarioRepo := repository.NewSupabaseScenarioRepository(supabaseClient, appLogger)
	conversationRepo := repository.NewSupabaseConversationRepository(supabaseClient, appLogger)

	// Initialize the AI vendor provider
	aiProvider, err := openai.New(
		config.GetOpenAIKey(),
		config.GetChatModel(),
		config.GetSTTModel(),
		config.GetTTSModel(),
		openai.WithTimeout(config.GetVendorTimeout()),
	)
	if err != nil {
		return nil, err
	}

	// Initialize services
	authService := service.NewAuthService(supabaseClient, appLogger)
	entitlementService := service.NewEntitlementService(profileRepo, creditRepo, config.GetCreditDefaults(), appLogger)
	chatService := service.NewChatService(scenarioRepo, conversationRepo, aiProvider, appLogger)
	speechService := service.NewSpeechService(aiProvider, aiProvider, config.GetMaxAudioBytes(), appLogger)
	demoLimiter := service.NewSessionDemoLimiter(config.GetDemoRequestLimit())

	return &Container{
		Config:                 config,
		Logger:                 appLogger,
		SupabaseClient:         supabaseClient,
		ProfileRepository:      profileRepo,
		CreditRepository:       creditRepo,
		ScenarioRepository:     scenarioRepo,
		ConversationRepository: conversationRepo,
		AuthService:            authService,
		EntitlementService:     entitlementService,
		ChatService:            chatService,
		SpeechService:          speechService,
		DemoLimiter:            demoLimiter,
	}, nil
}
