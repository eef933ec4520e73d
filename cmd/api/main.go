package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"

	"github.com/Parham-dev/ai-agent-cs-sub004/internal/config"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/database"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/handlers"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/middleware"
	"github.com/Parham-dev/ai-agent-cs-sub004/internal/services"
	"github.com/Parham-dev/ai-agent-cs-sub004/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	switch cfg.App.Env {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	err = utils.InitLogger(&utils.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting agent customer-service API", utils.LogFields{
		"environment": cfg.App.Env,
		"port":        cfg.App.Port,
	})

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := database.Migrate(db.DB()); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	logger.Info("Database migrations completed", nil)

	var redisClient database.RedisClient
	if cfg.Redis.URL != "" {
		redisClient, err = database.InitializeRedis(cfg.Redis)
		if err != nil {
			logger.Warn("Redis not available, continuing without session revocation", utils.LogFields{
				"error": err.Error(),
			})
			redisClient = nil
		} else {
			logger.Info("Redis connected", nil)
		}
	}

	svcs := initializeServices(cfg, db, redisClient)
	hdlrs := initializeHandlers(cfg, db, redisClient, svcs)
	mdlws := initializeMiddleware(cfg, svcs)

	router := setupRouter(cfg, hdlrs, mdlws)

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.App.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		logger.Info("Server starting", utils.LogFields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", err)
	}

	logger.Info("Server stopped gracefully", nil)
}

// ServiceContainer holds all initialized services.
type ServiceContainer struct {
	JWTService          *services.JWTService
	EncryptionService   *services.EncryptionService
	OrganizationService *services.OrganizationService
	UserService         *services.UserService
	AuthService         *services.AuthService
	AgentService        *services.AgentService
	IntegrationService  *services.IntegrationService
	ConversationService *services.ConversationService
	WidgetService       *services.WidgetService
	GuardrailService    *services.GuardrailService
	ChatService         *services.ChatService
	ShopifyClient       *services.ShopifyClient
}

// HandlerContainer holds all initialized handlers.
type HandlerContainer struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Organization *handlers.OrganizationHandler
	User         *handlers.UserHandler
	Agent        *handlers.AgentHandler
	Integration  *handlers.IntegrationHandler
	Conversation *handlers.ConversationHandler
	Widget       *handlers.WidgetHandler
}

// MiddlewareContainer holds all initialized middleware.
type MiddlewareContainer struct {
	Auth      *middleware.AuthMiddleware
	Tenant    *middleware.TenantMiddleware
	Widget    *middleware.WidgetMiddleware
	RateLimit *middleware.RateLimitMiddleware
}

func initializeServices(cfg *config.Config, db database.Database, redisClient database.RedisClient) *ServiceContainer {
	jwtService := services.NewJWTService(
		cfg.Security.JWTSecret,
		cfg.Security.JWTExpiry,
		cfg.Security.RefreshExpiry,
		cfg.Widget.TokenTTL,
	)
	encryptionService := services.NewEncryptionService(cfg.Security.EncryptionKey)

	orgService := services.NewOrganizationService(db)
	userService := services.NewUserService(db)
	authService := services.NewAuthService(cfg, userService, orgService, jwtService)
	agentService := services.NewAgentService(db)
	integrationService := services.NewIntegrationService(db, encryptionService)
	conversationService := services.NewConversationService(db)
	widgetService := services.NewWidgetService(db, jwtService, redisClient)
	shopifyClient := services.NewShopifyClient(cfg.Shopify)

	openaiClient := openai.NewClient(cfg.OpenAI.APIKey)
	guardrailService := services.NewGuardrailService(openaiClient, cfg.Guardrail)
	chatService := services.NewChatService(
		openaiClient,
		cfg,
		agentService,
		integrationService,
		conversationService,
		guardrailService,
		shopifyClient,
	)

	return &ServiceContainer{
		JWTService:          jwtService,
		EncryptionService:   encryptionService,
		OrganizationService: orgService,
		UserService:         userService,
		AuthService:         authService,
		AgentService:        agentService,
		IntegrationService:  integrationService,
		ConversationService: conversationService,
		WidgetService:       widgetService,
		GuardrailService:    guardrailService,
		ChatService:         chatService,
		ShopifyClient:       shopifyClient,
	}
}

func initializeHandlers(cfg *config.Config, db database.Database, redisClient database.RedisClient, svcs *ServiceContainer) *HandlerContainer {
	return &HandlerContainer{
		Health:       handlers.NewHealthHandler(db, redisClient),
		Auth:         handlers.NewAuthHandler(svcs.AuthService, svcs.UserService),
		Organization: handlers.NewOrganizationHandler(svcs.OrganizationService),
		User:         handlers.NewUserHandler(svcs.UserService),
		Agent:        handlers.NewAgentHandler(svcs.AgentService, svcs.WidgetService),
		Integration:  handlers.NewIntegrationHandler(svcs.IntegrationService, svcs.ShopifyClient, svcs.JWTService),
		Conversation: handlers.NewConversationHandler(svcs.ConversationService),
		Widget:       handlers.NewWidgetHandler(svcs.WidgetService, svcs.ChatService),
	}
}

func initializeMiddleware(cfg *config.Config, svcs *ServiceContainer) *MiddlewareContainer {
	return &MiddlewareContainer{
		Auth:      middleware.NewAuthMiddleware(svcs.JWTService),
		Tenant:    middleware.NewTenantMiddleware(svcs.OrganizationService),
		Widget:    middleware.NewWidgetMiddleware(svcs.WidgetService),
		RateLimit: middleware.NewRateLimitMiddleware(cfg),
	}
}

func setupRouter(cfg *config.Config, hdlrs *HandlerContainer, mdlws *MiddlewareContainer) *gin.Engine {
	router := gin.New()

	logger := utils.Raw()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(func(c *gin.Context) {
		utils.SetSecurityHeaders(c)
		c.Next()
	})

	// Health endpoints, no auth.
	router.GET("/health", hdlrs.Health.Health)
	router.GET("/ready", hdlrs.Health.Ready)
	router.GET("/live", hdlrs.Health.Live)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        cfg.App.Name,
			"environment": cfg.App.Env,
			"status":      "running",
		})
	})

	// Widget routes serve arbitrary storefront origins; their own CORS
	// policy, their own rate limit.
	widget := router.Group("/api/widget")
	widget.Use(middleware.WidgetCORS())
	{
		widget.POST("/auth", mdlws.RateLimit.WidgetRateLimit(), hdlrs.Widget.Auth)
		widget.GET("/config", hdlrs.Widget.Config)

		session := widget.Group("/")
		session.Use(mdlws.Widget.SessionRequired())
		{
			session.POST("/chat", hdlrs.Widget.Chat)
			session.POST("/logout", hdlrs.Widget.Logout)
		}
	}

	api := router.Group("/api")
	api.Use(middleware.CORSMiddleware(cfg))
	api.Use(mdlws.RateLimit.RateLimit())

	auth := api.Group("/auth")
	{
		auth.POST("/login", hdlrs.Auth.Login)
		auth.POST("/sync", hdlrs.Auth.Sync)
		auth.POST("/refresh", hdlrs.Auth.Refresh)
		auth.POST("/logout", mdlws.Auth.AuthOptional(), hdlrs.Auth.Logout)
		auth.GET("/me", mdlws.Auth.AuthRequired(), hdlrs.Auth.Me)
	}

	// Workspace signup creates the organization before any user can
	// authenticate against it.
	api.POST("/organizations", hdlrs.Organization.Create)

	// Shopify redirects merchants here after install approval.
	api.GET("/integrations/shopify/callback", hdlrs.Integration.ShopifyCallback)

	registerDashboardRoutes(api.Group("/v1"), hdlrs, mdlws)
	registerDashboardRoutes(api.Group("/v2"), hdlrs, mdlws)

	return router
}

// registerDashboardRoutes mounts the tenant-scoped dashboard API. v1
// and v2 share the surface; v2 exists for the envelope-only clients.
func registerDashboardRoutes(group *gin.RouterGroup, hdlrs *HandlerContainer, mdlws *MiddlewareContainer) {
	group.Use(mdlws.Auth.AuthRequired())
	group.Use(mdlws.Tenant.RequireTenant())
	group.Use(mdlws.Tenant.ValidateTenantAccess())

	group.GET("/organization", hdlrs.Organization.Get)
	group.PATCH("/organization", mdlws.Auth.AdminRequired(), hdlrs.Organization.Update)

	users := group.Group("/users")
	{
		users.GET("", hdlrs.User.List)
		users.POST("", mdlws.Auth.AdminRequired(), hdlrs.User.Create)
		users.GET("/:id", hdlrs.User.Get)
		users.PATCH("/:id", mdlws.Auth.AdminRequired(), hdlrs.User.Update)
		users.DELETE("/:id", mdlws.Auth.AdminRequired(), hdlrs.User.Deactivate)
	}

	agents := group.Group("/agents")
	{
		agents.GET("", hdlrs.Agent.List)
		agents.POST("", hdlrs.Agent.Create)
		agents.GET("/:id", hdlrs.Agent.Get)
		agents.PATCH("/:id", hdlrs.Agent.Update)
		agents.DELETE("/:id", hdlrs.Agent.Delete)

		agents.GET("/:id/integrations", hdlrs.Agent.ListIntegrations)
		agents.POST("/:id/integrations", hdlrs.Agent.AttachIntegration)
		agents.PATCH("/:id/integrations/:integration_id", hdlrs.Agent.UpdateIntegration)
		agents.DELETE("/:id/integrations/:integration_id", hdlrs.Agent.DetachIntegration)

		agents.GET("/:id/widget", hdlrs.Agent.GetWidgetConfig)
		agents.PUT("/:id/widget", hdlrs.Agent.UpsertWidgetConfig)
	}

	integrations := group.Group("/integrations")
	{
		integrations.GET("", hdlrs.Integration.List)
		integrations.POST("", hdlrs.Integration.Create)
		integrations.GET("/:id", hdlrs.Integration.Get)
		integrations.PATCH("/:id", hdlrs.Integration.Update)
		integrations.DELETE("/:id", hdlrs.Integration.Delete)
		integrations.POST("/:id/test", hdlrs.Integration.Test)
		integrations.GET("/shopify/install", hdlrs.Integration.ShopifyInstall)
	}

	conversations := group.Group("/conversations")
	{
		conversations.GET("", hdlrs.Conversation.List)
		conversations.GET("/:id", hdlrs.Conversation.Get)
		conversations.GET("/:id/messages", hdlrs.Conversation.Messages)
		conversations.DELETE("/:id", hdlrs.Conversation.Delete)
	}
}
