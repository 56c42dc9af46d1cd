package handler

import (
	"corebank/internal/adapter/http/middleware"
	redisStore "corebank/internal/adapter/storage/redis"
	"corebank/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	ProcessingSvc  ports.ProcessingService
	QuerySvc       ports.QueryService
	AccountSvc     ports.AccountService
	AuthSvc        ports.AuthService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Terminal-facing routes (no auth; the PIN is the credential) ---
	processingHandler := NewProcessingHandler(deps.ProcessingSvc)
	v1.POST("/process", rl("process"), processingHandler.Process)

	// --- Public routes ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes (back office) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	cardHandler := NewCardHandler(deps.QuerySvc, deps.AccountSvc)

	cards := v1.Group("/cards", jwtAuth)
	{
		cards.POST("", rl("queries"), cardHandler.Provision)
		cards.GET("/:card_number", rl("queries"), cardHandler.GetCard)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("queries"), cardHandler.ListTransactions)
	}

	return r
}
