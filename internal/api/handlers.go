package api

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/pageza/grocerylist/backend/internal/middleware"
	"github.com/pageza/grocerylist/backend/internal/realtime"
	"github.com/pageza/grocerylist/backend/internal/service"
)

// Dependencies is everything the routes need. Broker, ChatLimiter and the
// export store behind Exports may be absent.
type Dependencies struct {
	Auth        service.IAuthService
	Lists       service.ListServiceInterface
	Groceries   service.GroceryServiceInterface
	Chat        service.ChatServiceInterface
	Exports     service.ExportServiceInterface
	Broker      realtime.Broker
	ChatLimiter *middleware.RateLimiter
	Health      *HealthHandler

	CookieName     string
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For. Nil trusts none.
	TrustedProxies []string
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	// Health check endpoint (no auth required)
	router.GET("/health", deps.Health.HealthCheck)
	router.GET("/api/health", deps.Health.HealthCheck)

	apiGroup := router.Group("/api")

	// The chat route predates accounts; identity only keys the limiter.
	NewChatHandler(deps.Chat).RegisterRoutes(apiGroup,
		middleware.OptionalAuth(deps.Auth, deps.CookieName),
		deps.ChatLimiter.Middleware(),
	)

	protected := apiGroup.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth, deps.CookieName))

	NewGroceryHandler(deps.Groceries).RegisterRoutes(protected)
	NewListHandler(deps.Lists, deps.Exports).RegisterRoutes(protected)
	NewEventsHandler(deps.Lists, deps.Broker, originPatterns(deps.AllowedOrigins)).RegisterRoutes(protected)
}

// originPatterns turns allowed origins into the host patterns the
// websocket origin check expects.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u := hostOf(o); u != "" {
			patterns = append(patterns, u)
		}
	}
	return patterns
}

func hostOf(origin string) string {
	if origin == "*" {
		return origin
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}
