package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/grocerylist/backend/internal/api"
	"github.com/pageza/grocerylist/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(log logrus.FieldLogger, deps api.Dependencies) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		log.WithError(err).Warn("Invalid trusted proxies, trusting none")
		_ = router.SetTrustedProxies(nil)
	}

	// Recovery sits outermost so a panic in any later middleware is caught.
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(deps.AllowedOrigins))

	api.RegisterRoutes(router, deps)

	return router
}
