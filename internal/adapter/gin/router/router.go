package router

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-service/api"
	"user-service/internal/adapter/gin/handler"
	"user-service/internal/adapter/gin/middleware"
	grpcadapter "user-service/internal/adapter/grpc"
	grpcmiddleware "user-service/internal/adapter/grpc/middleware"
	"user-service/internal/adapter/metrics"
	"user-service/pkg/logger"
)

// SwaggerDocPath serves the embedded OpenAPI document used by the Swagger UI.
const SwaggerDocPath = "/openapi.json"

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *grpcmiddleware.RateLimiter,
	health *grpcadapter.HealthServer,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(userHandler.Translator().NoRoute)
	router.NoMethod(userHandler.Translator().NoMethod)

	router.Use(middleware.Recovery(log))
	router.Use(logger.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(metrics.HTTPMetrics())

	router.GET("/health", healthHandler(health))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET(SwaggerDocPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", api.SwaggerJSON)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(SwaggerDocPath))))

	users := router.Group("/users")
	users.Use(middleware.RateLimiter(rateLimiter, userHandler.Translator(), log))
	{
		users.POST("", userHandler.CreateUser)
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.PATCH("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	return router
}

func healthHandler(health *grpcadapter.HealthServer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health == nil {
			c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": grpcadapter.ServiceName})
			return
		}

		failed := health.Probe(c.Request.Context())
		if len(failed) == 0 {
			c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": grpcadapter.ServiceName})
			return
		}

		names := make([]string, 0, len(failed))
		for name := range failed {
			names = append(names, name)
		}
		sort.Strings(names)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": grpcadapter.ServiceName,
			"failed":  names,
		})
	}
}
