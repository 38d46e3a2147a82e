package api

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/postservice/config"
	_ "github.com/d60-Lab/postservice/docs"
	"github.com/d60-Lab/postservice/internal/api/handler"
	"github.com/d60-Lab/postservice/internal/api/middleware"
)

// SetupRouter 注册中间件与路由
func SetupRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.RequestID())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Logger())
	r.Use(middleware.Sentry())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
	}

	r.GET("/health", h.Health)
	r.GET("/profiles", h.Profiles)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var writeGuard []gin.HandlerFunc
	if cfg.JWT.Enabled {
		writeGuard = append(writeGuard, middleware.JWTAuth(cfg.JWT.Secret))
	}

	// /posts 为兼容旧路径
	for _, g := range []*gin.RouterGroup{r.Group("/api/v1/posts"), r.Group("/posts")} {
		g.GET("", h.ListPosts)
		g.GET("/:postId", h.GetPost)

		w := g.Group("", writeGuard...)
		w.POST("", h.CreatePost)
		w.PUT("/:postId", h.UpdatePost)
		w.DELETE("/:postId", h.DeletePost)
	}
	return r
}
