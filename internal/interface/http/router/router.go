package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/xiebiao/bookshelf/docs"
	"github.com/xiebiao/bookshelf/internal/infrastructure/config"
	"github.com/xiebiao/bookshelf/internal/interface/http/handler"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// Handlers 路由依赖的全部处理器与认证中间件
type Handlers struct {
	User   *handler.UserHandler
	Book   *handler.BookHandler
	Shelf  *handler.ShelfHandler
	Review *handler.ReviewHandler
	Auth   *middleware.AuthMiddleware
}

// New 创建Gin引擎并注册路由
// 中间件顺序：Recovery → CORS → RequestLogger → Tracing → Metrics
func New(cfg *config.Config, h Handlers) *gin.Engine {
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.CORS(cfg.CORS),
		middleware.RequestLogger(),
		middleware.Tracing(),
		middleware.Metrics(),
	)

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 生产环境不暴露接口文档
	if cfg.Server.Mode != "release" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	registerUserRoutes(v1, h)
	registerBookRoutes(v1, h)
	registerShelfRoutes(v1, h)
	registerReviewRoutes(v1, h)

	return r
}

func registerUserRoutes(v1 *gin.RouterGroup, h Handlers) {
	users := v1.Group("/users")
	{
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/refresh", h.User.Refresh)
		users.POST("/logout", h.Auth.RequireAuth(), h.User.Logout)

		users.GET("/:id", h.User.GetUser)
		users.GET("/:id/shelves", h.Shelf.Summary)
		users.GET("/:id/shelves/:shelf", h.Shelf.List)
		users.GET("/:id/reviews", h.Review.ListByUser)
	}

	v1.PUT("/profile", h.Auth.RequireAuth(), h.User.UpdateProfile)
}

func registerBookRoutes(v1 *gin.RouterGroup, h Handlers) {
	// 外部目录
	v1.GET("/search", h.Book.Search)
	v1.GET("/volumes/:volumeId", h.Auth.OptionalAuth(), h.Book.GetVolume)

	books := v1.Group("/books")
	{
		books.GET("", h.Book.ListBooks)
		books.POST("", h.Auth.RequireAuth(), h.Book.Ingest)
		books.GET("/:bookId", h.Book.GetBook)
		books.GET("/:bookId/reviews", h.Review.ListByBook)
		books.POST("/:bookId/reviews", h.Auth.RequireAuth(), h.Review.Create)
	}
}

func registerShelfRoutes(v1 *gin.RouterGroup, h Handlers) {
	shelves := v1.Group("/shelves")
	shelves.Use(h.Auth.RequireAuth())
	{
		shelves.POST("/:shelf", h.Shelf.AddRecord)
		shelves.POST("/:shelf/:bookId", h.Shelf.Add)
		shelves.DELETE("/:shelf/:bookId", h.Shelf.Remove)
	}
}

func registerReviewRoutes(v1 *gin.RouterGroup, h Handlers) {
	reviews := v1.Group("/reviews")
	reviews.Use(h.Auth.RequireAuth())
	{
		reviews.PUT("/:id", h.Review.Update)
		reviews.DELETE("/:id", h.Review.Delete)
	}
}
