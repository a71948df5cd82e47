package api

import (
	"heroes/heroes_go_service/api/handlers"
	"heroes/heroes_go_service/api/middleware"
	"heroes/heroes_go_service/config"
	"heroes/heroes_go_service/pkg/logger"
	"heroes/heroes_go_service/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetUpAPI builds the HTTP router. Collectors are registered on reg and served from /metrics.
func SetUpAPI(cfg config.Config, log logger.LoggerI, strg storage.StorageI, objects storage.ObjectStoreI, reg *prometheus.Registry) *gin.Engine {
	switch cfg.Environment {
	case config.ReleaseMode:
		gin.SetMode(gin.ReleaseMode)
	case config.TestMode:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.NewMetrics(reg).Middleware(),
		middleware.AccessLog(log),
	)

	h := handlers.NewHandler(cfg, log, strg, objects)

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	v1 := r.Group("/api")

	login := middleware.RateLimit(cfg.LoginRPS, cfg.LoginBurst)
	v1.PUT("/auth/login", login, h.Login)
	v1.POST("/auth/login", login, h.Login)

	secured := v1.Group("", h.BasicAuth())
	admin := h.RequirePrivilege(config.PrivilegeAdmin)

	hero := secured.Group("/hero")
	{
		hero.GET("/search", h.SearchHeroes)
		hero.GET("/top", h.GetTopHeroes)
		hero.GET("/:id", h.GetHero)
		hero.POST("/filter", h.FilterHeroes)
		hero.POST("/filter/export", h.ExportHeroes)
		hero.PUT("", admin, h.SaveHero)
		hero.DELETE("/:id", admin, h.DeleteHero)
	}

	user := secured.Group("/user")
	{
		user.GET("/:id", h.GetUser)
		user.GET("/username/:username", h.GetUserByUsername)
		user.GET("/updateTheme/:id", h.UpdateTheme)
	}

	avatar := secured.Group("/avatar")
	{
		avatar.GET("/data/:userId", h.GetAvatarData)
		avatar.GET("/image/:userId", h.GetAvatarImage)
		avatar.PUT("/:userId", h.UploadAvatar)
	}

	return r
}
