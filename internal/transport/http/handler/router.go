package handler

import (
	"net/http"

	"habit-garden/internal/metrics"
	"habit-garden/internal/transport/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// RouterConfig carries what the router needs besides the handlers
type RouterConfig struct {
	JWTSecret      []byte
	JWTIssuer      string
	AllowedOrigins []string
	MetricsPath    string // empty disables the metrics endpoint
	Gatherer       prometheus.Gatherer
	Swagger        bool
}

// Router sets up HTTP routes
type Router struct {
	habits   *HabitHandler
	activity *ActivityHandler
	friends  *FriendHandler
	limiter  *middleware.RateLimiter
	metrics  *metrics.Metrics
	logger   *zap.Logger
	cfg      RouterConfig
}

// NewRouter creates a new router
func NewRouter(habits *HabitHandler, activity *ActivityHandler, friends *FriendHandler, limiter *middleware.RateLimiter, m *metrics.Metrics, logger *zap.Logger, cfg RouterConfig) *Router {
	return &Router{
		habits:   habits,
		activity: activity,
		friends:  friends,
		limiter:  limiter,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
	}
}

// Setup configures all routes
func (r *Router) Setup() *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.Recovery(r.logger))
	engine.Use(middleware.RequestLogger(r.logger, r.metrics))
	if len(r.cfg.AllowedOrigins) > 0 {
		engine.Use(middleware.CORS(r.cfg.AllowedOrigins))
	}
	if r.limiter != nil {
		engine.Use(r.limiter.Middleware())
	}

	engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if r.cfg.MetricsPath != "" && r.cfg.Gatherer != nil {
		engine.GET(r.cfg.MetricsPath, gin.WrapH(promhttp.HandlerFor(r.cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	if r.cfg.Swagger {
		engine.GET("/swagger/*any", gin.WrapH(httpSwagger.WrapHandler))
	}

	api := engine.Group("/api/v1")
	api.Use(middleware.Auth(r.cfg.JWTSecret, r.cfg.JWTIssuer))

	habits := api.Group("/habits")
	{
		habits.POST("", r.habits.CreateHabit)
		habits.GET("", r.habits.ListHabits)
		habits.GET("/dashboard", r.habits.GetDashboard)
		habits.GET("/stream", r.habits.Stream)
		habits.GET("/:id", r.habits.GetHabit)
		habits.PATCH("/:id", r.habits.UpdateHabit)
		habits.DELETE("/:id", r.habits.DeleteHabit)
		habits.POST("/:id/toggle", r.habits.ToggleHabit)
		habits.GET("/:id/motivation", r.habits.GetMotivation)
		habits.GET("/:id/story", r.habits.GetStory)
	}

	activity := api.Group("/activity")
	{
		activity.GET("/today", r.activity.GetToday)
		activity.PATCH("/today", r.activity.UpdateToday)
		activity.POST("/today/water", r.activity.AdjustWater)
		activity.GET("/week", r.activity.GetWeekly)
	}

	api.POST("/profile", r.friends.EnsureProfile)
	api.GET("/profile/avatar", r.friends.GetAvatar)
	api.GET("/friends", r.friends.ListFriends)
	api.POST("/friends", r.friends.AddFriend)

	return engine
}
