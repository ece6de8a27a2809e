package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"reservation-backend/controllers"
	"reservation-backend/metrics"
	"reservation-backend/middleware"
)

// RouterOptions carries the cross-cutting pieces of the router.
type RouterOptions struct {
	CORSOrigins []string
	RateLimit   middleware.RateLimitConfig
	Redis       *redis.Client
	Logger      *slog.Logger
}

// SetupRouter wires the public reservation endpoints.
func SetupRouter(rc *controllers.ReservationController, opts RouterOptions) *gin.Engine {
	lg := opts.Logger
	if lg == nil {
		lg = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(lg))

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	public := r.Group("/api/public")
	public.Use(middleware.RateLimit(opts.RateLimit, opts.Redis, lg))
	{
		public.POST("/reservations", rc.CreateReservation)
		public.GET("/reservations/:confirmationNumber", rc.GetReservation)
		public.POST("/availability", rc.CheckAvailability)
	}

	return r
}
