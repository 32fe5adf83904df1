package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/medisched/scheduler-api/internal/handler"
	"github.com/medisched/scheduler-api/internal/middleware"
	"github.com/medisched/scheduler-api/internal/model"
)

// Handler is anything that can mount its routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	authH         Handler
	appointmentH  Handler
	slotH         Handler
	notificationH Handler
	healthH       *handler.HealthHandler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

type Config struct {
	RateLimit     rate.Limit
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH Handler,
	appointmentH Handler,
	slotH Handler,
	notificationH Handler,
	healthH *handler.HealthHandler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.UseJSONFieldNames()

	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		authH:         authH,
		appointmentH:  appointmentH,
		slotH:         slotH,
		notificationH: notificationH,
		healthH:       healthH,
		metrics:       initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/health", r.healthH.Health)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	// Public routes
	r.authH.RegisterRoutes(api)

	// Availability lookup is public so booking clients can browse before login.
	if h, ok := r.slotH.(PublicHandler); ok {
		public := api.Group("")
		public.Use(middleware.Cache(middleware.DefaultCacheConfig()))
		h.RegisterPublicRoutes(public)
	}

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.appointmentH.RegisterRoutes(protected)
	r.notificationH.RegisterRoutes(protected)

	slots := protected.Group("")
	slots.Use(r.auth.RequireRole(model.RoleDoctor, model.RoleStaff))
	r.slotH.RegisterRoutes(slots)
}

// PublicHandler additionally exposes unauthenticated routes.
type PublicHandler interface {
	RegisterPublicRoutes(*gin.RouterGroup)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
