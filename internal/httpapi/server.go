package httpapi

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/atlasjobs/atlas/internal/pkg/envutil"
)

type RouterConfig struct {
	JobsHandler   *JobsHandler
	HealthHandler *HealthHandler
}

type Server struct {
	Engine *gin.Engine
}

func NewServer(cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg)}
}

func (s *Server) Run(address string) error {
	return s.Engine.Run(address)
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware())
	r.Use(otelgin.Middleware("atlas-server"))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}
	if cfg.JobsHandler != nil {
		r.POST("/jobs", cfg.JobsHandler.CreateJob)
		r.GET("/jobs/:id", cfg.JobsHandler.GetJob)
	}

	return r
}

// corsMiddleware allows the origins configured via CORS_ALLOWED_ORIGINS
// (comma-separated), falling back to local-dev defaults.
func corsMiddleware() gin.HandlerFunc {
	origins := envutil.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	return cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	})
}
