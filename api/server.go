package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lyase/quantlib/opt"
)

// Server serves HTTP requests for the smile calibration service.
type Server struct {
	log      zerolog.Logger
	criteria opt.EndCriteria
	metrics  *Metrics
	limiters *limiterRegistry
	router   *gin.Engine
}

// NewServer creates a new HTTP server and sets up routing. Every server
// carries its own prometheus registry so tests can spin up several servers
// without collector name collisions.
func NewServer(log zerolog.Logger, criteria opt.EndCriteria) *Server {
	registry := prometheus.NewRegistry()
	server := &Server{
		log:      log,
		criteria: criteria,
		metrics:  NewMetrics(registry),
		limiters: newLimiterRegistry(),
	}

	server.setupRouter(registry)
	return server
}

func (server *Server) setupRouter(registry *prometheus.Registry) {
	router := gin.New()
	router.Use(gin.Recovery(), server.requestLogger())

	v1 := router.Group("/v1").Use(server.rateLimit())
	v1.POST("/calibrate", server.calibrate)
	v1.POST("/vol", server.vol)

	router.GET("/healthz", server.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	server.router = router
}

// Start runs the HTTP server on a specific address. Zero timeouts leave the
// corresponding limit off.
func (server *Server) Start(address string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         address,
		Handler:      server.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return srv.ListenAndServe()
}

func (server *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}
