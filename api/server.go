package api

import (
	"net/http"
	"time"

	"github.com/Aidin1998/ethtransfer/common/apiutil"
	"github.com/Aidin1998/ethtransfer/internal/wallet"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Server represents the API server
type Server struct {
	router *gin.Engine
	logger *zap.Logger
	wallet wallet.Service

	requestTimeout time.Duration
}

// Option configures a Server
type Option func(*Server)

// WithRequestTimeout bounds the ledger calls made for each request
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) { s.requestTimeout = d }
}

// NewServer creates a new API server over the wallet service
func NewServer(logger *zap.Logger, walletService wallet.Service, opts ...Option) *Server {
	server := &Server{
		logger: logger,
		wallet: walletService,
	}
	for _, opt := range opts {
		opt(server)
	}

	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	router.Use(otelgin.Middleware("ethtransfer-api"))
	router.Use(apiutil.MetricsMiddleware())
	if server.requestTimeout > 0 {
		router.Use(apiutil.TimeoutMiddleware(server.requestTimeout))
	}

	server.router = router
	server.registerRoutes()
	return server
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting API server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router returns the internal Gin engine for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) registerRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/metrics", gin.WrapH(promhttp.Handler()))
		v1.GET("/health", s.healthCheck)

		accounts := v1.Group("/accounts")
		{
			accounts.GET("", s.listAccounts)
			accounts.GET("/:account/balance", s.getBalance)
		}

		v1.POST("/transfers", s.createTransfer)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
