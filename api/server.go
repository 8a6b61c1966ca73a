// Package api exposes the marketplace operations over HTTP.
package api

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wyvernlabs/nft-marketplace/api/handlers"
	"github.com/wyvernlabs/nft-marketplace/internal/market"
	"github.com/wyvernlabs/nft-marketplace/internal/market/query"
)

// Server wraps the gin router serving the marketplace API.
type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

// NewServer builds the router with the marketplace and query services
// injected.
func NewServer(logger *zap.Logger, svc *market.Service, qry *query.Service) *Server {
	router := gin.New()
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers.New(svc, qry, logger)
	h.Register(router.Group("/v1"))

	return &Server{router: router, logger: logger}
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("serving marketplace api", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
