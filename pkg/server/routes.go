package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	s.router.GET("/health", healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	{
		variants := v1.Group("/variants")
		{
			variants.GET("", s.listVariants)
			variants.GET("/:name", s.getVariant)
		}
		v1.GET("/sessions/ws", s.handleSession)
	}
}
