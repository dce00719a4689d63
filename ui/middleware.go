package ui

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.observe())
	if s.config.Server.MaxUploadBytes > 0 {
		s.router.MaxMultipartMemory = s.config.Server.MaxUploadBytes
	}
}

// observe records request metrics and logs each request
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()

		s.metrics.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		s.metrics.duration.WithLabelValues(route, c.Request.Method).Observe(elapsed.Seconds())
		s.metrics.sessions.Set(float64(s.sessions.Len()))

		if status >= 500 {
			s.logger.Error("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, elapsed)
		} else {
			s.logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, elapsed)
		}
	}
}
