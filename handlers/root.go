package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

// RegisterRoot registers the heartbeat, health and readiness endpoints and
// the JSON 404 fallback. Each entry in deps is pinged by /ready.
func RegisterRoot(r *gin.Engine, started time.Time, deps map[string]Pinger) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "Server is running."})
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when every dependency answers its ping
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		status := map[string]bool{}
		for name, ping := range deps {
			ok := ping(ctx) == nil
			status[name] = ok
			ready = ready && ok
		}
		body := gin.H{"deps": status, "uptime": time.Since(started).String()}
		if !ready {
			body["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["status"] = "ready"
		c.JSON(http.StatusOK, body)
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})
}
