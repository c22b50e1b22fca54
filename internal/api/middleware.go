package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/anr091/project-kapita/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	headerActorID = "X-Actor-ID"
	actorKey      = "actor_id"
)

// identityMiddleware reads the caller identity set by the gateway. Requests
// without it are rejected; every mutation is attributed to this actor in the
// audit trail.
func identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(headerActorID)
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + headerActorID + " header",
			})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func actorID(c *gin.Context) string {
	return c.GetString(actorKey)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
