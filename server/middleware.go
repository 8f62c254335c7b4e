package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/logging"
)

// HeaderRequestID carries the correlation ID in both directions. It is not
// unique and never keys an audit record.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 128

// requestID reuses a sane inbound X-Request-ID or generates one, echoes it on
// the response and attaches it to the request context.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		c.Header(HeaderRequestID, id)
		c.Request = c.Request.WithContext(core.WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

func accessLog(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logging.ForRequest(l, core.RequestIDFrom(c.Request.Context())).Info("http.request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
