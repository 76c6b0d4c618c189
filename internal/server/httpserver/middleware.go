package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/logging"
	"github.com/dmitrijs2005/pitstop/internal/server/auth"
)

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

const requestIDHeader = "X-Request-ID"

// observe tags the request with an id for the logs, then logs it and feeds
// the request metrics once it is done.
func (s *HTTPServer) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(requestIDHeader, rid)
		c.Request = c.Request.WithContext(logging.ContextWith(c.Request.Context(), "request_id", rid))

		c.Next()

		elapsed := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		if m := s.opts.Metrics; m != nil {
			m.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
			m.HTTPLatency.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())
		}

		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", elapsed.String(),
			"user_id", auth.IdentityFromContext(c.Request.Context()).UserID,
		)
	}
}

func (s *HTTPServer) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		s.logger.Error(c.Request.Context(), "panic while serving request", "path", c.Request.URL.Path, "panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": common.ErrorInternal.Error(),
			"data":    nil,
		})
	})
}

// errorHandler renders the last error attached by a handler as
// {message, data}. Unclassified errors are logged and hidden.
func (s *HTTPServer) errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var ce *common.Error
		if !errors.As(err, &ce) || ce.Kind == common.KindInternal {
			s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err.Error())
		}

		body := gin.H{"message": common.ErrorInternal.Error(), "data": nil}
		if ce != nil {
			body["message"] = ce.Error()
			if len(ce.Data) > 0 {
				body["data"] = ce.Data
			}
		}
		c.JSON(common.StatusOf(err), body)
	}
}
