package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xiebiao/bookshelf/pkg/tracing"
)

const (
	requestIDHeader = "X-Request-ID"
	slowRequest     = time.Second
)

// RequestLogger 请求日志
// 每个请求分配request_id（沿用上游传入的X-Request-ID），记录状态码和耗时，慢请求告警
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		latency := time.Since(start)
		entry := logrus.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		if uid := GetUserID(c); uid != 0 {
			entry = entry.WithField("user_id", uid)
		}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			entry = entry.WithField("trace_id", traceID)
		}

		switch {
		case c.Writer.Status() >= 500:
			entry.Error("请求失败")
		case latency > slowRequest:
			entry.Warn("慢请求")
		default:
			entry.Info("请求完成")
		}
	}
}
