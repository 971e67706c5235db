package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CorrelationIDHeader carries the request correlation ID on both the
// request and the response.
const CorrelationIDHeader = "X-Correlation-ID"

const correlationIDKey = "correlation_id"

// Init builds the process logger. LOG_LEVEL selects the minimum level
// (debug, info, warn, error); unset means info.
func Init() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(raw))); err != nil {
			return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// Middleware ensures every request carries a correlation ID, propagating
// one supplied by the caller or minting a fresh one, and echoes it on the
// response.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(correlationIDKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Next()
	}
}

// CorrelationID returns the request's correlation ID, or "" when the
// middleware did not run.
func CorrelationID(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}

// RequestLogger emits one structured access log line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String(correlationIDKey, CorrelationID(c)),
		)
	}
}
