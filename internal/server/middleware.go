package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obsmetrics "github.com/ryu-qqq/setof-commerce-sub024/internal/observability/metrics"
	"github.com/ryu-qqq/setof-commerce-sub024/pkg/log/ctxlogger"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-Id"
	requestIDKey    = "request_id"
)

// RequestID propagates the caller's request id or mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(ctxlogger.ContextWithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// AccessLog writes one structured line per request and counts it.
func AccessLog(log *zap.Logger, debug bool, metrics *obsmetrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		fields := []zap.Field{
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Int64("bytes_in", max(c.Request.ContentLength, 0)),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}

		if lastErr := c.Errors.Last(); lastErr != nil {
			errorType, errorCode := classifyErrorForLog(lastErr.Err)
			fields = append(fields,
				zap.String("error_type", errorType),
				zap.String("error_code", errorCode),
			)
			if status >= http.StatusInternalServerError {
				fields = append(fields, zap.Error(lastErr.Err))
			}
			if debug {
				fields = append(fields, zap.Stack("stack"))
			}
		}

		metrics.RecordHTTPRequest(c.Request.Context(), route, status)

		switch {
		case isProbe(route):
			log.Debug("http_request", fields...)
		case status >= http.StatusInternalServerError:
			log.Error("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}

func isProbe(route string) bool {
	return route == "/metrics" || route == "/health"
}

// EvaluateRateLimit throttles evaluate calls per seller. Requests without a
// readable seller pass through and fail validation in the handler.
func (s *Server) EvaluateRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Enabled() {
			c.Next()
			return
		}

		sellerID, err := readEvaluateSeller(c)
		if err != nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		res, err := s.limiter.AllowEvaluate(ctx, sellerID)
		if err != nil {
			ctxlogger.WithContext(ctx, s.log).Warn("evaluate rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !res.Allowed {
			s.obsMetrics.RecordRateLimited(ctx, c.FullPath())
			if res.RetryAfter > 0 {
				c.Header("Retry-After", retryAfterSeconds(res.RetryAfter))
			}
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

// readEvaluateSeller peeks at the seller id and restores the body.
func readEvaluateSeller(c *gin.Context) (snowflake.ID, error) {
	if c.Request.Body == nil {
		return 0, errors.New("empty body")
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return 0, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var peek struct {
		Line struct {
			SellerID string `json:"seller_id"`
		} `json:"line"`
	}
	if err := json.Unmarshal(body, &peek); err != nil {
		return 0, err
	}
	return parseSnowflakeID(peek.Line.SellerID)
}

func retryAfterSeconds(d time.Duration) string {
	return strconv.FormatInt(int64(math.Ceil(d.Seconds())), 10)
}
