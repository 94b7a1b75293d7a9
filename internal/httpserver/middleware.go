package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/api"
	"storefront/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// BuyerHeader carries the authenticated buyer id, set by the upstream auth layer.
const BuyerHeader = "X-Buyer-ID"

type ctxKey string

const buyerCtxKey ctxKey = "buyer"

// engineConfig is shared by both tiers.
type engineConfig struct {
	Logger      *zap.Logger
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTP
	CORSOrigins []string
	Ready       []ReadyCheck
}

func newEngine(cfg engineConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(cfg.Logger), gin.Recovery(), corsMiddleware(cfg.CORSOrigins))
	if cfg.HTTPMetrics != nil {
		router.Use(metricsMiddleware(cfg.HTTPMetrics))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(cfg.Ready))
	if cfg.Registry != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(cfg.Registry)))
	}
	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if buyer := c.GetHeader(BuyerHeader); buyer != "" {
			fields = append(fields, zap.String("buyer_id", buyer))
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			logger.Error("http request", fields...)
		case status >= 400:
			logger.Warn("http request", fields...)
		default:
			logger.Info("http request", fields...)
		}
	}
}

func metricsMiddleware(m *metrics.HTTP) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.Latency.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Disposition", "Accept", BuyerHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// buyerMiddleware requires the buyer header and stores it on the request context.
func buyerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		buyer := strings.TrimSpace(c.GetHeader(BuyerHeader))
		if buyer == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing " + BuyerHeader + " header", Code: "unauthorized"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), buyerCtxKey, buyer)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func buyerFromContext(c *gin.Context) string {
	v, _ := c.Request.Context().Value(buyerCtxKey).(string)
	return v
}
