// Package gateway forwards review requests from the form to the AI reviewer.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Rorical/RoriReview/internal/config"
	"github.com/Rorical/RoriReview/internal/metrics"
	"github.com/Rorical/RoriReview/internal/server"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	upstream      string
	allowedOrigin string
	client        *http.Client
	registry      *metrics.Registry
	metrics       *metrics.GatewayMetrics
	logger        *slog.Logger
}

func NewServer(cfg config.GatewayConfig, logger *slog.Logger) *Server {
	registry := metrics.NewRegistry()
	upstream := cfg.Upstream
	if upstream == "" {
		upstream = config.DefaultUpstream
	}
	origin := cfg.AllowedOrigin
	if origin == "" {
		origin = config.DefaultAllowedOrigin
	}
	return &Server{
		upstream:      upstream,
		allowedOrigin: origin,
		client:        &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		registry:      registry,
		metrics:       metrics.NewGatewayMetrics(registry),
		logger:        logger,
	}
}

// Router builds the gin engine serving the gateway routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware("rorireview-gateway"), s.cors(), requestID())

	router.GET("/health", server.HealthCheck)
	router.GET("/metrics", gin.WrapH(s.registry.Handler()))

	api := router.Group("/api")
	{
		api.POST("/review", s.HandleReview)
		api.OPTIONS("/review", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}
	return router
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	s.logger.Info("Gateway starting", "addr", addr, "upstream", s.upstream, "allowed_origin", s.allowedOrigin)
	return server.Serve(ctx, addr, s.Router(), s.logger)
}

// HandleReview handles POST /api/review by relaying the raw body to the
// reviewer and returning its response unchanged.
func (s *Server) HandleReview(c *gin.Context) {
	id := c.GetString(requestIDHeader)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.logger.Warn("Failed to read request body", "request_id", id, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	start := time.Now()
	resp, err := s.forward(c.Request.Context(), id, body)
	s.metrics.UpstreamDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordBadGateway()
		s.logger.Error("Upstream request failed", "request_id", id, "upstream", s.upstream, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		s.metrics.RecordBadGateway()
		s.logger.Error("Failed to read upstream response", "request_id", id, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("failed to read upstream response: %v", err)})
		return
	}

	s.metrics.RecordStatus(resp.StatusCode)
	s.logger.Info("Review forwarded",
		"request_id", id,
		"status", resp.StatusCode,
		"bytes_in", len(body),
		"bytes_out", len(payload))

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	c.Data(resp.StatusCode, contentType, payload)
}

func (s *Server) forward(ctx context.Context, id string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.upstream, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set(requestIDHeader, id)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach reviewer: %w", err)
	}
	return resp, nil
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", s.allowedOrigin)
		h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
		h.Set("Access-Control-Expose-Headers", requestIDHeader)
		h.Set("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestID keeps an incoming X-Request-ID or mints a new one, and echoes
// it on the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set(requestIDHeader, id)
		c.Next()
	}
}
