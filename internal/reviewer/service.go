package reviewer

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Rorical/RoriReview/internal/config"
	"github.com/Rorical/RoriReview/internal/metrics"
	"github.com/Rorical/RoriReview/internal/server"
)

// LoadEnv reads the given env files (".env" when none are named) and lets
// OPENAI_API_KEY and OPENAI_BASE_URL override the active profile. Missing
// files are skipped. Variables already set in the environment win over file
// values.
func LoadEnv(cfg *config.Config, files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	cfg.OverrideCredentials(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_BASE_URL"))
	return nil
}

// Service exposes a Reviewer over HTTP.
type Service struct {
	reviewer *Reviewer
	registry *metrics.Registry
	logger   *slog.Logger
}

func NewService(cfg *config.Config, logger *slog.Logger) *Service {
	registry := metrics.NewRegistry()
	return &Service{
		reviewer: New(cfg, metrics.NewReviewerMetrics(registry), logger),
		registry: registry,
		logger:   logger,
	}
}

func (s *Service) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware("rorireview-reviewer"))

	router.GET("/health", server.HealthCheck)
	router.GET("/metrics", gin.WrapH(s.registry.Handler()))
	router.POST("/review", s.HandleReview)
	return router
}

func (s *Service) Serve(ctx context.Context, addr string) error {
	s.logger.Info("Reviewer starting",
		"addr", addr,
		"mode", s.reviewer.Mode(),
		"model", s.reviewer.model,
		"api_key_set", s.reviewer.client != nil)
	return server.Serve(ctx, addr, s.Router(), s.logger)
}

// HandleReview handles POST /review. The body is the raw code; the answer
// is always 200 with a feedback field.
func (s *Service) HandleReview(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.logger.Warn("Failed to read request body", "error", err)
		c.JSON(http.StatusOK, gin.H{"feedback": "Error in AI review: " + err.Error()})
		return
	}

	feedback := s.reviewer.Review(c.Request.Context(), string(body))
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}
