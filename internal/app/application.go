package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriReview/internal/config"
	"github.com/Rorical/RoriReview/internal/core"
	"github.com/Rorical/RoriReview/internal/dispatcher"
	"github.com/Rorical/RoriReview/internal/eventbus"
	"github.com/Rorical/RoriReview/internal/models"
	"github.com/Rorical/RoriReview/internal/review"
	"github.com/Rorical/RoriReview/internal/update"
)

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.ExchangeService
	model      *AppModel
	logger     *slog.Logger
	logFile    io.Closer
}

func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// stdout belongs to the UI, so logs go to a file
	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve log path: %w", err)
	}
	logFile, err := tea.LogToFile(logPath, "rorireview")
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client := review.NewClient(cfg.Client.Endpoint, logger)
	application := newApplication(cfg, client, logger)
	application.logFile = logFile

	logger.Info("Review form starting",
		"endpoint", client.Endpoint(),
		"discard_stale", cfg.Client.DiscardStale)

	return application, nil
}

func newApplication(cfg *config.Config, reviewer review.Reviewer, logger *slog.Logger) *Application {
	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		logger.Warn("Event bus error",
			"operation", e.Operation,
			"error", e.Err,
			"breaker", eb.GetCircuitBreakerState().String())
	})

	disp := dispatcher.NewEventDispatcher(eb)
	service := core.NewExchangeService(reviewer, eb, logger)

	model := &AppModel{
		form:       models.NewFormModel(),
		dispatcher: disp,
		isReady:    service.IsReady,
		opts: update.Options{
			EventBus:     eb,
			Keys:         update.DefaultKeyMap(),
			DiscardStale: cfg.Client.DiscardStale,
			Logger:       logger,
		},
		help: help.New(),
	}

	return &Application{
		config:     cfg,
		eventBus:   eb,
		dispatcher: disp,
		service:    service,
		model:      model,
		logger:     logger,
	}
}

func (app *Application) Start() error {
	app.service.Start()

	p := tea.NewProgram(app.model, tea.WithAltScreen())
	_, err := p.Run()

	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.dispatcher.Stop()
	app.eventBus.Close()
	if app.logFile != nil {
		app.logFile.Close()
	}
}
