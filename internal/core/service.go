package core

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Rorical/RoriReview/internal/eventbus"
	"github.com/Rorical/RoriReview/internal/models"
	"github.com/Rorical/RoriReview/internal/review"
)

// ExchangeService runs review exchanges requested by the UI. Every
// submission gets its own goroutine; nothing orders or cancels them.
type ExchangeService struct {
	reviewer review.Reviewer
	state    *ExchangeState
	eventBus *eventbus.EventBus
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewExchangeService(reviewer review.Reviewer, eb *eventbus.EventBus, logger *slog.Logger) *ExchangeService {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ExchangeService{
		reviewer: reviewer,
		state:    NewExchangeState(),
		eventBus: eb,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs the core logic in a goroutine
func (es *ExchangeService) Start() {
	es.pushStateToUI()
	es.wg.Add(1)
	go es.eventLoop()
}

// Stop cancels in-flight exchanges and waits for their goroutines.
func (es *ExchangeService) Stop() {
	es.cancel()
	es.wg.Wait()
}

// IsReady reports whether the service can accept submissions
func (es *ExchangeService) IsReady() bool {
	return es.reviewer != nil && es.ctx.Err() == nil
}

func (es *ExchangeService) State() *ExchangeState {
	return es.state
}

func (es *ExchangeService) eventLoop() {
	defer es.wg.Done()
	for {
		select {
		case <-es.ctx.Done():
			return
		case event, ok := <-es.eventBus.UIToCore():
			if !ok {
				return
			}
			es.handleUIEvent(event)
		}
	}
}

func (es *ExchangeService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SubmitReviewEvent:
		es.state.Begin()
		es.pushStateToUI()
		es.wg.Add(1)
		go es.runExchange(e.Submission)
	}
}

func (es *ExchangeService) runExchange(sub models.Submission) {
	defer es.wg.Done()

	settlement := Exchange(es.ctx, es.reviewer, sub, es.logger)

	es.state.Finish(settlement.Failed())
	if err := es.eventBus.DeliverToUI(es.ctx, eventbus.ReviewSettledEvent{Settlement: settlement}); err != nil {
		es.logger.Warn("Settlement not delivered", "seq", settlement.Seq, "error", err)
	}
	es.pushStateToUI()
}

// Exchange performs one submission and converts any failure into the fixed
// error feedback. The cause is logged and kept on the settlement.
func Exchange(ctx context.Context, reviewer review.Reviewer, sub models.Submission, logger *slog.Logger) models.Settlement {
	feedback, err := reviewer.Review(ctx, sub.Code)
	if err != nil {
		logger.Error("Review error", "seq", sub.Seq, "error", err)
		return models.Settlement{
			Seq:      sub.Seq,
			Feedback: review.ErrorFeedback,
			Err:      err,
		}
	}

	logger.Debug("Review settled", "seq", sub.Seq, "feedback_bytes", len(feedback))
	return models.Settlement{Seq: sub.Seq, Feedback: feedback}
}

func (es *ExchangeService) pushStateToUI() {
	inFlight, completed, failed := es.state.Snapshot()
	es.send(eventbus.StateUpdateEvent{
		InFlight:  inFlight,
		Completed: completed,
		Failed:    failed,
	})
}

func (es *ExchangeService) send(event eventbus.CoreEvent) {
	if err := es.eventBus.SendToUI(event); err != nil {
		es.logger.Warn("Error sending event to UI", "error", err)
	}
}
