package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fetullahyldz/qr.menux.com-sub001/internal/events"
)

// ActivityService logs gateway events and counts them per type.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	recorder   ActivityRecorder
}

// ActivityRecorder receives one call per handled event.
type ActivityRecorder interface {
	RecordEvent(eventType string)
}

// NewActivityService creates the service. recorder may be nil.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, recorder ActivityRecorder) *ActivityService {
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger,
		recorder:   recorder,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventCartUpdated, a.handleCartUpdated)
	a.dispatcher.Subscribe(events.EventContentInvalidated, a.handleContentInvalidated)
	a.dispatcher.Subscribe(events.EventOrderPlaced, a.handleOrderPlaced)
}

func (a *ActivityService) handleCartUpdated(_ context.Context, event events.Event) error {
	a.record(event)
	payload, _ := event.Payload.(events.CartUpdatedPayload)
	a.logger.Debug("CartUpdated",
		zap.String("visitor_id", event.VisitorID),
		zap.Int("count", payload.Count),
		zap.String("total", payload.Total.String()))
	return nil
}

func (a *ActivityService) handleContentInvalidated(_ context.Context, event events.Event) error {
	a.record(event)
	payload, _ := event.Payload.(events.ContentInvalidatedPayload)
	a.logger.Info("ContentInvalidated",
		zap.String("resource", payload.Resource),
		zap.String("reason", payload.Reason))
	return nil
}

func (a *ActivityService) handleOrderPlaced(_ context.Context, event events.Event) error {
	a.record(event)
	payload, _ := event.Payload.(events.OrderPlacedPayload)
	a.logger.Info("OrderPlaced",
		zap.String("visitor_id", event.VisitorID),
		zap.Int64("order_id", payload.OrderID),
		zap.String("table_number", strings.TrimSpace(payload.TableNumber)),
		zap.Int("items", payload.ItemCount),
		zap.String("total", payload.Total.String()))
	return nil
}

func (a *ActivityService) record(event events.Event) {
	if a.recorder != nil {
		a.recorder.RecordEvent(string(event.Type))
	}
}
