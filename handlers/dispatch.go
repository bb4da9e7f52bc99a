package handlers

import (
	"context"
	"time"

	"chatbook/models"
	"chatbook/services/booking"
)

// InlineDispatcher runs the orchestrator inside the webhook request.
type InlineDispatcher struct {
	Orchestrator booking.Orchestrator
	Timeout      time.Duration
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, msg models.InboundMessage) error {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}
	return d.Orchestrator.HandleMessage(ctx, msg)
}
