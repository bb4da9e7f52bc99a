package booking

import (
	"context"

	"chatbook/models"

	"go.uber.org/zap"
)

// approve confirms the customer's pending booking. Calendar failures are logged;
// the booking is settled locally either way.
func (t *turn) approve(ctx context.Context) error {
	if t.conv.State != StateAwaitingApproval {
		return t.sendText(ctx, localize(t.lang, msgNothingPending))
	}
	o := t.o
	p := t.conv.Pending
	owner := o.tenantOf(ctx, p, t.tenant)

	if o.Calendar != nil && !isPlaceholderEvent(p.RemoteEventID) {
		if err := o.Calendar.ConfirmEvent(ctx, owner, p.RemoteEventID); err != nil {
			o.logger().Warn("failed to confirm calendar event",
				zap.String("tenant", owner.Key), zap.String("eventID", p.RemoteEventID), zap.Error(err))
		}
	}
	if err := o.Store.Delete(ctx, t.customerID); err != nil {
		return NewBookingError(CodeStoreUnavailable, "failed to clear pending booking", err)
	}
	t.conv = conversationOf(nil)

	o.record(ctx, models.ActivityEvent{
		Type:        models.ActivityBookingApproved,
		TenantKey:   owner.Key,
		CustomerID:  t.customerID,
		ServiceName: p.ServiceName,
		SlotLabel:   p.DisplayLabel,
		EventID:     p.RemoteEventID,
	})
	o.logger().Info("booking approved",
		zap.String("tenant", owner.Key), zap.String("customerID", t.customerID), zap.String("eventID", p.RemoteEventID))
	return t.sendText(ctx, localize(t.lang, msgApproved, p.ServiceName, p.DisplayLabel))
}

// reject cancels the customer's pending booking and frees its slot.
func (t *turn) reject(ctx context.Context) error {
	if t.conv.State != StateAwaitingApproval {
		return t.sendText(ctx, localize(t.lang, msgNothingPending))
	}
	o := t.o
	p := t.conv.Pending
	owner := o.tenantOf(ctx, p, t.tenant)

	o.cancelEvent(ctx, owner, p.RemoteEventID)
	if err := o.Store.Delete(ctx, t.customerID); err != nil {
		return NewBookingError(CodeStoreUnavailable, "failed to clear pending booking", err)
	}
	t.conv = conversationOf(nil)

	o.record(ctx, models.ActivityEvent{
		Type:        models.ActivityBookingRejected,
		TenantKey:   owner.Key,
		CustomerID:  t.customerID,
		ServiceName: p.ServiceName,
		SlotLabel:   p.DisplayLabel,
		EventID:     p.RemoteEventID,
	})
	o.logger().Info("booking rejected",
		zap.String("tenant", owner.Key), zap.String("customerID", t.customerID), zap.String("eventID", p.RemoteEventID))
	return t.sendText(ctx, localize(t.lang, msgRejected, p.ServiceName, p.DisplayLabel))
}
