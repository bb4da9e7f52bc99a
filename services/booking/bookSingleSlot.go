package booking

import (
	"context"
	"strings"
	"time"

	"chatbook/models"
	"chatbook/services/availability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	placeholderEventPrefix = "local-"
	defaultEventSummary    = "Service Appointment"
)

// selectSlot places a tentative hold for start and asks the owner to decide. A
// booking already pending for the customer is superseded.
func (t *turn) selectSlot(ctx context.Context, serviceHint string, start time.Time) error {
	o := t.o
	svc := t.resolveService(serviceHint)

	if !start.After(o.now()) {
		if err := t.sendText(ctx, localize(t.lang, msgSlotExpired)); err != nil {
			return err
		}
		return t.presentAvailability(ctx, svc, "", time.Time{})
	}

	loc, err := availability.LoadLocation(t.tenant.Calendar.Timezone)
	if err != nil {
		return NewBookingError(CodeAvailabilityFailed, "tenant timezone", err)
	}

	// The token only names an instant; it must still be an open slot now.
	open, err := t.slotOpen(ctx, start)
	if err != nil {
		return err
	}
	if !open {
		o.logger().Info("selected slot no longer open",
			zap.String("tenant", t.tenant.Key),
			zap.String("customerID", t.customerID),
			zap.Time("start", start))
		if err := t.sendText(ctx, localize(t.lang, msgSlotTaken)); err != nil {
			return err
		}
		return t.presentAvailability(ctx, svc, "", time.Time{})
	}

	duration := effectiveDuration(t.tenant, svc)
	end := start.Add(duration)
	label := availability.DisplayLabel(start, loc)

	booking := &models.PendingBooking{
		TenantKey:       t.tenant.Key,
		Start:           start.UTC(),
		End:             end.UTC(),
		DurationMinutes: int(duration / time.Minute),
		Timezone:        loc.String(),
		DisplayLabel:    label,
		Language:        t.lang,
		ServiceName:     defaultEventSummary,
	}
	if svc != nil {
		booking.ServiceID = svc.ID
		booking.ServiceName = svc.Name
		booking.Price = svc.Price
		booking.Currency = svc.Currency
	}

	booking.RemoteEventID = o.createEvent(ctx, t.tenant, booking, t.customerID)

	if err := o.Store.Put(ctx, t.customerID, booking); err != nil {
		o.cancelEvent(ctx, t.tenant, booking.RemoteEventID)
		return NewBookingError(CodeStoreUnavailable, "failed to save pending booking", err)
	}

	if prior := t.conv.Pending; prior != nil {
		o.supersede(ctx, t.tenant, t.customerID, prior, booking.RemoteEventID)
	}
	t.conv = conversationOf(booking)

	o.record(ctx, models.ActivityEvent{
		Type:        models.ActivityBookingCreated,
		TenantKey:   t.tenant.Key,
		CustomerID:  t.customerID,
		ServiceName: booking.ServiceName,
		SlotLabel:   label,
		EventID:     booking.RemoteEventID,
	})
	o.logger().Info("booking pending approval",
		zap.String("tenant", t.tenant.Key),
		zap.String("customerID", t.customerID),
		zap.String("service", booking.ServiceName),
		zap.Time("start", booking.Start),
		zap.String("eventID", booking.RemoteEventID))

	return t.sendOptions(ctx, localize(t.lang, msgAwaitingApproval, booking.ServiceName, label), []models.Option{
		{Token: ApproveToken, Label: localize(t.lang, btnApprove)},
		{Token: RejectToken, Label: localize(t.lang, btnReject)},
	})
}

// slotOpen reports whether start is still offered to this customer: inside
// working hours, clear of calendar busy time and of other customers' holds.
func (t *turn) slotOpen(ctx context.Context, start time.Time) (bool, error) {
	if t.o.Availability == nil {
		return true, nil
	}
	slots, err := t.o.Availability.FindSlots(ctx, t.tenant, availability.Options{
		From:            start,
		Limit:           1,
		ExcludeCustomer: t.customerID,
	})
	if err != nil {
		return false, NewBookingError(CodeAvailabilityFailed, "failed to check selected slot", err)
	}
	return len(slots) == 1 && slots[0].Start.Equal(start), nil
}

// createEvent never fails: a calendar that is disabled, down or unconfigured
// yields a local placeholder ID so the booking can still wait for approval.
func (o *DefaultOrchestrator) createEvent(ctx context.Context, tenant *models.Tenant, booking *models.PendingBooking, customerID string) string {
	var id string
	if o.Calendar != nil {
		var attendees []string
		if owner := ownerEmail(tenant, o.OwnerEmail); owner != "" {
			attendees = append(attendees, owner)
		}
		notes := "Customer: " + customerID
		if booking.ServiceID != "" {
			notes += "\nService: " + booking.ServiceID
		}
		var err error
		id, err = o.Calendar.CreateTentativeEvent(ctx, tenant, booking.ServiceName, booking.Start, booking.End, notes, attendees)
		if err != nil {
			o.logger().Warn("tentative event failed; holding slot locally",
				zap.String("tenant", tenant.Key), zap.Error(err))
			id = ""
		}
	}
	if id == "" {
		id = placeholderEventPrefix + uuid.NewString()
	}
	return id
}

func ownerEmail(tenant *models.Tenant, fallback string) string {
	if tenant.OwnerEmail != "" {
		return tenant.OwnerEmail
	}
	return fallback
}

func (o *DefaultOrchestrator) cancelEvent(ctx context.Context, tenant *models.Tenant, eventID string) {
	if o.Calendar == nil || isPlaceholderEvent(eventID) {
		return
	}
	if err := o.Calendar.CancelEvent(ctx, tenant, eventID); err != nil {
		o.logger().Warn("failed to cancel calendar event",
			zap.String("tenant", tenant.Key), zap.String("eventID", eventID), zap.Error(err))
	}
}

// supersede releases the hold of a booking that a newer selection replaced.
func (o *DefaultOrchestrator) supersede(ctx context.Context, current *models.Tenant, customerID string, prior *models.PendingBooking, newEventID string) {
	if prior.RemoteEventID != newEventID {
		o.cancelEvent(ctx, o.tenantOf(ctx, prior, current), prior.RemoteEventID)
	}
	o.record(ctx, models.ActivityEvent{
		Type:        models.ActivityBookingSuperseded,
		TenantKey:   prior.TenantKey,
		CustomerID:  customerID,
		ServiceName: prior.ServiceName,
		SlotLabel:   prior.DisplayLabel,
		EventID:     prior.RemoteEventID,
	})
}

// tenantOf returns the tenant the booking was made with, or fallback when that
// tenant can no longer be resolved.
func (o *DefaultOrchestrator) tenantOf(ctx context.Context, booking *models.PendingBooking, fallback *models.Tenant) *models.Tenant {
	if booking.TenantKey == "" || booking.TenantKey == fallback.Key {
		return fallback
	}
	tenant, err := o.Tenants.ByKey(ctx, booking.TenantKey)
	if err != nil {
		o.logger().Warn("booking tenant not found; using current tenant",
			zap.String("tenantKey", booking.TenantKey), zap.Error(err))
		return fallback
	}
	return tenant
}

func isPlaceholderEvent(id string) bool {
	return id == "" || strings.HasPrefix(id, placeholderEventPrefix)
}
