package booking

import (
	"context"
	"time"

	"chatbook/models"
	"chatbook/services/availability"
)

// showAvailability answers a booking intent. A preferred time that is itself the
// next open slot is selected directly; otherwise the search starts from it.
func (t *turn) showAvailability(ctx context.Context, res models.Resolution) error {
	svc := t.resolveService(res.ServiceHint)
	preface := t.responseText(res)

	if svc == nil || res.PreferredTimeHint == "" {
		return t.presentAvailability(ctx, svc, preface, time.Time{})
	}
	loc, err := availability.LoadLocation(t.tenant.Calendar.Timezone)
	if err != nil {
		return NewBookingError(CodeAvailabilityFailed, "tenant timezone", err)
	}
	at, ok := parsePreferredTime(res.PreferredTimeHint, loc, t.o.now())
	if !ok || !at.After(t.o.now()) {
		return t.presentAvailability(ctx, svc, preface, time.Time{})
	}

	slots, err := t.o.Availability.FindSlots(ctx, t.tenant, availability.Options{
		From:            at,
		Limit:           1,
		ExcludeCustomer: t.customerID,
	})
	if err == nil && len(slots) == 1 && slots[0].Start.Equal(at) {
		if err := t.sendText(ctx, preface); err != nil {
			return err
		}
		return t.selectSlot(ctx, svc.ID, at)
	}
	return t.presentAvailability(ctx, svc, preface, at)
}

// presentAvailability sends the optional preface, then either the service catalog
// (no service known) or the next open slots as selectable options.
func (t *turn) presentAvailability(ctx context.Context, svc *models.Service, preface string, from time.Time) error {
	if preface != "" {
		if err := t.sendText(ctx, preface); err != nil {
			return err
		}
	}
	if svc == nil {
		return t.sendText(ctx, localize(t.lang, msgChooseService)+"\n"+serviceCatalog(t.tenant))
	}

	slots, err := t.o.Availability.FindSlots(ctx, t.tenant, availability.Options{
		From:            from,
		Limit:           t.o.SlotLimit,
		ExcludeCustomer: t.customerID,
	})
	if err != nil {
		return NewBookingError(CodeAvailabilityFailed, "failed to compute slots", err)
	}
	if len(slots) == 0 {
		return t.sendText(ctx, localize(t.lang, msgFullyBooked))
	}

	if line := priceLine(svc); line != "" {
		if err := t.sendText(ctx, line); err != nil {
			return err
		}
	}
	options := make([]models.Option, 0, len(slots))
	for _, slot := range slots {
		slot.SelectionToken = EncodeSlotToken(svc.ID, slot.Start)
		options = append(options, models.Option{
			Token: slot.SelectionToken,
			Label: slot.ButtonLabel,
		})
	}
	return t.sendOptions(ctx, localize(t.lang, msgPickTime, slots[0].Timezone), options)
}
