package booking

import (
	"context"
	"strings"
	"time"

	"chatbook/models"
	ai "chatbook/services/intelligence"

	"go.uber.org/zap"
)

// turn carries what one message needs while the customer's lock is held.
type turn struct {
	o          *DefaultOrchestrator
	tenant     *models.Tenant
	customerID string
	conv       Conversation
	lang       string
	// text is the customer's own words; empty for button replies.
	text string
}

// HandleMessage resolves the tenant, serializes on the customer and advances the
// conversation. Outbound delivery failures are returned after state has been saved.
func (o *DefaultOrchestrator) HandleMessage(ctx context.Context, msg models.InboundMessage) error {
	tenant, err := o.Tenants.ByRoutingKey(ctx, msg.RoutingKey)
	if err != nil {
		return NewBookingError(CodeTenantNotFound, "no tenant for routing key "+msg.RoutingKey, err)
	}

	unlock, err := o.locker().Lock(ctx, msg.CustomerID)
	if err != nil {
		return NewBookingError(CodeLockUnavailable, "could not lock customer "+msg.CustomerID, err)
	}
	defer unlock()

	pending, err := o.Store.Get(ctx, msg.CustomerID)
	if err != nil {
		return NewBookingError(CodeStoreUnavailable, "failed to read pending booking", err)
	}

	cmd := DecodeCommand(msg.Raw())
	t := &turn{
		o:          o,
		tenant:     tenant,
		customerID: msg.CustomerID,
		conv:       conversationOf(pending),
	}
	if cmd.Kind == CommandText {
		t.text = cmd.Text
	}
	t.lang = o.language(ctx, msg.CustomerID, t.text, pending)

	o.logger().Debug("inbound message",
		zap.String("tenant", tenant.Key),
		zap.String("customerID", msg.CustomerID),
		zap.String("kind", msg.Kind),
		zap.Stringer("command", cmd.Kind),
		zap.Stringer("state", t.conv.State))

	if msg.Kind == models.MessageKindOther {
		return t.sendText(ctx, localize(t.lang, msgAck))
	}

	switch cmd.Kind {
	case CommandApprove:
		return t.approve(ctx)
	case CommandReject:
		return t.reject(ctx)
	case CommandSelectSlot:
		return t.selectSlot(ctx, cmd.ServiceID, cmd.Start)
	case CommandInvalidSlot:
		return t.sendText(ctx, localize(t.lang, msgInvalidSlot))
	case CommandShowAvailability:
		return t.presentAvailability(ctx, t.resolveService(cmd.ServiceID), "", time.Time{})
	default:
		return t.handleText(ctx)
	}
}

// language prefers the script of the current text, then what the customer wrote
// last time, then the language the pending booking was made in.
func (o *DefaultOrchestrator) language(ctx context.Context, customerID, text string, pending *models.PendingBooking) string {
	if strings.TrimSpace(text) != "" {
		lang := ai.DetectLanguage(text)
		if o.Languages != nil {
			if err := o.Languages.SetLanguage(ctx, customerID, lang); err != nil {
				o.logger().Warn("failed to remember customer language", zap.String("customerID", customerID), zap.Error(err))
			}
		}
		return lang
	}
	if o.Languages != nil {
		lang, err := o.Languages.Language(ctx, customerID)
		if err != nil {
			o.logger().Warn("failed to read customer language", zap.String("customerID", customerID), zap.Error(err))
		} else if lang != "" {
			return ai.NormalizeLanguage(lang)
		}
	}
	if pending != nil && pending.Language != "" {
		return ai.NormalizeLanguage(pending.Language)
	}
	return ai.LangEnglish
}

func (t *turn) handleText(ctx context.Context) error {
	if t.o.Resolver == nil {
		return t.sendText(ctx, localize(t.lang, msgCouldNotUnderstand))
	}
	res := t.o.Resolver.Resolve(ctx, t.tenant, t.text, t.conv.Pending)
	if res.Language != "" {
		t.lang = res.Language
	}

	switch res.Action {
	case models.ActionShowAvailability:
		return t.showAvailability(ctx, res)
	case models.ActionPendingStatus:
		return t.pendingStatus(ctx, res)
	case models.ActionCancelBooking:
		return t.cancelRequest(ctx, res)
	case models.ActionEscalate:
		t.o.logger().Info("customer asked for a human",
			zap.String("tenant", t.tenant.Key), zap.String("customerID", t.customerID))
		return t.sendText(ctx, t.responseText(res))
	default:
		return t.sendText(ctx, t.responseText(res))
	}
}

func (t *turn) responseText(res models.Resolution) string {
	if text := strings.TrimSpace(res.ResponseText); text != "" {
		return text
	}
	return ai.DefaultResponse(res.Action, t.lang, t.tenant, t.conv.Pending)
}

func (t *turn) pendingStatus(ctx context.Context, res models.Resolution) error {
	if t.conv.State != StateAwaitingApproval {
		return t.sendOptions(ctx, localize(t.lang, msgNoPendingInvite), []models.Option{
			{Token: EncodeShowAvailabilityToken(""), Label: localize(t.lang, btnShowTimes)},
		})
	}
	p := t.conv.Pending
	text := strings.TrimSpace(res.ResponseText)
	if p.DisplayLabel == "" || !strings.Contains(text, p.DisplayLabel) {
		text = localize(t.lang, msgStillWaiting, p.ServiceName, p.DisplayLabel)
	}
	return t.sendText(ctx, text)
}

func (t *turn) cancelRequest(ctx context.Context, res models.Resolution) error {
	if t.conv.State != StateAwaitingApproval {
		return t.sendText(ctx, localize(t.lang, msgNothingToCancel))
	}
	if err := t.sendText(ctx, t.responseText(res)); err != nil {
		return err
	}
	return t.sendOptions(ctx, localize(t.lang, msgCancelPrompt), []models.Option{
		{Token: RejectToken, Label: localize(t.lang, btnReject)},
		{Token: EncodeShowAvailabilityToken(t.conv.Pending.ServiceID), Label: localize(t.lang, btnOtherTimes)},
	})
}

func (t *turn) sendText(ctx context.Context, body string) error {
	if err := t.o.Transport.SendText(ctx, t.tenant.Key, t.customerID, body); err != nil {
		return NewBookingError(CodeTransportFailed, "failed to send text", err)
	}
	return nil
}

func (t *turn) sendOptions(ctx context.Context, prompt string, options []models.Option) error {
	if err := t.o.Transport.SendOptions(ctx, t.tenant.Key, t.customerID, prompt, options); err != nil {
		return NewBookingError(CodeTransportFailed, "failed to send options", err)
	}
	return nil
}

func (o *DefaultOrchestrator) record(ctx context.Context, event models.ActivityEvent) {
	if o.Activity == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = o.now()
	}
	if err := o.Activity.Record(ctx, event); err != nil {
		o.logger().Warn("failed to record activity", zap.String("type", event.Type), zap.Error(err))
	}
}

func (o *DefaultOrchestrator) locker() Locker {
	o.lockerOnce.Do(func() {
		if o.Locker == nil {
			o.Locker = NewKeyedMutex()
		}
	})
	return o.Locker
}

func (o *DefaultOrchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *DefaultOrchestrator) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}
