package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	activityRepo "chatbook/database/repository/activity"
	pendingRepo "chatbook/database/repository/pending"
	tenantRepo "chatbook/database/repository/tenant"
	"chatbook/models"
	"chatbook/services/availability"
	ai "chatbook/services/intelligence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customer = "972500000001"

var monday8am = time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC)

type sentMessage struct {
	TenantKey  string
	CustomerID string
	Body       string
	Options    []models.Option
}

type recordingTransport struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (r *recordingTransport) SendText(_ context.Context, tenantKey, customerID, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{TenantKey: tenantKey, CustomerID: customerID, Body: body})
	return r.err
}

func (r *recordingTransport) SendOptions(_ context.Context, tenantKey, customerID, prompt string, options []models.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{TenantKey: tenantKey, CustomerID: customerID, Body: prompt, Options: options})
	return r.err
}

func (r *recordingTransport) messages() []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMessage(nil), r.sent...)
}

func (r *recordingTransport) last(t *testing.T) sentMessage {
	t.Helper()
	msgs := r.messages()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1]
}

func (r *recordingTransport) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

type fakeCalendar struct {
	mu        sync.Mutex
	createErr error
	created   []string
	confirmed []string
	cancelled []string
	attendees []string
}

func (f *fakeCalendar) CreateTentativeEvent(_ context.Context, _ *models.Tenant, _ string, _, _ time.Time, _ string, attendees []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	id := fmt.Sprintf("evt-%d", len(f.created)+1)
	f.created = append(f.created, id)
	f.attendees = attendees
	return id, nil
}

func (f *fakeCalendar) ConfirmEvent(_ context.Context, _ *models.Tenant, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, eventID)
	return nil
}

func (f *fakeCalendar) CancelEvent(_ context.Context, _ *models.Tenant, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, eventID)
	return nil
}

func (f *fakeCalendar) FetchBusyIntervals(context.Context, *models.Tenant, time.Time, time.Time) ([]models.BusyInterval, error) {
	return nil, nil
}

type stubResolver struct {
	res models.Resolution
}

func (s stubResolver) Resolve(context.Context, *models.Tenant, string, *models.PendingBooking) models.Resolution {
	return s.res
}

func salon() models.Tenant {
	hours := make([]models.WorkingHours, 0, 7)
	for day := 0; day < 7; day++ {
		hours = append(hours, models.WorkingHours{Day: day, Start: "09:00", End: "17:00"})
	}
	return models.Tenant{
		Key:           "salon",
		DisplayName:   "Demo Salon",
		PhoneNumberID: "PN1",
		OwnerEmail:    "owner@example.com",
		Services: []models.Service{
			{ID: "haircut", Name: "Haircut", MinMinutes: 30, MaxMinutes: 60, Price: 80, Currency: "USD", Keywords: []string{"cut"}},
			{ID: "nails", Name: "Manicure", MinMinutes: 30, MaxMinutes: 30, Keywords: []string{"manicure"}},
		},
		Calendar: models.CalendarConfig{
			Timezone:            "UTC",
			SlotDurationMinutes: 45,
			WorkingHours:        hours,
		},
	}
}

type harness struct {
	o        *DefaultOrchestrator
	store    *pendingRepo.MemoryStore
	calendar *fakeCalendar
	tr       *recordingTransport
	activity *activityRepo.MemoryRecorder
}

func newHarness(t *testing.T, resolver IntentResolver) *harness {
	t.Helper()
	dir, err := tenantRepo.NewStaticDirectory([]models.Tenant{salon()})
	require.NoError(t, err)

	now := func() time.Time { return monday8am }
	store := pendingRepo.NewMemoryStore()
	h := &harness{
		store:    store,
		calendar: &fakeCalendar{},
		tr:       &recordingTransport{},
		activity: activityRepo.NewMemoryRecorder(),
	}
	if resolver == nil {
		resolver = &ai.Resolver{}
	}
	h.o = &DefaultOrchestrator{
		Tenants:  dir,
		Store:    store,
		Locker:   NewKeyedMutex(),
		Resolver: resolver,
		Availability: &availability.DefaultAvailabilityService{
			Holds: store,
			Now:   now,
		},
		Calendar:  h.calendar,
		Transport: h.tr,
		Activity:  h.activity,
		Languages: ai.NewMemoryContextStore(),
		Now:       now,
	}
	return h
}

func textMessage(body string) models.InboundMessage {
	return models.InboundMessage{RoutingKey: "PN1", CustomerID: customer, Kind: models.MessageKindText, Text: body}
}

func buttonMessage(id string) models.InboundMessage {
	return models.InboundMessage{RoutingKey: "PN1", CustomerID: customer, Kind: models.MessageKindButtonReply, ReplyID: id}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 12, hour, minute, 0, 0, time.UTC)
}

func (h *harness) handle(t *testing.T, msg models.InboundMessage) {
	t.Helper()
	require.NoError(t, h.o.HandleMessage(context.Background(), msg))
}

func (h *harness) pending(t *testing.T) *models.PendingBooking {
	t.Helper()
	p, err := h.store.Get(context.Background(), customer)
	require.NoError(t, err)
	return p
}

func activityTypes(t *testing.T, r *activityRepo.MemoryRecorder) []string {
	t.Helper()
	events, err := r.Recent(context.Background(), 0)
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		types = append(types, events[i].Type)
	}
	return types
}

func TestBookingIntentOffersSlots(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, textMessage("I want to book a haircut"))

	msgs := h.tr.messages()
	require.Len(t, msgs, 3)
	assert.NotEmpty(t, msgs[0].Body)
	assert.Equal(t, "Haircut · USD 80", msgs[1].Body)

	offer := msgs[2]
	assert.Equal(t, "Pick a time (UTC)", offer.Body)
	require.Len(t, offer.Options, 3)
	assert.Equal(t, EncodeSlotToken("haircut", at(9, 0)), offer.Options[0].Token)
	assert.Equal(t, EncodeSlotToken("haircut", at(9, 45)), offer.Options[1].Token)
	assert.Equal(t, EncodeSlotToken("haircut", at(10, 30)), offer.Options[2].Token)
	assert.Equal(t, "Mon 09:00", offer.Options[0].Label)
	assert.Equal(t, "salon", offer.TenantKey)
	assert.Equal(t, customer, offer.CustomerID)

	assert.Nil(t, h.pending(t), "offering slots does not change state")
}

func TestSelectSlotCreatesPendingBooking(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, buttonMessage(EncodeSlotToken("haircut", at(9, 0))))

	p := h.pending(t)
	require.NotNil(t, p)
	assert.Equal(t, "salon", p.TenantKey)
	assert.Equal(t, "evt-1", p.RemoteEventID)
	assert.Equal(t, at(9, 0), p.Start)
	assert.Equal(t, at(10, 0), p.End, "service max exceeds slot duration")
	assert.Equal(t, 60, p.DurationMinutes)
	assert.Equal(t, "Haircut", p.ServiceName)
	assert.Equal(t, 80.0, p.Price)
	assert.Equal(t, "Mon Oct 12 · 09:00", p.DisplayLabel)
	assert.Equal(t, []string{"owner@example.com"}, h.calendar.attendees)

	prompt := h.tr.last(t)
	assert.Equal(t, "Thanks! Waiting for approval for Haircut on Mon Oct 12 · 09:00.", prompt.Body)
	assert.Equal(t, []models.Option{
		{Token: ApproveToken, Label: "Approve (Owner)"},
		{Token: RejectToken, Label: "Reject"},
	}, prompt.Options)
	assert.Equal(t, []string{models.ActivityBookingCreated}, activityTypes(t, h.activity))
}

func TestSecondSelectionSupersedesFirst(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, buttonMessage(EncodeSlotToken("haircut", at(9, 0))))
	h.handle(t, buttonMessage(EncodeSlotToken("nails", at(10, 30))))

	all, err := h.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, at(10, 30), all[0].Start)
	assert.Equal(t, "Manicure", all[0].ServiceName)
	assert.Equal(t, "evt-2", all[0].RemoteEventID)
	assert.Equal(t, []string{"evt-1"}, h.calendar.cancelled)
	assert.Equal(t, []string{
		models.ActivityBookingCreated,
		models.ActivityBookingSuperseded,
		models.ActivityBookingCreated,
	}, activityTypes(t, h.activity))
}

func TestApproveConfirmsAndClears(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, buttonMessage(EncodeSlotToken("haircut", at(9, 0))))
	h.handle(t, buttonMessage(ApproveToken))

	assert.Nil(t, h.pending(t))
	assert.Equal(t, []string{"evt-1"}, h.calendar.confirmed)
	assert.Equal(t, "Approved ✅ Haircut on Mon Oct 12 · 09:00", h.tr.last(t).Body)
	assert.Contains(t, activityTypes(t, h.activity), models.ActivityBookingApproved)
}

func TestRejectCancelsAndClears(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, buttonMessage(EncodeSlotToken("haircut", at(9, 0))))
	h.handle(t, buttonMessage(RejectToken))

	assert.Nil(t, h.pending(t))
	assert.Equal(t, []string{"evt-1"}, h.calendar.cancelled)
	assert.Equal(t, "Cancelled ❌ Haircut on Mon Oct 12 · 09:00 is now open.", h.tr.last(t).Body)
	assert.Contains(t, activityTypes(t, h.activity), models.ActivityBookingRejected)
}

func TestApproveWithNothingPending(t *testing.T) {
	for _, token := range []string{ApproveToken, RejectToken} {
		t.Run(token, func(t *testing.T) {
			h := newHarness(t, nil)
			h.handle(t, buttonMessage(token))

			assert.Nil(t, h.pending(t))
			assert.Empty(t, h.calendar.confirmed)
			assert.Empty(t, h.calendar.cancelled)
			assert.Equal(t, "You don't have a pending booking.", h.tr.last(t).Body)
			assert.Empty(t, activityTypes(t, h.activity))
		})
	}
}

func TestCalendarFailureHoldsSlotLocally(t *testing.T) {
	h := newHarness(t, nil)
	h.calendar.createErr = errors.New("calendar down")
	h.handle(t, buttonMessage(EncodeSlotToken("haircut", at(9, 0))))

	p := h.pending(t)
	require.NotNil(t, p)
	assert.True(t, strings.HasPrefix(p.RemoteEventID, placeholderEventPrefix))

	h.handle(t, buttonMessage(ApproveToken))
	assert.Nil(t, h.pending(t))
	assert.Empty(t, h.calendar.confirmed, "placeholder events are never sent to the calendar")
}

func TestHeldSlotIsHiddenFromOtherCustomers(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, buttonMessage(EncodeSlotToken("haircut", at(9, 0))))

	other := textMessage("book a haircut")
	other.CustomerID = "972500000002"
	h.tr.reset()
	require.NoError(t, h.o.HandleMessage(context.Background(), other))

	offer := h.tr.last(t)
	require.NotEmpty(t, offer.Options)
	// 09:00-10:00 is held, so 09:00 and 09:45 are gone.
	assert.Equal(t, EncodeSlotToken("haircut", at(10, 30)), offer.Options[0].Token)
}

func TestExpiredSlotReoffersAvailability(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, buttonMessage(EncodeSlotToken("haircut", at(7, 0))))

	assert.Nil(t, h.pending(t))
	assert.Empty(t, h.calendar.created)
	msgs := h.tr.messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, "That time has already passed. Here are the next openings:", msgs[0].Body)
	assert.NotEmpty(t, h.tr.last(t).Options)
}

func TestSlotHeldByAnotherCustomerIsRefused(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, buttonMessage(EncodeSlotToken("haircut", at(9, 0))))

	other := buttonMessage(EncodeSlotToken("haircut", at(9, 0)))
	other.CustomerID = "972500000002"
	h.tr.reset()
	require.NoError(t, h.o.HandleMessage(context.Background(), other))

	all, err := h.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, customer, all[0].CustomerID)
	assert.Equal(t, []string{"evt-1"}, h.calendar.created)

	msgs := h.tr.messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, "That time is no longer available. Here are the next openings:", msgs[0].Body)
	offer := h.tr.last(t)
	require.NotEmpty(t, offer.Options)
	assert.Equal(t, EncodeSlotToken("haircut", at(10, 30)), offer.Options[0].Token)
}

func TestSlotOutsideWorkingHoursIsRefused(t *testing.T) {
	for name, start := range map[string]time.Time{
		"before opening": time.Date(2026, 10, 13, 3, 7, 0, 0, time.UTC),
		"off the grid":   at(9, 10),
		"after closing":  at(17, 30),
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, nil)
			h.handle(t, buttonMessage(EncodeSlotToken("haircut", start)))

			assert.Nil(t, h.pending(t))
			assert.Empty(t, h.calendar.created)
			assert.Equal(t, "That time is no longer available. Here are the next openings:", h.tr.messages()[0].Body)
			assert.NotEmpty(t, h.tr.last(t).Options)
		})
	}
}

func TestInvalidSlotToken(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, buttonMessage("slot::haircut::not-a-time"))

	assert.Nil(t, h.pending(t))
	assert.Equal(t, "Sorry, I couldn't read that time slot. Please pick one of the offered times.", h.tr.last(t).Body)
}

func TestLegacySlotTokenUsesDefaultService(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, buttonMessage("slot_2026-10-12T09:45:00Z"))

	p := h.pending(t)
	require.NotNil(t, p)
	assert.Equal(t, "haircut", p.ServiceID)
	assert.Equal(t, at(9, 45), p.Start)
}

func TestNonTextMessageIsAcknowledged(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, models.InboundMessage{RoutingKey: "PN1", CustomerID: customer, Kind: models.MessageKindOther})

	assert.Equal(t, "Got it ✅", h.tr.last(t).Body)
	assert.Nil(t, h.pending(t))
}

func TestShowServiceButtonOffersThatService(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, buttonMessage(EncodeShowAvailabilityToken("nails")))

	msgs := h.tr.messages()
	require.Len(t, msgs, 1, "free services have no price line")
	require.NotEmpty(t, msgs[0].Options)
	assert.Equal(t, EncodeSlotToken("nails", at(9, 0)), msgs[0].Options[0].Token)
}

func TestRepliesFollowCustomerLanguage(t *testing.T) {
	h := newHarness(t, nil)
	h.handle(t, textMessage("אני רוצה לבטל"))
	assert.Equal(t, "לא מצאתי הזמנה ממתינה לביטול.", h.tr.last(t).Body)

	// Button replies carry no text; the remembered language is used.
	h.handle(t, buttonMessage(ApproveToken))
	assert.Equal(t, "אין לך הזמנה ממתינה.", h.tr.last(t).Body)
}

func TestPreferredTimeMatchingSlotIsSelected(t *testing.T) {
	h := newHarness(t, stubResolver{res: models.Resolution{
		Action:            models.ActionShowAvailability,
		ResponseText:      "Let me book that.",
		ServiceHint:       "haircut",
		PreferredTimeHint: "2026-10-12T10:30",
		Language:          ai.LangEnglish,
	}})
	h.handle(t, textMessage("haircut at 10:30 please"))

	p := h.pending(t)
	require.NotNil(t, p)
	assert.Equal(t, at(10, 30), p.Start)
	msgs := h.tr.messages()
	assert.Equal(t, "Let me book that.", msgs[0].Body)
	assert.Equal(t, ApproveToken, h.tr.last(t).Options[0].Token)
}

func TestPreferredTimeBetweenSlotsSearchesFromIt(t *testing.T) {
	h := newHarness(t, stubResolver{res: models.Resolution{
		Action:            models.ActionShowAvailability,
		ResponseText:      "Here is what's open.",
		ServiceHint:       "haircut",
		PreferredTimeHint: "2026-10-12T10:00:00Z",
	}})
	h.handle(t, textMessage("haircut around 10"))

	assert.Nil(t, h.pending(t))
	offer := h.tr.last(t)
	require.Len(t, offer.Options, 3)
	assert.Equal(t, EncodeSlotToken("haircut", at(10, 30)), offer.Options[0].Token)
	assert.Equal(t, EncodeSlotToken("haircut", at(12, 0)), offer.Options[2].Token)
}

func TestPendingStatus(t *testing.T) {
	h := newHarness(t, stubResolver{res: models.Resolution{Action: models.ActionPendingStatus, ResponseText: "Soon!"}})

	h.handle(t, textMessage("any news?"))
	idle := h.tr.last(t)
	assert.Equal(t, "I don't see a pending booking. Want me to show the next openings?", idle.Body)
	assert.Equal(t, []models.Option{{Token: "showservice::default", Label: "See open times"}}, idle.Options)

	h.handle(t, buttonMessage(EncodeSlotToken("haircut", at(9, 0))))
	h.handle(t, textMessage("any news?"))
	assert.Equal(t, "We're still waiting for approval for Haircut on Mon Oct 12 · 09:00.", h.tr.last(t).Body)
}

func TestCancelRequestOffersRejectAndOtherTimes(t *testing.T) {
	h := newHarness(t, stubResolver{res: models.Resolution{Action: models.ActionCancelBooking, ResponseText: "Sure, we can cancel."}})
	h.handle(t, buttonMessage(EncodeSlotToken("haircut", at(9, 0))))
	h.tr.reset()

	h.handle(t, textMessage("cancel it"))
	msgs := h.tr.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Sure, we can cancel.", msgs[0].Body)
	assert.Equal(t, "Cancel this booking?", msgs[1].Body)
	assert.Equal(t, []models.Option{
		{Token: RejectToken, Label: "Reject"},
		{Token: "showservice::haircut", Label: "See other times"},
	}, msgs[1].Options)
	assert.NotNil(t, h.pending(t), "asking to cancel does not cancel")
}

func TestAnswerIsSentVerbatim(t *testing.T) {
	h := newHarness(t, stubResolver{res: models.Resolution{Action: models.ActionAnswer, ResponseText: "We open at 9."}})
	h.handle(t, textMessage("when do you open?"))
	assert.Equal(t, "We open at 9.", h.tr.last(t).Body)
}

func TestUnknownRoutingKeyWithoutDefaultTenant(t *testing.T) {
	h := newHarness(t, nil)
	msg := textMessage("hi")
	msg.RoutingKey = "PN-unknown"

	err := h.o.HandleMessage(context.Background(), msg)
	require.Error(t, err)
	var be *BookingError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, CodeTenantNotFound, be.Code)
	assert.True(t, errors.Is(err, tenantRepo.ErrTenantNotFound))
	assert.False(t, Retryable(err))
	assert.Empty(t, h.tr.messages())
}

func TestTransportFailureIsReportedAfterStateIsSaved(t *testing.T) {
	h := newHarness(t, nil)
	h.tr.err = errors.New("graph 500")

	err := h.o.HandleMessage(context.Background(), buttonMessage(EncodeSlotToken("haircut", at(9, 0))))
	require.Error(t, err)
	assert.True(t, Retryable(err))
	assert.NotNil(t, h.pending(t))
}

func TestConcurrentSelectionsLeaveOnePendingBooking(t *testing.T) {
	h := newHarness(t, nil)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := at(9, 0).Add(time.Duration(i) * 45 * time.Minute)
			assert.NoError(t, h.o.HandleMessage(context.Background(), buttonMessage(EncodeSlotToken("haircut", start))))
		}(i)
	}
	wg.Wait()

	all, err := h.store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Len(t, h.calendar.created, n)
	assert.Len(t, h.calendar.cancelled, n-1)
	assert.NotContains(t, h.calendar.cancelled, all[0].RemoteEventID)
}

type emptyCatalogDirectory struct{}

func (emptyCatalogDirectory) ByRoutingKey(context.Context, string) (*models.Tenant, error) {
	t := salon()
	t.Services = nil
	return &t, nil
}

func (d emptyCatalogDirectory) ByKey(ctx context.Context, key string) (*models.Tenant, error) {
	return d.ByRoutingKey(ctx, key)
}

func (emptyCatalogDirectory) All(context.Context) ([]models.Tenant, error) { return nil, nil }

func TestNoResolvableServicePresentsCatalog(t *testing.T) {
	h := newHarness(t, nil)
	h.o.Tenants = emptyCatalogDirectory{}
	h.handle(t, buttonMessage(EncodeShowAvailabilityToken("")))

	assert.True(t, strings.HasPrefix(h.tr.last(t).Body, "Which service would you like?"))
	assert.Empty(t, h.tr.last(t).Options)
}
