package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"chatbook/models"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	statusTentative = "tentative"
	statusConfirmed = "confirmed"
)

// GoogleCalendar talks to Google Calendar. Credentials come from the tenant's OAuth
// client and token files, or from a shared service-account file.
type GoogleCalendar struct {
	// CredentialsFile is a service-account key used for tenants without OAuth files.
	CredentialsFile string
	Logger          *zap.Logger

	mu         sync.Mutex
	services   map[string]*gcal.Service
	newService func(ctx context.Context, tenant *models.Tenant) (*gcal.Service, error)
}

func NewGoogleCalendar(credentialsFile string, logger *zap.Logger) *GoogleCalendar {
	g := &GoogleCalendar{CredentialsFile: credentialsFile, Logger: logger}
	g.newService = g.authorizedService
	return g
}

func (g *GoogleCalendar) CreateTentativeEvent(ctx context.Context, tenant *models.Tenant, summary string, start, end time.Time, notes string, attendees []string) (string, error) {
	if !tenant.Calendar.Enabled {
		g.logger().Debug("calendar disabled; skipping tentative event", zap.String("tenant", tenant.Key))
		return "", nil
	}
	srv, err := g.service(ctx, tenant)
	if err != nil {
		return "", err
	}

	event := &gcal.Event{
		Summary:     summary,
		Description: notes,
		Start:       &gcal.EventDateTime{DateTime: start.UTC().Format(time.RFC3339), TimeZone: tenant.Calendar.Timezone},
		End:         &gcal.EventDateTime{DateTime: end.UTC().Format(time.RFC3339), TimeZone: tenant.Calendar.Timezone},
		Status:      statusTentative,
	}
	for _, email := range attendees {
		if email != "" {
			event.Attendees = append(event.Attendees, &gcal.EventAttendee{Email: email})
		}
	}

	created, err := srv.Events.Insert(calendarID(tenant), event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create tentative event: %w", err)
	}
	return created.Id, nil
}

func (g *GoogleCalendar) ConfirmEvent(ctx context.Context, tenant *models.Tenant, eventID string) error {
	if !tenant.Calendar.Enabled || eventID == "" {
		return nil
	}
	srv, err := g.service(ctx, tenant)
	if err != nil {
		return err
	}
	if _, err := srv.Events.Patch(calendarID(tenant), eventID, &gcal.Event{Status: statusConfirmed}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to confirm event %s: %w", eventID, err)
	}
	return nil
}

func (g *GoogleCalendar) CancelEvent(ctx context.Context, tenant *models.Tenant, eventID string) error {
	if !tenant.Calendar.Enabled || eventID == "" {
		return nil
	}
	srv, err := g.service(ctx, tenant)
	if err != nil {
		return err
	}
	if err := srv.Events.Delete(calendarID(tenant), eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to cancel event %s: %w", eventID, err)
	}
	return nil
}

func (g *GoogleCalendar) FetchBusyIntervals(ctx context.Context, tenant *models.Tenant, start, end time.Time) ([]models.BusyInterval, error) {
	if !tenant.Calendar.Enabled {
		return nil, nil
	}
	srv, err := g.service(ctx, tenant)
	if err != nil {
		return nil, err
	}

	id := calendarID(tenant)
	resp, err := srv.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin:  start.UTC().Format(time.RFC3339),
		TimeMax:  end.UTC().Format(time.RFC3339),
		TimeZone: tenant.Calendar.Timezone,
		Items:    []*gcal.FreeBusyRequestItem{{Id: id}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to query free/busy: %w", err)
	}

	cal, ok := resp.Calendars[id]
	if !ok {
		return nil, nil
	}
	if len(cal.Errors) > 0 {
		return nil, fmt.Errorf("free/busy for %s: %s", id, cal.Errors[0].Reason)
	}
	busy := make([]models.BusyInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		s, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("bad busy start %q: %w", period.Start, err)
		}
		e, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("bad busy end %q: %w", period.End, err)
		}
		busy = append(busy, models.BusyInterval{Start: s, End: e})
	}
	return busy, nil
}

// service returns the cached client for tenant, building it on first use.
func (g *GoogleCalendar) service(ctx context.Context, tenant *models.Tenant) (*gcal.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if srv, ok := g.services[tenant.Key]; ok {
		return srv, nil
	}
	srv, err := g.newService(ctx, tenant)
	if err != nil {
		return nil, err
	}
	if g.services == nil {
		g.services = make(map[string]*gcal.Service)
	}
	g.services[tenant.Key] = srv
	return srv, nil
}

func (g *GoogleCalendar) authorizedService(ctx context.Context, tenant *models.Tenant) (*gcal.Service, error) {
	cal := tenant.Calendar
	// The client outlives the request that first needed it.
	bg := context.Background()

	if cal.OAuthClientFile != "" && cal.TokenFile != "" {
		secret, err := os.ReadFile(cal.OAuthClientFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read OAuth client file: %w", err)
		}
		cfg, err := google.ConfigFromJSON(secret, gcal.CalendarScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse OAuth client file: %w", err)
		}
		tok, err := readToken(cal.TokenFile)
		if err != nil {
			return nil, err
		}
		return gcal.NewService(ctx, option.WithHTTPClient(cfg.Client(bg, tok)))
	}

	if g.CredentialsFile != "" {
		data, err := os.ReadFile(g.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(bg, data, gcal.CalendarScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse credentials file: %w", err)
		}
		return gcal.NewService(ctx, option.WithCredentials(creds))
	}
	return nil, fmt.Errorf("%w for tenant %q", ErrNotConfigured, tenant.Key)
}

func readToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return tok, nil
}

func calendarID(tenant *models.Tenant) string {
	if tenant.Calendar.CalendarID != "" {
		return tenant.Calendar.CalendarID
	}
	return "primary"
}

func (g *GoogleCalendar) logger() *zap.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return zap.NewNop()
}
