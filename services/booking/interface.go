package booking

import (
	"context"
	"sync"
	"time"

	activityRepo "chatbook/database/repository/activity"
	pendingRepo "chatbook/database/repository/pending"
	tenantRepo "chatbook/database/repository/tenant"
	"chatbook/models"
	"chatbook/services/availability"
	"chatbook/services/calendar"
	ai "chatbook/services/intelligence"
	"chatbook/services/transport"

	"go.uber.org/zap"
)

// Orchestrator handles one inbound customer message end to end.
type Orchestrator interface {
	HandleMessage(ctx context.Context, msg models.InboundMessage) error
}

// IntentResolver classifies free text. It must always return a usable resolution.
type IntentResolver interface {
	Resolve(ctx context.Context, tenant *models.Tenant, text string, pending *models.PendingBooking) models.Resolution
}

// DefaultOrchestrator implements Orchestrator. Messages of one customer are
// serialized through Locker; different customers proceed in parallel.
type DefaultOrchestrator struct {
	Tenants      tenantRepo.Directory
	Store        pendingRepo.Store
	Locker       Locker
	Resolver     IntentResolver
	Availability availability.AvailabilityService
	Calendar     calendar.Calendar
	Transport    transport.Transport
	Activity     activityRepo.Recorder
	Languages    ai.ContextStore
	Logger       *zap.Logger
	Now          func() time.Time
	SlotLimit    int
	// OwnerEmail is invited to events of tenants that set no owner address.
	OwnerEmail   string

	lockerOnce sync.Once
}
