package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func salon() *Tenant {
	return &Tenant{
		Key: "demo",
		Services: []Service{
			{ID: "haircut", Name: "Haircut", Keywords: []string{"cut", "trim"}},
			{ID: "color", Name: "Hair Color", Keywords: []string{"dye", "highlights"}},
			{ID: "mani", Name: "Manicure", Keywords: []string{"nails"}},
		},
	}
}

func TestServiceLookups(t *testing.T) {
	tenant := salon()

	assert.Equal(t, "color", tenant.ServiceByID("color").ID)
	assert.Nil(t, tenant.ServiceByID("missing"))
	assert.Nil(t, tenant.ServiceByID(""))

	assert.Equal(t, "mani", tenant.ServiceByText("Can I get my NAILS done?").ID)
	assert.Equal(t, "color", tenant.ServiceByText("I want highlights").ID)
	assert.Equal(t, "haircut", tenant.ServiceByText("haircut please").ID)
	assert.Nil(t, tenant.ServiceByText("hello there"))
	assert.Nil(t, tenant.ServiceByText("   "))

	assert.Equal(t, "haircut", tenant.DefaultService().ID)
	assert.Nil(t, (&Tenant{}).DefaultService())

	var nilTenant *Tenant
	assert.Nil(t, nilTenant.DefaultService())
	assert.Nil(t, nilTenant.ServiceByText("cut"))
}

func TestBusyIntervalOverlapIsHalfOpen(t *testing.T) {
	base := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	busy := BusyInterval{Start: base, End: base.Add(time.Hour)}

	assert.True(t, busy.Overlaps(base.Add(30*time.Minute), base.Add(90*time.Minute)))
	assert.True(t, busy.Overlaps(base.Add(-time.Hour), base.Add(time.Minute)))
	assert.False(t, busy.Overlaps(base.Add(time.Hour), base.Add(2*time.Hour)))
	assert.False(t, busy.Overlaps(base.Add(-time.Hour), base))
}

func TestInboundRawPrefersReplyID(t *testing.T) {
	assert.Equal(t, "approve_me", InboundMessage{Kind: MessageKindButtonReply, ReplyID: "approve_me", Text: "x"}.Raw())
	assert.Equal(t, "slot::a::b", InboundMessage{Kind: MessageKindListReply, ReplyID: "slot::a::b"}.Raw())
	assert.Equal(t, "hello", InboundMessage{Kind: MessageKindText, Text: "hello"}.Raw())
	assert.Equal(t, "", InboundMessage{Kind: MessageKindOther}.Raw())
}

func TestActionValid(t *testing.T) {
	for _, a := range Actions {
		assert.True(t, a.Valid())
	}
	assert.False(t, Action("BOOK").Valid())
	assert.False(t, Action("").Valid())
}
