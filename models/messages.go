package models

import "time"

// Inbound message kinds as reported by the WhatsApp webhook.
const (
	MessageKindText        = "text"
	MessageKindButtonReply = "button_reply"
	MessageKindListReply   = "list_reply"
	MessageKindOther       = "other"
)

// InboundMessage is one customer message extracted from a webhook change.
type InboundMessage struct {
	MessageID  string    `json:"messageId"`
	RoutingKey string    `json:"routingKey"` // WhatsApp phone_number_id of the business
	CustomerID string    `json:"customerId"` // sender wa_id
	Kind       string    `json:"kind"`
	Text       string    `json:"text,omitempty"`
	ReplyID    string    `json:"replyId,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Raw returns the text the orchestrator decodes: the reply id for interactive
// replies, the body for text messages.
func (m InboundMessage) Raw() string {
	switch m.Kind {
	case MessageKindButtonReply, MessageKindListReply:
		return m.ReplyID
	default:
		return m.Text
	}
}

// Activity event types.
const (
	ActivityBookingCreated    = "booking.created"
	ActivityBookingSuperseded = "booking.superseded"
	ActivityBookingApproved   = "booking.approved"
	ActivityBookingRejected   = "booking.rejected"
)

// ActivityEvent is an entry of the owner-facing activity feed.
type ActivityEvent struct {
	Type        string    `json:"type" bson:"type"`
	TenantKey   string    `json:"tenantKey" bson:"tenantKey"`
	CustomerID  string    `json:"customerId" bson:"customerId"`
	ServiceName string    `json:"serviceName,omitempty" bson:"serviceName,omitempty"`
	SlotLabel   string    `json:"slotLabel,omitempty" bson:"slotLabel,omitempty"`
	EventID     string    `json:"eventId,omitempty" bson:"eventId,omitempty"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}
