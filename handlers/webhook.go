// File: handlers/webhook.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"chatbook/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const whatsappObject = "whatsapp_business_account"

// MessageDispatcher hands one inbound message to the orchestrator, now or later.
type MessageDispatcher interface {
	Dispatch(ctx context.Context, msg models.InboundMessage) error
}

// WebhookHandler serves the WhatsApp Cloud API webhook.
type WebhookHandler struct {
	VerifyToken string
	Dispatcher  MessageDispatcher
	Logger      *zap.Logger
}

func NewWebhookHandler(verifyToken string, dispatcher MessageDispatcher, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{VerifyToken: verifyToken, Dispatcher: dispatcher, Logger: logger}
}

// VerifyHandler answers Meta's subscription handshake.
func (h *WebhookHandler) VerifyHandler(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.VerifyToken != "" && token == h.VerifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	h.Logger.Warn("webhook verification rejected", zap.String("mode", mode))
	c.Status(http.StatusForbidden)
}

// ReceiveHandler extracts customer messages and dispatches them one by one. Once
// the payload parses, the answer is always 200 so Meta does not redeliver;
// processing failures are logged.
func (h *WebhookHandler) ReceiveHandler(c *gin.Context) {
	var payload WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.Logger.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}
	if payload.Object != whatsappObject {
		c.Status(http.StatusOK)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, st := range change.Value.Statuses {
				h.Logger.Info("message status",
					zap.String("messageID", st.ID),
					zap.String("status", st.Status),
					zap.String("recipient", st.RecipientID))
			}
			for _, msg := range InboundMessages(change.Value) {
				if err := h.Dispatcher.Dispatch(c.Request.Context(), msg); err != nil {
					h.Logger.Error("failed to handle inbound message",
						zap.String("messageID", msg.MessageID),
						zap.String("customerID", msg.CustomerID),
						zap.Error(err))
				}
			}
		}
	}
	c.Status(http.StatusOK)
}

// WebhookPayload is the subset of the Cloud API notification this service reads.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string `json:"messaging_product"`
	Metadata         struct {
		DisplayPhoneNumber string `json:"display_phone_number"`
		PhoneNumberID      string `json:"phone_number_id"`
	} `json:"metadata"`
	Messages []WhatsAppMessage `json:"messages"`
	Statuses []WhatsAppStatus  `json:"statuses"`
}

type WhatsAppMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Interactive *struct {
		Type        string    `json:"type"`
		ButtonReply *replyRef `json:"button_reply,omitempty"`
		ListReply   *replyRef `json:"list_reply,omitempty"`
	} `json:"interactive,omitempty"`
}

type replyRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type WhatsAppStatus struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// InboundMessages converts the messages of one change. Messages without usable
// text or reply id come out as MessageKindOther.
func InboundMessages(value ChangeValue) []models.InboundMessage {
	out := make([]models.InboundMessage, 0, len(value.Messages))
	for _, m := range value.Messages {
		msg := models.InboundMessage{
			MessageID:  m.ID,
			RoutingKey: value.Metadata.PhoneNumberID,
			CustomerID: m.From,
			Kind:       models.MessageKindOther,
			ReceivedAt: parseUnix(m.Timestamp),
		}
		switch {
		case m.Type == "text" && m.Text != nil && strings.TrimSpace(m.Text.Body) != "":
			msg.Kind = models.MessageKindText
			msg.Text = strings.TrimSpace(m.Text.Body)
		case m.Type == "interactive" && m.Interactive != nil:
			if r := m.Interactive.ButtonReply; m.Interactive.Type == "button_reply" && r != nil && r.ID != "" {
				msg.Kind = models.MessageKindButtonReply
				msg.ReplyID = r.ID
			}
			if r := m.Interactive.ListReply; m.Interactive.Type == "list_reply" && r != nil && r.ID != "" {
				msg.Kind = models.MessageKindListReply
				msg.ReplyID = r.ID
			}
		}
		out = append(out, msg)
	}
	return out
}

func parseUnix(ts string) time.Time {
	secs, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Unix(secs, 0).UTC()
}
