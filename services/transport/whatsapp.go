package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chatbook/models"

	"go.uber.org/zap"
)

const (
	DefaultGraphBase = "https://graph.facebook.com"

	maxButtons     = 3
	maxButtonTitle = 20
	maxListRows    = 10
	maxRowTitle    = 24
	maxReplyID     = 256
)

// TenantLookup is the part of the tenant directory the transport needs.
type TenantLookup interface {
	ByKey(ctx context.Context, key string) (*models.Tenant, error)
}

// GraphError is a non-2xx reply from the Graph API.
type GraphError struct {
	Status int
	Body   string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph api status %d: %s", e.Status, e.Body)
}

// WhatsAppTransport sends messages through the WhatsApp Cloud API. Up to three
// options go out as reply buttons, more as an interactive list.
type WhatsAppTransport struct {
	Tenants    TenantLookup
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewWhatsAppTransport(tenants TenantLookup, baseURL string, logger *zap.Logger) *WhatsAppTransport {
	if baseURL == "" {
		baseURL = DefaultGraphBase
	}
	return &WhatsAppTransport{
		Tenants:    tenants,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logger,
	}
}

type textBody struct {
	Body string `json:"body"`
}

type replyButton struct {
	Type  string `json:"type"`
	Reply struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"reply"`
}

type listRow struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type listSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []listRow `json:"rows"`
}

type interactiveAction struct {
	Buttons  []replyButton `json:"buttons,omitempty"`
	Button   string        `json:"button,omitempty"`
	Sections []listSection `json:"sections,omitempty"`
}

type interactive struct {
	Type   string            `json:"type"`
	Body   textBody          `json:"body"`
	Action interactiveAction `json:"action"`
}

type outbound struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             *textBody    `json:"text,omitempty"`
	Interactive      *interactive `json:"interactive,omitempty"`
}

func (w *WhatsAppTransport) SendText(ctx context.Context, tenantKey, customerID, body string) error {
	return w.send(ctx, tenantKey, outbound{
		MessagingProduct: "whatsapp",
		To:               customerID,
		Type:             "text",
		Text:             &textBody{Body: body},
	})
}

func (w *WhatsAppTransport) SendOptions(ctx context.Context, tenantKey, customerID, prompt string, options []models.Option) error {
	if len(options) == 0 {
		return w.SendText(ctx, tenantKey, customerID, prompt)
	}
	return w.send(ctx, tenantKey, outbound{
		MessagingProduct: "whatsapp",
		To:               customerID,
		Type:             "interactive",
		Interactive:      buildInteractive(prompt, options),
	})
}

func buildInteractive(prompt string, options []models.Option) *interactive {
	if len(options) <= maxButtons {
		msg := &interactive{Type: "button", Body: textBody{Body: prompt}}
		for _, opt := range options {
			b := replyButton{Type: "reply"}
			b.Reply.ID = truncate(opt.Token, maxReplyID)
			b.Reply.Title = truncate(opt.Label, maxButtonTitle)
			msg.Action.Buttons = append(msg.Action.Buttons, b)
		}
		return msg
	}

	if len(options) > maxListRows {
		options = options[:maxListRows]
	}
	rows := make([]listRow, 0, len(options))
	for _, opt := range options {
		rows = append(rows, listRow{ID: truncate(opt.Token, maxReplyID), Title: truncate(opt.Label, maxRowTitle)})
	}
	return &interactive{
		Type:   "list",
		Body:   textBody{Body: prompt},
		Action: interactiveAction{Button: "Choose", Sections: []listSection{{Rows: rows}}},
	}
}

func (w *WhatsAppTransport) send(ctx context.Context, tenantKey string, msg outbound) error {
	tenant, err := w.Tenants.ByKey(ctx, tenantKey)
	if err != nil {
		return fmt.Errorf("resolve sender: %w", err)
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", w.BaseURL, tenant.GraphVersion, tenant.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tenant.WABAToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client().Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		w.logger().Error("whatsapp send failed",
			zap.String("tenant", tenantKey), zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return &GraphError{Status: resp.StatusCode, Body: string(body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (w *WhatsAppTransport) client() *http.Client {
	if w.HTTPClient != nil {
		return w.HTTPClient
	}
	return http.DefaultClient
}

func (w *WhatsAppTransport) logger() *zap.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return zap.NewNop()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
