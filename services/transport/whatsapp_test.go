package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatbook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type oneTenant models.Tenant

func (o *oneTenant) ByKey(_ context.Context, key string) (*models.Tenant, error) {
	if key != o.Key {
		return nil, errors.New("tenant not found")
	}
	t := models.Tenant(*o)
	return &t, nil
}

type captured struct {
	path   string
	auth   string
	body   map[string]any
	status int
}

func graphServer(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.path = r.URL.Path
		c.auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&c.body))
		w.WriteHeader(c.status)
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func newTransport(url string) *WhatsAppTransport {
	tenants := &oneTenant{Key: "demo", PhoneNumberID: "100200", WABAToken: "tok", GraphVersion: "v20.0"}
	return NewWhatsAppTransport(tenants, url+"/", nil)
}

func TestSendText(t *testing.T) {
	srv, got := graphServer(t, http.StatusOK)

	require.NoError(t, newTransport(srv.URL).SendText(context.Background(), "demo", "15550001", "Hello"))
	assert.Equal(t, "/v20.0/100200/messages", got.path)
	assert.Equal(t, "Bearer tok", got.auth)
	assert.Equal(t, "whatsapp", got.body["messaging_product"])
	assert.Equal(t, "15550001", got.body["to"])
	assert.Equal(t, "text", got.body["type"])
	assert.Equal(t, "Hello", got.body["text"].(map[string]any)["body"])
}

func TestSendOptionsAsButtons(t *testing.T) {
	srv, got := graphServer(t, http.StatusOK)
	opts := []models.Option{
		{Token: "approve_me", Label: "Approve (Owner)"},
		{Token: "reject_me", Label: "Reject this booking right now please"},
	}

	require.NoError(t, newTransport(srv.URL).SendOptions(context.Background(), "demo", "1", "Waiting for approval", opts))
	inter := got.body["interactive"].(map[string]any)
	assert.Equal(t, "button", inter["type"])
	assert.Equal(t, "Waiting for approval", inter["body"].(map[string]any)["body"])

	buttons := inter["action"].(map[string]any)["buttons"].([]any)
	require.Len(t, buttons, 2)
	second := buttons[1].(map[string]any)["reply"].(map[string]any)
	assert.Equal(t, "reject_me", second["id"])
	assert.Len(t, []rune(second["title"].(string)), maxButtonTitle)
}

func TestSendOptionsAsList(t *testing.T) {
	srv, got := graphServer(t, http.StatusOK)
	var opts []models.Option
	for i := 0; i < 12; i++ {
		opts = append(opts, models.Option{Token: fmt.Sprintf("slot::cut::%d", i), Label: fmt.Sprintf("Mon %02d:00", i)})
	}

	require.NoError(t, newTransport(srv.URL).SendOptions(context.Background(), "demo", "1", "Pick a time", opts))
	inter := got.body["interactive"].(map[string]any)
	assert.Equal(t, "list", inter["type"])
	action := inter["action"].(map[string]any)
	assert.Equal(t, "Choose", action["button"])
	rows := action["sections"].([]any)[0].(map[string]any)["rows"].([]any)
	assert.Len(t, rows, maxListRows)
	assert.Equal(t, "slot::cut::0", rows[0].(map[string]any)["id"])
}

func TestSendOptionsWithoutOptionsSendsText(t *testing.T) {
	srv, got := graphServer(t, http.StatusOK)
	require.NoError(t, newTransport(srv.URL).SendOptions(context.Background(), "demo", "1", "Nothing to pick", nil))
	assert.Equal(t, "text", got.body["type"])
}

func TestGraphErrorsAreReturned(t *testing.T) {
	srv, _ := graphServer(t, http.StatusBadRequest)
	err := newTransport(srv.URL).SendText(context.Background(), "demo", "1", "x")

	var gerr *GraphError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, http.StatusBadRequest, gerr.Status)
}

func TestUnknownTenant(t *testing.T) {
	srv, _ := graphServer(t, http.StatusOK)
	assert.Error(t, newTransport(srv.URL).SendText(context.Background(), "ghost", "1", "x"))
}
