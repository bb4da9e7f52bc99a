package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	activityRepo "chatbook/database/repository/activity"
	pendingRepo "chatbook/database/repository/pending"
	"chatbook/handlers"
	"chatbook/middleware"
	"chatbook/models"
	"chatbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDispatcher struct{ n int }

func (d *countingDispatcher) Dispatch(context.Context, models.InboundMessage) error {
	d.n++
	return nil
}

func testRouter(d handlers.MessageDispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	webhook := handlers.NewWebhookHandler("verify-me", d, nil)
	admin := handlers.NewAdminHandler(pendingRepo.NewMemoryStore(), activityRepo.NewMemoryRecorder(), nil)
	r := gin.New()
	RegisterRoutes(r, &handlers.HandlerBundle{
		VerifyWebhookHandler:  webhook.VerifyHandler,
		ReceiveWebhookHandler: webhook.ReceiveHandler,
		ListPendingHandler:    admin.ListPendingHandler,
		ListActivityHandler:   admin.ListActivityHandler,
		AppSecret:             "s3cret",
		AdminKeys:             []string{"key-1"},
		AllowedOrigins:        []string{"*"},
	}, nil)
	return r
}

const textPayload = `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"metadata":{"phone_number_id":"PN1"},"messages":[{"id":"m1","from":"c1","timestamp":"1760256000","type":"text","text":{"body":"hi"}}]}}]}]}`

func TestWebhookRequiresSignature(t *testing.T) {
	d := &countingDispatcher{}
	r := testRouter(d)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(textPayload))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, d.n)

	req = httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(textPayload))
	req.Header.Set(middleware.SignatureHeader, middleware.Sign("s3cret", []byte(textPayload)))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, d.n)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=ok", nil))
	assert.Equal(t, "ok", w.Body.String())
}

func TestAdminRoutesRequireKey(t *testing.T) {
	r := testRouter(&countingDispatcher{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/pending", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/activity", nil)
	req.Header.Set("Authorization", "Bearer key-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthRoute(t *testing.T) {
	r := testRouter(&countingDispatcher{})
	utils.CheckHealth(context.Background(), nil, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
