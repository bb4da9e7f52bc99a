package tasks

import (
	"testing"
	"time"

	"chatbook/models"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboundTaskCarriesMessage(t *testing.T) {
	msg := models.InboundMessage{
		MessageID:  "wamid.1",
		RoutingKey: "PN1",
		CustomerID: "972500000001",
		Kind:       models.MessageKindListReply,
		ReplyID:    "slot::haircut::2026-10-12T09:00:00Z",
		ReceivedAt: time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC),
	}
	task, opts, err := NewInboundTask(msg)
	require.NoError(t, err)
	assert.Equal(t, TypeInboundMessage, task.Type())

	got, err := ParseInboundTask(task)
	require.NoError(t, err)
	assert.Equal(t, msg, got)

	seen := map[asynq.OptionType]interface{}{}
	for _, opt := range opts {
		seen[opt.Type()] = opt.Value()
	}
	assert.Equal(t, "wamid.1", seen[asynq.TaskIDOpt])
	assert.Equal(t, InboundQueue, seen[asynq.QueueOpt])
}

func TestInboundTaskWithoutMessageID(t *testing.T) {
	_, opts, err := NewInboundTask(models.InboundMessage{CustomerID: "c1"})
	require.NoError(t, err)
	for _, opt := range opts {
		assert.NotEqual(t, asynq.TaskIDOpt, opt.Type())
	}
}
