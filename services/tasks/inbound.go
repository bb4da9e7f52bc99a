package tasks

import (
	"encoding/json"
	"time"

	"chatbook/models"

	"github.com/hibiken/asynq"
)

const (
	TypeInboundMessage = "inbound:message"
	InboundQueue       = "inbound"
	InboundMaxRetry    = 5
	InboundTimeout     = 60 * time.Second
)

// NewInboundTask wraps one webhook message. The WhatsApp message ID doubles as the
// task ID, so a redelivered webhook enqueues nothing new.
func NewInboundTask(msg models.InboundMessage) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeInboundMessage, b)
	opts := []asynq.Option{
		asynq.Queue(InboundQueue),
		asynq.MaxRetry(InboundMaxRetry),
		asynq.Timeout(InboundTimeout),
	}
	if msg.MessageID != "" {
		opts = append(opts, asynq.TaskID(msg.MessageID))
	}
	return task, opts, nil
}

// ParseInboundTask decodes the payload written by NewInboundTask.
func ParseInboundTask(task *asynq.Task) (models.InboundMessage, error) {
	var msg models.InboundMessage
	err := json.Unmarshal(task.Payload(), &msg)
	return msg, err
}
