package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"event-lifecycle-system/models"

	"github.com/nats-io/nats.go"
)

// SubjectNotificationCreated carries one message per committed fan-out.
// Push/email workers subscribe here; this service's obligation ends once
// the message is published.
const SubjectNotificationCreated = "notification.created"

type Broker struct {
	Conn *nats.Conn
}

// Connect dials NATS from NATS_URL / NATS_TOKEN.
func Connect() (*Broker, error) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		url = nats.DefaultURL
	}

	opts := []nats.Option{
		nats.Name("event-lifecycle-system"),
	}
	if token := os.Getenv("NATS_TOKEN"); token != "" {
		opts = append(opts, nats.Token(token))
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return &Broker{Conn: conn}, nil
}

func (b *Broker) Close() {
	if b.Conn != nil {
		b.Conn.Drain()
	}
}

type notificationCreatedMsg struct {
	NotificationID string          `json:"notification_id"`
	Type           string          `json:"type"`
	CreatedBy      string          `json:"created_by"`
	Data           json.RawMessage `json:"data"`
	Recipients     []string        `json:"recipients"`
}

// NotificationCreated announces a committed notification and its recipient
// set to downstream delivery workers.
func (b *Broker) NotificationCreated(_ context.Context, n *models.Notification, recipientIDs []string) error {
	payload, err := json.Marshal(notificationCreatedMsg{
		NotificationID: n.ID,
		Type:           n.Type,
		CreatedBy:      n.CreatedBy,
		Data:           json.RawMessage(n.Data),
		Recipients:     recipientIDs,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", SubjectNotificationCreated, err)
	}
	return b.Conn.Publish(SubjectNotificationCreated, payload)
}
