// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
)

// INatsConn is a NATS connection interface needed for publishing notifications.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder is the builder for the message and sends it to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// Ensure that MessageBuilder implements domain.NotificationPublisher
var _ domain.NotificationPublisher = (*MessageBuilder)(nil)

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// publish sends the message to the NATS server.
func (m *MessageBuilder) publish(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// PublishNotification publishes a workflow notification on lfx.booking-client.<kind>.
// The payload is msgpack-encoded using the notification's JSON field names.
func (m *MessageBuilder) PublishNotification(ctx context.Context, notification models.Notification) error {
	if m.NatsConn == nil || !m.NatsConn.IsConnected() {
		return domain.NewUnavailableError("NATS connection is not available")
	}

	data, err := EncodeNotification(notification)
	if err != nil {
		slog.ErrorContext(ctx, "error encoding notification", logging.ErrKey, err, "kind", notification.Kind)
		return domain.NewInternalError("failed to encode notification", err)
	}

	return m.publish(ctx, notification.Subject(), data)
}

// EncodeNotification encodes a notification as msgpack keyed by its JSON field names.
func EncodeNotification(notification models.Notification) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(notification); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeNotification decodes a payload produced by EncodeNotification.
func DecodeNotification(data []byte) (models.Notification, error) {
	var notification models.Notification
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	if err := dec.Decode(&notification); err != nil {
		return models.Notification{}, err
	}
	return notification, nil
}
