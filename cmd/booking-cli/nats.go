// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/logging"
	"github.com/linuxfoundation/lfx-v2-booking-client/pkg/constants"
)

// NATS connection defaults
const (
	natsConnectTimeout = 5 * time.Second
	natsMaxReconnects  = 3
	natsReconnectWait  = 2 * time.Second
)

// setupNATS connects to the NATS server used to publish notifications. A nil
// connection and nil error mean publishing is disabled.
func setupNATS(env environment) (*nats.Conn, error) {
	if env.NATSURL == "" {
		slog.Debug("NATS_URL not set, notifications will not be published")
		return nil, nil
	}

	conn, err := nats.Connect(
		env.NATSURL,
		nats.Name(constants.UserAgent),
		nats.Timeout(natsConnectTimeout),
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.With(logging.ErrKey, err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.With("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.Debug("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, err
	}

	slog.With("url", env.NATSURL).Debug("connected to NATS")
	return conn, nil
}

// closeNATS drains the connection so queued notifications are flushed.
func closeNATS(conn *nats.Conn) {
	if conn == nil || conn.IsClosed() {
		return
	}
	if err := conn.Drain(); err != nil {
		slog.With(logging.ErrKey, err).Error("error draining NATS connection")
	}
}
