package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	perr "github.com/next-trace/scg-product-events/contract/errors"
)

// Concrete NATS connection-backed Client and constructor.

// Config carries connection settings for a real NATS server. FlushTimeout
// bounds the post-publish flush; zero means an unbounded flush.
type Config struct {
	URL           string
	Name          string
	ConnTimeout   time.Duration
	FlushTimeout  time.Duration
	ReconnectWait time.Duration
	MaxReconnects int
}

type natsClient struct {
	nc           *nats.Conn
	flushTimeout time.Duration
}

func (c natsClient) Publish(subject string, data []byte, headers map[string]string) error {
	msg := nats.NewMsg(subject)
	msg.Data = data

	for k, v := range headers {
		msg.Header.Add(k, v)
	}

	if err := c.nc.PublishMsg(msg); err != nil {
		return err
	}

	if c.flushTimeout > 0 {
		return c.nc.FlushTimeout(c.flushTimeout)
	}

	return c.nc.Flush()
}

// NewWithNATS creates a real NATS connection and returns an Adapter and a
// cleanup. The cleanup drains the connection, which closes it once every
// buffered publish has gone out.
func NewWithNATS(cfg Config) (*Adapter, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("%w: nats url required", perr.ErrDeliveryFailed)
	}

	opts := make([]nats.Option, 0, 4)
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}

	if cfg.ConnTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnTimeout))
	}

	if cfg.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(cfg.ReconnectWait))
	}

	if cfg.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(cfg.MaxReconnects))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: nats connect: %w", perr.ErrDeliveryFailed, err)
	}

	ad := New(natsClient{nc: nc, flushTimeout: cfg.FlushTimeout})
	cleanup := func() {
		if !nc.IsClosed() {
			_ = nc.Drain() //nolint:errcheck // best-effort shutdown; cannot return error here
		}
	}

	return ad, cleanup, nil
}
