// Package mqtt provides broker connectivity with an abstraction for testing.
package mqtt

import "time"

// MessageHandler receives the raw payload of an incoming message.
type MessageHandler func(topic string, payload []byte)

// Client is the minimal broker surface the services need.
type Client interface {
	// Publish sends payload to topic. Retained messages survive on the
	// broker and are delivered to late subscribers.
	Publish(topic string, payload []byte, retained bool) error

	// Subscribe registers a handler for a topic. The handler may be
	// called from the client's network goroutine.
	Subscribe(topic string, handler MessageHandler) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Options configures a broker connection.
type Options struct {
	Broker   string // e.g. "tcp://localhost:1883"
	ClientID string
	Username string
	Password string

	ConnectTimeout time.Duration
	PublishTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.ClientID == "" {
		o.ClientID = "smart-heating"
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = 5 * time.Second
	}
	return o
}
