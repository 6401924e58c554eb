package mqtt

import "sync"

// Published records a single published message for test assertions.
type Published struct {
	Topic    string
	Payload  []byte
	Retained bool
}

// FakeClient is an in-memory broker stand-in. Retained messages are kept
// and replayed to later subscribers, matching broker behavior.
type FakeClient struct {
	mu       sync.Mutex
	messages []Published
	retained map[string][]byte
	handlers map[string][]MessageHandler

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		retained: make(map[string][]byte),
		handlers: make(map[string][]MessageHandler),
	}
}

// Publish records the message and delivers it to matching subscribers.
func (f *FakeClient) Publish(topic string, payload []byte, retained bool) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.mu.Lock()
	f.messages = append(f.messages, Published{Topic: topic, Payload: payload, Retained: retained})
	if retained {
		f.retained[topic] = payload
	}
	handlers := append([]MessageHandler(nil), f.handlers[topic]...)
	f.mu.Unlock()

	for _, h := range handlers {
		h(topic, payload)
	}
	return nil
}

// Subscribe registers handler and replays a retained message if one exists.
func (f *FakeClient) Subscribe(topic string, handler MessageHandler) error {
	f.mu.Lock()
	f.handlers[topic] = append(f.handlers[topic], handler)
	retained, ok := f.retained[topic]
	f.mu.Unlock()

	if ok {
		handler(topic, retained)
	}
	return nil
}

// Inject delivers a message to subscribers as if it came from the broker.
func (f *FakeClient) Inject(topic string, payload []byte) {
	f.mu.Lock()
	handlers := append([]MessageHandler(nil), f.handlers[topic]...)
	f.mu.Unlock()

	for _, h := range handlers {
		h(topic, payload)
	}
}

// SetRetained seeds a retained message without notifying subscribers.
func (f *FakeClient) SetRetained(topic string, payload []byte) {
	f.mu.Lock()
	f.retained[topic] = payload
	f.mu.Unlock()
}

// Messages returns a copy of everything published so far.
func (f *FakeClient) Messages() []Published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Published(nil), f.messages...)
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded messages and handlers.
func (f *FakeClient) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = nil
	f.retained = make(map[string][]byte)
	f.handlers = make(map[string][]MessageHandler)
	f.PublishError = nil
	f.Closed = false
	f.Connected = false
}
