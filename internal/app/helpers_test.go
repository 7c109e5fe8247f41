package app

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"secretwheel/internal/config"
	"secretwheel/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWheelConfig() config.WheelConfig {
	return config.WheelConfig{
		MinRotations:   2,
		MaxRotations:   4,
		SpinDuration:   4 * time.Second,
		Seed:           42,
		MaxSegments:    64,
		MaxLabelLength: 80,
		HistorySize:    20,
		RoomCodeLength: 6,
		StaleTimeout:   time.Hour,
	}
}

// fakeClient records every wheel event it is sent.
type fakeClient struct {
	id     string
	mu     sync.Mutex
	events []*domain.WheelEvent
	closed bool
}

func newFakeClient(id string) *fakeClient {
	return &fakeClient{id: id}
}

func (c *fakeClient) Send(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if event, ok := message.(*domain.WheelEvent); ok {
		c.events = append(c.events, event)
	}
	return nil
}

func (c *fakeClient) GetClientID() string {
	return c.id
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) eventsOfType(t domain.EventType) []*domain.WheelEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []*domain.WheelEvent
	for _, e := range c.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
