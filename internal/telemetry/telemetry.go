// Package telemetry sends anonymous usage events to PostHog. A nil
// *Client is valid and drops every event, so callers never need to
// guard their Capture calls.
package telemetry

import (
	"time"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
)

const defaultEndpoint = "https://us.i.posthog.com"

// APIKey is injected at build time via ldflags. When empty (local
// builds), telemetry is disabled.
var APIKey = ""

// Client wraps a PostHog client behind a nil-safe surface.
type Client struct {
	client     posthog.Client
	distinctID string
}

// New returns a telemetry client, or nil when telemetry is disabled or
// no API key was compiled in. Errors are swallowed: analytics must
// never break the program.
func New(disabled bool) *Client {
	if disabled || APIKey == "" {
		return nil
	}
	ph, err := posthog.NewWithConfig(APIKey, posthog.Config{Endpoint: defaultEndpoint})
	if err != nil {
		return nil
	}
	return &Client{client: ph, distinctID: uuid.NewString()}
}

// Capture enqueues an event. Safe on a nil receiver.
func (c *Client) Capture(event string, properties map[string]interface{}) {
	if c == nil || c.client == nil {
		return
	}
	props := posthog.NewProperties()
	for key, value := range properties {
		props = props.Set(key, value)
	}
	_ = c.client.Enqueue(posthog.Capture{
		DistinctId: c.distinctID,
		Event:      event,
		Properties: props,
		Timestamp:  time.Now(),
	})
}

// Close flushes buffered events. Safe on a nil receiver.
func (c *Client) Close() {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Close()
}
