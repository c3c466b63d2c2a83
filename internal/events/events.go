// Package events publishes domain events for downstream consumers
// (notifications, billing sync). Publishing is best effort.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/edvin/buildcrm/internal/platform"
)

const streamName = "BUILDCRM"

// Subjects.
const (
	ModuleRequestCreated = "buildcrm.module_request.created"
	ModuleRequestDecided = "buildcrm.module_request.decided"
	LeadReceived         = "buildcrm.lead.received"
	TenantRegistered     = "buildcrm.tenant.registered"
	TenantStatusChanged  = "buildcrm.tenant.status_changed"
	TenantPlanChanged    = "buildcrm.tenant.plan_changed"
)

// Envelope is the JSON document written for every event.
type Envelope struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Publisher sends domain events.
type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
	Close() error
}

// NATSPublisher writes events to a JetStream stream.
type NATSPublisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// Connect establishes a connection to NATS and ensures the stream exists.
func Connect(ctx context.Context, url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("buildcrm-api"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"buildcrm.>"},
		MaxAge:   7 * 24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}

	return &NATSPublisher{nc: nc, js: js}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, data any) error {
	payload, err := Encode(subject, data)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}

// Encode wraps data in an Envelope and marshals it.
func Encode(subject string, data any) ([]byte, error) {
	payload, err := json.Marshal(Envelope{
		ID:         platform.NewID(),
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", subject, err)
	}
	return payload, nil
}

// Nop discards every event. Used when NATS_URL is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }
