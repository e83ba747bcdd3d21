package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"recommend-service/metrics"
	"recommend-service/model"
)

const (
	SubjectRecommendationServed = "recommend.served"
	SubjectDiagnosticsRun       = "recommend.diagnostics"
)

// Publisher emits service events to NATS. A nil or disconnected publisher is
// safe to call and does nothing, so event publishing stays optional at
// runtime.
type Publisher struct {
	conn *nats.Conn
}

// NewPublisher connects to NATS. An empty URL disables publishing entirely.
func NewPublisher(url string) *Publisher {
	if url == "" {
		log.Println("NATS_URL not set, event publishing disabled")
		return &Publisher{}
	}

	nc, err := nats.Connect(url)
	if err != nil {
		log.Printf("NATS connection failed, event publishing disabled: %v", err)
		return &Publisher{}
	}

	log.Printf("Connected to NATS at %s", url)
	return &Publisher{conn: nc}
}

func (p *Publisher) Close() {
	if p != nil && p.conn != nil {
		p.conn.Close()
	}
}

// RecommendationEvent describes one served recommendation response.
type RecommendationEvent struct {
	UserID    string       `json:"user_id"`
	Source    model.Origin `json:"source"`
	Stale     bool         `json:"stale"`
	Count     int          `json:"count"`
	Timestamp time.Time    `json:"timestamp"`
}

func (p *Publisher) PublishRecommendation(ev RecommendationEvent) {
	ev.Timestamp = time.Now()
	p.publish(SubjectRecommendationServed, ev)
}

func (p *Publisher) PublishDiagnostics(report model.DiagnosticsReport) {
	p.publish(SubjectDiagnosticsRun, report)
}

func (p *Publisher) publish(subject string, payload interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal event for %s: %v", subject, err)
		metrics.NatsMessagesPublished.WithLabelValues(subject, "error").Inc()
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		log.Printf("Failed to publish event to %s: %v", subject, err)
		metrics.NatsMessagesPublished.WithLabelValues(subject, "error").Inc()
		return
	}
	metrics.NatsMessagesPublished.WithLabelValues(subject, "ok").Inc()
}
