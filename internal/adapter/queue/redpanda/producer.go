// Package redpanda publishes match events to Redpanda/Kafka.
package redpanda

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

const (
	// DefaultTopic receives match.created events.
	DefaultTopic = "match-events"
	// EventMatchCreated is the event type header value.
	EventMatchCreated = "match.created"
	// deliveryTimeout fails records a down broker cannot accept.
	deliveryTimeout = 5 * time.Second
)

// MatchCreatedEvent is the JSON payload of a match.created record.
type MatchCreatedEvent struct {
	Event     string    `json:"event"`
	MatchID   int64     `json:"match_id"`
	ResumeID  int64     `json:"resume_id"`
	JobID     int64     `json:"job_id"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

type syncProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// MatchEventProducer implements domain.MatchEventPublisher.
type MatchEventProducer struct {
	client syncProducer
	closer func()
	topic  string
}

// NewMatchEventProducer connects to brokers and ensures the topic exists.
func NewMatchEventProducer(ctx context.Context, brokers []string, topic string) (*MatchEventProducer, error) {
	slog.Info("creating redpanda producer", slog.Any("brokers", brokers), slog.String("topic", topic))
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=redpanda.new_producer: no seed brokers provided")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	tracing := kotel.NewKotel(kotel.WithTracer(kotel.NewTracer(
		kotel.TracerProvider(otel.GetTracerProvider()),
	)))
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.WithHooks(tracing.Hooks()...),
		kgo.RequestRetries(10),
		kgo.ProducerBatchMaxBytes(1000000),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordDeliveryTimeout(deliveryTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.new_producer: %w", err)
	}
	spec := topicSpec{Name: topic, Partitions: 1, Replication: 1, Retention: matchEventsRetention}
	if err := ensureTopic(ctx, client, spec); err != nil {
		slog.Warn("match events topic not ensured", slog.String("topic", topic), slog.Any("error", err))
	}
	return &MatchEventProducer{client: client, closer: client.Close, topic: topic}, nil
}

func newWithClient(client syncProducer, topic string) *MatchEventProducer {
	return &MatchEventProducer{client: client, closer: func() {}, topic: topic}
}

// PublishMatchCreated produces one record keyed by the (resume, job) pair.
func (p *MatchEventProducer) PublishMatchCreated(ctx domain.Context, m domain.MatchRecord) error {
	b, err := json.Marshal(MatchCreatedEvent{
		Event:     EventMatchCreated,
		MatchID:   m.ID,
		ResumeID:  m.ResumeID,
		JobID:     m.JobID,
		Score:     m.Score,
		CreatedAt: m.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("op=redpanda.publish: marshal: %w", err)
	}
	if err := validateMatchCreated(b); err != nil {
		return fmt.Errorf("op=redpanda.publish: %w: %w", domain.ErrInvalidArgument, err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(strconv.FormatInt(m.ResumeID, 10) + ":" + strconv.FormatInt(m.JobID, 10)),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "event", Value: []byte(EventMatchCreated)},
			{Key: "match_id", Value: []byte(strconv.FormatInt(m.ID, 10))},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("op=redpanda.publish: %w: %w", domain.ErrDependency, err)
	}
	slog.Debug("match event published", slog.Int64("match_id", m.ID), slog.String("topic", p.topic))
	return nil
}

// Close flushes nothing and closes the client.
func (p *MatchEventProducer) Close() { p.closer() }

// NoopPublisher drops events; used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishMatchCreated(domain.Context, domain.MatchRecord) error { return nil }
