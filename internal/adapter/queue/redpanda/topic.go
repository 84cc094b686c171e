package redpanda

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kmsg"
)

// matchEventsRetention bounds how long match.created records stay on the broker.
const matchEventsRetention = 7 * 24 * time.Hour

type requester interface {
	Request(ctx context.Context, req kmsg.Request) (kmsg.Response, error)
}

// topicSpec describes the match events topic as created on first connect.
type topicSpec struct {
	Name        string
	Partitions  int32
	Replication int16
	Retention   time.Duration
}

func (s topicSpec) validate() error {
	switch {
	case s.Name == "":
		return errors.New("topic name is empty")
	case s.Partitions <= 0:
		return fmt.Errorf("topic %s: partitions must be positive", s.Name)
	case s.Replication <= 0:
		return fmt.Errorf("topic %s: replication must be positive", s.Name)
	}
	return nil
}

func (s topicSpec) request() *kmsg.CreateTopicsRequest {
	t := kmsg.NewCreateTopicsRequestTopic()
	t.Topic = s.Name
	t.NumPartitions = s.Partitions
	t.ReplicationFactor = s.Replication
	if s.Retention > 0 {
		ms := strconv.FormatInt(s.Retention.Milliseconds(), 10)
		cfg := kmsg.NewCreateTopicsRequestTopicConfig()
		cfg.Name = "retention.ms"
		cfg.Value = &ms
		t.Configs = append(t.Configs, cfg)
	}
	req := kmsg.NewCreateTopicsRequest()
	req.TimeoutMillis = 30000
	req.Topics = append(req.Topics, t)
	return &req
}

// ensureTopic creates the topic described by spec. A topic that already
// exists counts as success.
func ensureTopic(ctx context.Context, client requester, spec topicSpec) error {
	if err := spec.validate(); err != nil {
		return fmt.Errorf("op=redpanda.ensure_topic: %w", err)
	}
	resp, err := client.Request(ctx, spec.request())
	if err != nil {
		return fmt.Errorf("op=redpanda.ensure_topic: %w", err)
	}
	created, ok := resp.(*kmsg.CreateTopicsResponse)
	if !ok {
		return fmt.Errorf("op=redpanda.ensure_topic: unexpected response %T", resp)
	}
	for _, t := range created.Topics {
		err := kerr.ErrorForCode(t.ErrorCode)
		switch {
		case err == nil:
			slog.Info("topic created", slog.String("topic", t.Topic), slog.Int("partitions", int(spec.Partitions)))
		case errors.Is(err, kerr.TopicAlreadyExists):
			slog.Debug("topic already exists", slog.String("topic", t.Topic))
		default:
			if t.ErrorMessage != nil {
				return fmt.Errorf("op=redpanda.ensure_topic: %s: %w: %s", t.Topic, err, *t.ErrorMessage)
			}
			return fmt.Errorf("op=redpanda.ensure_topic: %s: %w", t.Topic, err)
		}
	}
	return nil
}
