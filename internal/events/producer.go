// Package events publishes domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TopicUsers  = "user_events"
	TopicLists  = "list_events"
	TopicMovies = "movie_events"
)

const (
	TypeUserRegistered  = "user_registered"
	TypeRoleChanged     = "role_changed"
	TypeListItemAdded   = "list_item_added"
	TypeListItemRemoved = "list_item_removed"
	TypeMovieCreated    = "movie_created"
)

type Event struct {
	Type     string    `json:"type"`
	Username string    `json:"username,omitempty"`
	Role     string    `json:"role,omitempty"`
	List     string    `json:"list,omitempty"`
	MovieID  int64     `json:"movie_id,omitempty"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, ev Event) error
}

// Nop discards events. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, Event) error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	w       messageWriter
	timeout time.Duration
}

func NewProducer(brokers []string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &Producer{w: w, timeout: 5 * time.Second}, nil
}

// Publish writes ev to topic keyed by key, so events of one user stay on
// one partition in order.
func (p *Producer) Publish(ctx context.Context, topic, key string, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.w.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  ev.At,
	}); err != nil {
		return fmt.Errorf("kafka: write to %s failed: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.w.Close()
}
