// Package kafkasink relays delivered NATS messages onto a Kafka or
// Redpanda topic.
package kafkasink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lumadb/natsio/pkg/client"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// Event is the JSON envelope produced onto the relay topic for every
// delivered message.
type Event struct {
	Subject   string    `json:"subject"`
	ReplyTo   string    `json:"reply_to,omitempty"`
	Payload   []byte    `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Relay forwards every message delivered to a subscription onto a
// Kafka/Redpanda topic.
type Relay struct {
	logger *zap.Logger
	topic  string
	client *kgo.Client
}

// NewRelay dials brokers and returns a Relay that will produce onto
// topic. The caller is responsible for subscribing and calling Run.
func NewRelay(logger *zap.Logger, brokers []string, topic string) (*Relay, error) {
	cl, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	if err != nil {
		return nil, err
	}
	return &Relay{logger: logger, topic: topic, client: cl}, nil
}

// Run pulls messages from sub until it is closed or the connection is
// lost, producing each one synchronously onto the relay topic. It
// blocks; call it from its own goroutine.
func (r *Relay) Run(ctx context.Context, sub *client.Subscriber) {
	for {
		msg, ok := sub.Next()
		if !ok {
			r.logger.Info("relay subscription ended", zap.String("sid", sub.SID()))
			return
		}

		event := Event{
			Subject:   msg.Subject,
			ReplyTo:   msg.ReplyTo,
			Payload:   msg.Payload,
			Timestamp: time.Now(),
		}
		val, err := json.Marshal(event)
		if err != nil {
			r.logger.Error("failed to marshal relay event", zap.Error(err))
			continue
		}

		record := &kgo.Record{
			Topic: r.topic,
			Key:   []byte(msg.Subject),
			Value: val,
		}
		if err := r.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			r.logger.Error("failed to produce relay event", zap.String("topic", r.topic), zap.Error(err))
		}
	}
}

// Close releases the underlying Kafka client.
func (r *Relay) Close() {
	r.client.Close()
}
