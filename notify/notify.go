/*Package notify carries resource mutation events to interested parties:
into the log for operators and onto a Kafka topic for downstream
consumers. Notifications are fire-and-forget; a failed delivery never
fails the request that caused it.
*/
package notify

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/bfp-echague/firetrack/core"
	"github.com/bfp-echague/firetrack/core/logger"
)

// LogNotifier writes every mutation to the log.
type LogNotifier struct{}

// Notify implements core.Notifier.
func (LogNotifier) Notify(resource string, operation core.Operation, payload []byte) {
	logger.Default().WithField("resource", resource).
		WithField("operation", string(operation)).
		Debugln("notification:", string(payload))
}

const kafkaWriteTimeout = 10 * time.Second

// KafkaNotifier publishes mutation events to a Kafka topic, keyed by
// resource and operation so consumers can partition on them.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier creates a notifier writing to the given brokers and topic.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Notify implements core.Notifier. Delivery happens off the request path.
func (n *KafkaNotifier) Notify(resource string, operation core.Operation, payload []byte) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), kafkaWriteTimeout)
		defer cancel()
		err := n.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(resource + "." + string(operation)),
			Value: payload,
		})
		if err != nil {
			logger.Default().WithError(err).Warning("cannot publish notification")
		}
	}()
}

// Close flushes and closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
