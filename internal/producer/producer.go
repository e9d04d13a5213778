package producer

import (
	"context"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
)

// Producer publishes a payload to a broker destination and returns the
// message key the broker client assigned to it.
// Mocking this interface in tests gives full control over broker behaviour
// without a running Kafka cluster.
type Producer interface {
	Publish(ctx context.Context, destination domain.Destination, payload any) (string, error)
}
