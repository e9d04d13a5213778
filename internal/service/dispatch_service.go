package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notifyhub/ms-notification-kafka/internal/domain"
	"github.com/notifyhub/ms-notification-kafka/internal/producer"
	"github.com/notifyhub/ms-notification-kafka/internal/repository"
)

// ServiceName is reported verbatim by the status endpoint.
const ServiceName = "ms_notification"

// Broadcaster fans successful dispatches out to server-push listeners.
type Broadcaster interface {
	Broadcast(ev domain.StreamEvent)
	Count() int
}

// Limiter decides whether a publish to a destination may proceed.
type Limiter interface {
	Allow(d domain.Destination) bool
}

// Hooks carries the metric callback functions injected by main.
type Hooks struct {
	OnQueued func(d domain.Destination, latency time.Duration)
	OnFailed func(d domain.Destination, reason string)
}

// DispatchService is the dispatch gateway. Every operation forwards its
// payload unchanged to the producer under a fixed destination label and
// makes exactly one publish attempt; there is no retry.
type DispatchService struct {
	prod    producer.Producer
	ledger  repository.DispatchRepository
	hub     Broadcaster
	limiter Limiter
	hooks   Hooks
	logger  *zap.Logger
	now     func() time.Time
}

func NewDispatchService(
	prod producer.Producer,
	ledger repository.DispatchRepository,
	hub Broadcaster,
	limiter Limiter,
	logger *zap.Logger,
	hooks Hooks,
) *DispatchService {
	if hooks.OnQueued == nil {
		hooks.OnQueued = func(domain.Destination, time.Duration) {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func(domain.Destination, string) {}
	}
	return &DispatchService{
		prod:    prod,
		ledger:  ledger,
		hub:     hub,
		limiter: limiter,
		hooks:   hooks,
		logger:  logger,
		now:     time.Now,
	}
}

// PublishSimple forwards a plain text message to notification.test.
func (s *DispatchService) PublishSimple(ctx context.Context, message string) (*domain.Receipt, error) {
	r, err := s.publish(ctx, domain.DestinationTest, message, "")
	if err != nil {
		return nil, err
	}
	r.Payload = message
	return r, nil
}

// PublishCreated forwards a notification event to notification.created.
func (s *DispatchService) PublishCreated(ctx context.Context, ev domain.NotificationEvent) (*domain.Receipt, error) {
	return s.publish(ctx, domain.DestinationCreated, ev, ev.ID)
}

// PublishUpdated forwards a notification event to notification.updated.
func (s *DispatchService) PublishUpdated(ctx context.Context, ev domain.NotificationEvent) (*domain.Receipt, error) {
	return s.publish(ctx, domain.DestinationUpdated, ev, ev.ID)
}

// PublishDeleted publishes the bare identifier to notification.deleted.
func (s *DispatchService) PublishDeleted(ctx context.Context, id domain.NotificationID) (*domain.Receipt, error) {
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	return s.publish(ctx, domain.DestinationDeleted, id, id)
}

// Status reports the static gateway snapshot.
func (s *DispatchService) Status() domain.StatusSnapshot {
	return domain.StatusSnapshot{
		Service:             ServiceName,
		KafkaUtilityEnabled: true,
		SSEClientsCount:     s.hub.Count(),
		Timestamp:           s.now().UnixMilli(),
	}
}

func (s *DispatchService) GetDispatch(ctx context.Context, messageKey string) (*domain.Dispatch, error) {
	return s.ledger.GetByMessageKey(ctx, messageKey)
}

func (s *DispatchService) ListDispatches(ctx context.Context, filter domain.DispatchFilter) ([]*domain.Dispatch, int, error) {
	return s.ledger.List(ctx, filter)
}

// ---- private helpers ----

func (s *DispatchService) publish(
	ctx context.Context,
	dest domain.Destination,
	payload any,
	id domain.NotificationID,
) (*domain.Receipt, error) {
	if !s.limiter.Allow(dest) {
		s.fail(ctx, dest, id, domain.ErrRateLimited)
		return nil, domain.ErrRateLimited
	}

	start := s.now()
	key, err := s.prod.Publish(ctx, dest, payload)
	if err == nil && key == "" {
		err = domain.ErrNoKey
	}
	if err != nil {
		s.fail(ctx, dest, id, err)
		return nil, err
	}

	s.hooks.OnQueued(dest, s.now().Sub(start))
	s.record(ctx, dest, key, id, domain.OutcomeQueued, nil)

	ev := domain.StreamEvent{
		Destination: dest,
		MessageKey:  key,
		Timestamp:   s.now().UnixMilli(),
	}
	if id != "" {
		ev.NotificationID = string(id)
	}
	s.hub.Broadcast(ev)

	return &domain.Receipt{Destination: dest, MessageKey: key, NotificationID: id}, nil
}

func (s *DispatchService) fail(ctx context.Context, dest domain.Destination, id domain.NotificationID, err error) {
	s.hooks.OnFailed(dest, FailureReason(err))
	s.record(ctx, dest, "", id, domain.OutcomeFailed, err)
}

// record writes a ledger entry. Ledger failures are logged and never change
// the outcome reported to the caller.
func (s *DispatchService) record(
	ctx context.Context,
	dest domain.Destination,
	key string,
	id domain.NotificationID,
	outcome domain.Outcome,
	cause error,
) {
	d := &domain.Dispatch{
		ID:          uuid.New().String(),
		Destination: dest,
		Outcome:     outcome,
		CreatedAt:   s.now().UTC(),
	}
	if key != "" {
		d.MessageKey = &key
	}
	if id != "" {
		nid := string(id)
		d.NotificationID = &nid
	}
	if cause != nil {
		msg := cause.Error()
		d.ErrorMessage = &msg
	}

	if err := s.ledger.Record(ctx, d); err != nil {
		s.logger.Warn("failed to record dispatch",
			zap.String("destination", string(dest)),
			zap.String("outcome", string(outcome)),
			zap.Error(fmt.Errorf("ledger: %w", err)),
		)
	}
}

// FailureReason is a short label for a publish error, used for metrics.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrBrokerUnavailable):
		return "broker_unavailable"
	case errors.Is(err, domain.ErrSerialization):
		return "serialization"
	case errors.Is(err, domain.ErrRejected):
		return "rejected"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrNoKey):
		return "no_key"
	default:
		return "unknown"
	}
}
