package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	pkgkafka "github.com/ckcelina/my-wishlist-sub005/pkg/kafka"
)

// TopicNotificationDispatch is consumed by the notification delivery worker.
const TopicNotificationDispatch = "wishwell.notification.dispatch"

const aggregateTypeNotification = "notification"

const sourceWishlistService = "wishlist-service"

// dispatchData is the payload of a notification.dispatch event.
type dispatchData struct {
	UserID string            `json:"user_id"`
	Kind   string            `json:"kind"`
	Drop   *domain.DropEvent `json:"drop,omitempty"`
	Target *UnderTargetInfo  `json:"target,omitempty"`
}

// KafkaNotifier delivers notifications by publishing dispatch events to Kafka.
type KafkaNotifier struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewKafkaNotifier creates a Kafka-backed notifier.
func NewKafkaNotifier(kafka *pkgkafka.Producer, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		kafka:  kafka,
		logger: logger,
	}
}

// NotifyPriceDrop publishes a price-drop notification dispatch.
func (n *KafkaNotifier) NotifyPriceDrop(ctx context.Context, userID string, drop *domain.DropEvent) error {
	return n.dispatch(ctx, userID, dispatchData{
		UserID: userID,
		Kind:   KindPriceDrop,
		Drop:   drop,
	})
}

// NotifyUnderTarget publishes an under-target notification dispatch.
func (n *KafkaNotifier) NotifyUnderTarget(ctx context.Context, userID string, info *UnderTargetInfo) error {
	return n.dispatch(ctx, userID, dispatchData{
		UserID: userID,
		Kind:   KindUnderTarget,
		Target: info,
	})
}

func (n *KafkaNotifier) dispatch(ctx context.Context, userID string, data dispatchData) error {
	event, err := pkgkafka.NewEvent(TopicNotificationDispatch, userID, aggregateTypeNotification, sourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create notification.dispatch event: %w", err)
	}

	if err := n.kafka.Publish(ctx, TopicNotificationDispatch, event); err != nil {
		return fmt.Errorf("publish notification.dispatch event: %w", err)
	}

	n.logger.DebugContext(ctx, "dispatched notification",
		slog.String("user_id", userID),
		slog.String("kind", data.Kind),
	)

	return nil
}
