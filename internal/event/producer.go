package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	pkgkafka "github.com/ckcelina/my-wishlist-sub005/pkg/kafka"
)

// Kafka topic constants for wishlist domain events.
const (
	TopicPriceDrop           = "wishwell.price.drop"
	TopicPriceUnderTarget    = "wishwell.price.under_target"
	TopicReservationCreated  = "wishwell.reservation.created"
	TopicReservationReleased = "wishwell.reservation.released"
)

// Aggregate type constants.
const (
	AggregateTypeItem        = "wishlist_item"
	AggregateTypeReservation = "reservation"
)

// Source identifier for events originating from this service.
const SourceWishlistService = "wishlist-service"

// PriceDropData is the payload for a price.drop event.
type PriceDropData struct {
	ItemID        string  `json:"item_id"`
	Title         string  `json:"title"`
	OldPriceCents int64   `json:"old_price_cents"`
	NewPriceCents int64   `json:"new_price_cents"`
	Currency      string  `json:"currency"`
	PctChange     float64 `json:"pct_change"`
}

// PriceUnderTargetData is the payload for a price.under_target event.
type PriceUnderTargetData struct {
	ItemID      string `json:"item_id"`
	Title       string `json:"title"`
	PriceCents  int64  `json:"price_cents"`
	TargetCents int64  `json:"target_cents"`
	Currency    string `json:"currency"`
}

// ReservationData is the payload for reservation.created and
// reservation.released events.
type ReservationData struct {
	ReservationID    string `json:"reservation_id,omitempty"`
	SharedWishlistID string `json:"shared_wishlist_id"`
	ItemID           string `json:"item_id"`
	ReservedByName   string `json:"reserved_by_name,omitempty"`
}

// Producer publishes wishlist domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the wishlist service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishPriceDrop publishes a price.drop event.
func (p *Producer) PublishPriceDrop(ctx context.Context, drop *domain.DropEvent) error {
	data := PriceDropData{
		ItemID:        drop.ItemID,
		Title:         drop.Title,
		OldPriceCents: drop.OldPriceCents,
		NewPriceCents: drop.NewPriceCents,
		Currency:      drop.Currency,
		PctChange:     drop.PctChange,
	}

	event, err := pkgkafka.NewEvent(TopicPriceDrop, drop.ItemID, AggregateTypeItem, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create price.drop event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicPriceDrop, event); err != nil {
		return fmt.Errorf("publish price.drop event: %w", err)
	}

	p.logger.DebugContext(ctx, "published price.drop event",
		slog.String("item_id", drop.ItemID),
		slog.Int64("old_price_cents", drop.OldPriceCents),
		slog.Int64("new_price_cents", drop.NewPriceCents),
	)

	return nil
}

// PublishPriceUnderTarget publishes a price.under_target event.
func (p *Producer) PublishPriceUnderTarget(ctx context.Context, itemID, title string, priceCents, targetCents int64, currency string) error {
	data := PriceUnderTargetData{
		ItemID:      itemID,
		Title:       title,
		PriceCents:  priceCents,
		TargetCents: targetCents,
		Currency:    currency,
	}

	event, err := pkgkafka.NewEvent(TopicPriceUnderTarget, itemID, AggregateTypeItem, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create price.under_target event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicPriceUnderTarget, event); err != nil {
		return fmt.Errorf("publish price.under_target event: %w", err)
	}

	p.logger.DebugContext(ctx, "published price.under_target event",
		slog.String("item_id", itemID),
		slog.Int64("price_cents", priceCents),
		slog.Int64("target_cents", targetCents),
	)

	return nil
}

// PublishReservationCreated publishes a reservation.created event.
func (p *Producer) PublishReservationCreated(ctx context.Context, res *domain.Reservation) error {
	data := ReservationData{
		ReservationID:    res.ID,
		SharedWishlistID: res.SharedWishlistID,
		ItemID:           res.ItemID,
		ReservedByName:   res.ReservedByName,
	}

	event, err := pkgkafka.NewEvent(TopicReservationCreated, res.ItemID, AggregateTypeReservation, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create reservation.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReservationCreated, event); err != nil {
		return fmt.Errorf("publish reservation.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published reservation.created event",
		slog.String("item_id", res.ItemID),
	)

	return nil
}

// PublishReservationReleased publishes a reservation.released event.
func (p *Producer) PublishReservationReleased(ctx context.Context, sharedWishlistID, itemID string) error {
	data := ReservationData{
		SharedWishlistID: sharedWishlistID,
		ItemID:           itemID,
	}

	event, err := pkgkafka.NewEvent(TopicReservationReleased, itemID, AggregateTypeReservation, SourceWishlistService, data)
	if err != nil {
		return fmt.Errorf("create reservation.released event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReservationReleased, event); err != nil {
		return fmt.Errorf("publish reservation.released event: %w", err)
	}

	p.logger.DebugContext(ctx, "published reservation.released event",
		slog.String("item_id", itemID),
	)

	return nil
}
