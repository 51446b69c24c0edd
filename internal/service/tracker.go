package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	"github.com/ckcelina/my-wishlist-sub005/internal/event"
	"github.com/ckcelina/my-wishlist-sub005/internal/extractor"
	"github.com/ckcelina/my-wishlist-sub005/internal/notifier"
	"github.com/ckcelina/my-wishlist-sub005/internal/repository"
	apperrors "github.com/ckcelina/my-wishlist-sub005/pkg/errors"
)

// AlertNotifier is the policy gate the tracker hands detected signals to.
// AlertService satisfies this.
type AlertNotifier interface {
	NotifyDrop(ctx context.Context, userID string, drop *domain.DropEvent) (bool, error)
	NotifyUnderTarget(ctx context.Context, userID string, info *notifier.UnderTargetInfo) (bool, error)
}

// TrackerService refreshes item prices, maintains the price ledger and
// detects drops and target crossings.
type TrackerService struct {
	items       repository.ItemRepository
	history     repository.PriceHistoryRepository
	extractor   extractor.Extractor
	producer    *event.Producer
	alerts      AlertNotifier
	logger      *slog.Logger
	concurrency int
	itemTimeout time.Duration
	now         func() time.Time
}

// NewTrackerService creates a new price tracker service. concurrency bounds
// how many items are refreshed in parallel; itemTimeout caps each extraction.
func NewTrackerService(
	items repository.ItemRepository,
	history repository.PriceHistoryRepository,
	ext extractor.Extractor,
	producer *event.Producer,
	alerts AlertNotifier,
	logger *slog.Logger,
	concurrency int,
	itemTimeout time.Duration,
) *TrackerService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &TrackerService{
		items:       items,
		history:     history,
		extractor:   ext,
		producer:    producer,
		alerts:      alerts,
		logger:      logger,
		concurrency: concurrency,
		itemTimeout: itemTimeout,
		now:         time.Now,
	}
}

// RefreshSummary aggregates the outcome of a wishlist refresh.
type RefreshSummary struct {
	WishlistID string             `json:"wishlist_id"`
	Checked    int                `json:"checked"`
	Updated    int                `json:"updated"`
	Unchanged  int                `json:"unchanged"`
	Drops      int                `json:"drops"`
	Failed     int                `json:"failed"`
	DropEvents []domain.DropEvent `json:"drop_events"`
}

// RefreshWishlist re-checks the price of every trackable item on the
// wishlist. Items are refreshed concurrently up to the configured bound;
// a failure on one item never aborts the others.
func (s *TrackerService) RefreshWishlist(ctx context.Context, userID, wishlistID string) (*RefreshSummary, error) {
	wishlist, err := s.items.GetWishlist(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	if wishlist.OwnerID != userID {
		// Foreign wishlists are reported as missing, not forbidden.
		return nil, apperrors.NotFound("wishlist", wishlistID)
	}

	items, err := s.items.ListTrackable(ctx, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("list trackable items: %w", err)
	}

	summary := &RefreshSummary{WishlistID: wishlistID, Checked: len(items), DropEvents: []domain.DropEvent{}}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.concurrency)
	)

	for i := range items {
		item := items[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			outcome, drop := s.refreshItem(ctx, userID, &item)

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeUpdated:
				summary.Updated++
			case outcomeUnchanged, outcomeNoPrice:
				summary.Unchanged++
			case outcomeFailed:
				summary.Failed++
			case outcomeDrop:
				summary.Updated++
				summary.Drops++
				if drop != nil {
					summary.DropEvents = append(summary.DropEvents, *drop)
				}
			}
		}()
	}

	wg.Wait()

	s.logger.InfoContext(ctx, "wishlist refresh complete",
		slog.String("wishlist_id", wishlistID),
		slog.Int("checked", summary.Checked),
		slog.Int("updated", summary.Updated),
		slog.Int("drops", summary.Drops),
		slog.Int("failed", summary.Failed),
	)

	return summary, nil
}

// outcomeDrop is internal to the tracker: an update that was also a drop.
const outcomeDrop = "drop"

// refreshItem re-checks a single item and returns the outcome label plus the
// drop event when the check detected one.
func (s *TrackerService) refreshItem(ctx context.Context, userID string, item *domain.WishlistItem) (string, *domain.DropEvent) {
	extractCtx := ctx
	if s.itemTimeout > 0 {
		var cancel context.CancelFunc
		extractCtx, cancel = context.WithTimeout(ctx, s.itemTimeout)
		defer cancel()
	}

	result, err := s.extractor.Extract(extractCtx, *item.SourceURL)
	now := s.now().UTC()
	if err != nil {
		s.logger.WarnContext(ctx, "price extraction failed",
			slog.String("item_id", item.ID),
			slog.Any("error", err),
		)
		// A failed check still counts as a check; price and history stay put.
		if touchErr := s.items.TouchChecked(ctx, item.ID, now); touchErr != nil {
			s.logger.WarnContext(ctx, "touch checked failed", slog.String("item_id", item.ID), slog.Any("error", touchErr))
		}
		itemsRefreshedTotal.WithLabelValues(outcomeFailed).Inc()
		return outcomeFailed, nil
	}

	if result.PriceCents == nil {
		// Page reachable but no price found: record the check, keep the old price.
		if err := s.items.TouchChecked(ctx, item.ID, now); err != nil {
			s.logger.WarnContext(ctx, "touch checked failed", slog.String("item_id", item.ID), slog.Any("error", err))
		}
		itemsRefreshedTotal.WithLabelValues(outcomeNoPrice).Inc()
		return outcomeNoPrice, nil
	}

	newPrice := *result.PriceCents
	currency := result.Currency
	if currency == "" && item.Currency != nil {
		currency = *item.Currency
	}

	// Unchanged price: no ledger append, no update, no events.
	if item.CurrentPriceCents != nil && *item.CurrentPriceCents == newPrice &&
		item.Currency != nil && *item.Currency == currency {
		if err := s.items.TouchChecked(ctx, item.ID, now); err != nil {
			s.logger.WarnContext(ctx, "touch checked failed", slog.String("item_id", item.ID), slog.Any("error", err))
		}
		itemsRefreshedTotal.WithLabelValues(outcomeUnchanged).Inc()
		return outcomeUnchanged, nil
	}

	drop := domain.EvaluateDrop(item.CurrentPriceCents, newPrice)

	if err := s.items.UpdatePrice(ctx, item.ID, newPrice, currency, now); err != nil {
		s.logger.ErrorContext(ctx, "update item price failed", slog.String("item_id", item.ID), slog.Any("error", err))
		itemsRefreshedTotal.WithLabelValues(outcomeFailed).Inc()
		return outcomeFailed, nil
	}

	record := &domain.PriceRecord{
		ID:         uuid.NewString(),
		ItemID:     item.ID,
		PriceCents: newPrice,
		Currency:   currency,
		RecordedAt: now,
	}
	if err := s.history.Append(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "append price record failed", slog.String("item_id", item.ID), slog.Any("error", err))
	}

	outcome := outcomeUpdated
	var dropEvent *domain.DropEvent
	if drop.IsDrop {
		outcome = outcomeDrop
		priceDropsDetectedTotal.Inc()
		dropEvent = s.handleDrop(ctx, userID, item, newPrice, currency, drop)
	}

	s.handleTargetCrossing(ctx, userID, item, newPrice, currency)

	itemsRefreshedTotal.WithLabelValues(outcomeUpdated).Inc()
	return outcome, dropEvent
}

// handleDrop publishes the drop event and hands it to the alert policy.
// Both are best-effort; delivery failures never fail the refresh.
func (s *TrackerService) handleDrop(ctx context.Context, userID string, item *domain.WishlistItem, newPrice int64, currency string, drop domain.DropResult) *domain.DropEvent {
	dropEvent := &domain.DropEvent{
		ItemID:        item.ID,
		Title:         item.Title,
		OldPriceCents: *item.CurrentPriceCents,
		NewPriceCents: newPrice,
		Currency:      currency,
		PctChange:     drop.PctChange,
	}

	if err := s.producer.PublishPriceDrop(ctx, dropEvent); err != nil {
		s.logger.WarnContext(ctx, "publish price drop failed", slog.String("item_id", item.ID), slog.Any("error", err))
	}

	if _, err := s.alerts.NotifyDrop(ctx, userID, dropEvent); err != nil {
		s.logger.WarnContext(ctx, "price drop alert failed", slog.String("item_id", item.ID), slog.Any("error", err))
	}

	return dropEvent
}

// handleTargetCrossing fires an under-target alert once per downward crossing
// and re-arms it when the price climbs back above the target.
func (s *TrackerService) handleTargetCrossing(ctx context.Context, userID string, item *domain.WishlistItem, newPrice int64, currency string) {
	if !item.AlertEnabled || item.AlertTargetCents == nil {
		return
	}

	target := *item.AlertTargetCents

	if newPrice > target {
		if item.LastTargetAlertCents != nil {
			if err := s.items.SetLastTargetAlert(ctx, item.ID, nil); err != nil {
				s.logger.WarnContext(ctx, "clear target alert marker failed", slog.String("item_id", item.ID), slog.Any("error", err))
			}
		}
		return
	}

	// At or under target. Alert only on the crossing, not on every check.
	if item.LastTargetAlertCents != nil {
		return
	}

	info := &notifier.UnderTargetInfo{
		ItemID:      item.ID,
		Title:       item.Title,
		PriceCents:  newPrice,
		TargetCents: target,
		Currency:    currency,
	}

	sent, err := s.alerts.NotifyUnderTarget(ctx, userID, info)
	if err != nil {
		s.logger.WarnContext(ctx, "under-target alert failed", slog.String("item_id", item.ID), slog.Any("error", err))
	}

	if err := s.producer.PublishPriceUnderTarget(ctx, item.ID, item.Title, newPrice, target, currency); err != nil {
		s.logger.WarnContext(ctx, "publish under-target event failed", slog.String("item_id", item.ID), slog.Any("error", err))
	}

	// The marker arms only when the alert actually went out. A crossing that
	// was suppressed or failed to deliver stays eligible on the next check.
	if !sent {
		return
	}

	if err := s.items.SetLastTargetAlert(ctx, item.ID, &newPrice); err != nil {
		s.logger.WarnContext(ctx, "set target alert marker failed", slog.String("item_id", item.ID), slog.Any("error", err))
	}
}

// ItemPriceHistory is the ledger view of a single item.
type ItemPriceHistory struct {
	Item           *domain.WishlistItem `json:"item"`
	Records        []domain.PriceRecord `json:"records"`
	Total          int                  `json:"total"`
	DropSinceFirst *domain.DropResult   `json:"drop_since_first,omitempty"`
}

// PriceHistory returns an item's price records, newest first, along with the
// change relative to the earliest observation.
func (s *TrackerService) PriceHistory(ctx context.Context, userID, itemID string, page, perPage int) (*ItemPriceHistory, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	records, total, err := s.history.List(ctx, itemID, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}

	out := &ItemPriceHistory{Item: item, Records: records, Total: total}

	if item.CurrentPriceCents != nil {
		oldest, err := s.history.Oldest(ctx, itemID)
		switch {
		case err == nil && oldest.PriceCents != *item.CurrentPriceCents:
			drop := domain.EvaluateDrop(&oldest.PriceCents, *item.CurrentPriceCents)
			out.DropSinceFirst = &drop
		case err != nil && !errors.Is(err, apperrors.ErrNotFound):
			return nil, fmt.Errorf("load oldest price record: %w", err)
		}
	}

	return out, nil
}

// ItemDropInfo summarizes how an item's current price compares to its first
// observed price.
type ItemDropInfo struct {
	ItemID             string  `json:"item_id"`
	Title              string  `json:"title"`
	Currency           *string `json:"currency,omitempty"`
	CurrentPriceCents  *int64  `json:"current_price_cents,omitempty"`
	FirstObservedCents *int64  `json:"first_observed_cents,omitempty"`
	FirstObservedAt    *string `json:"first_observed_at,omitempty"`
	IsDrop             bool    `json:"is_drop"`
	PctChange          float64 `json:"pct_change"`
	AlertTargetCents   *int64  `json:"alert_target_cents,omitempty"`
}

// DropInfo compares an item's current price against its earliest recorded
// observation. Items with no price history yet report no drop.
func (s *TrackerService) DropInfo(ctx context.Context, userID, itemID string) (*ItemDropInfo, error) {
	item, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	info := &ItemDropInfo{
		ItemID:            item.ID,
		Title:             item.Title,
		Currency:          item.Currency,
		CurrentPriceCents: item.CurrentPriceCents,
		AlertTargetCents:  item.AlertTargetCents,
	}

	if item.CurrentPriceCents == nil {
		return info, nil
	}

	oldest, err := s.history.Oldest(ctx, itemID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return info, nil
		}
		return nil, fmt.Errorf("load oldest price record: %w", err)
	}

	recordedAt := oldest.RecordedAt.Format(time.RFC3339)
	info.FirstObservedCents = &oldest.PriceCents
	info.FirstObservedAt = &recordedAt

	drop := domain.EvaluateDrop(&oldest.PriceCents, *item.CurrentPriceCents)
	info.IsDrop = drop.IsDrop
	info.PctChange = drop.PctChange

	return info, nil
}

// ownedItem loads an item and verifies it belongs to the user. Foreign items
// are reported as missing.
func (s *TrackerService) ownedItem(ctx context.Context, userID, itemID string) (*domain.WishlistItem, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	wishlist, err := s.items.GetWishlist(ctx, item.WishlistID)
	if err != nil {
		return nil, err
	}
	if wishlist.OwnerID != userID {
		return nil, apperrors.NotFound("item", itemID)
	}

	return item, nil
}
