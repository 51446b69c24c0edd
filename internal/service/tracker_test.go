package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	"github.com/ckcelina/my-wishlist-sub005/internal/extractor"
	apperrors "github.com/ckcelina/my-wishlist-sub005/pkg/errors"
)

func newTestTracker(items *mockItemRepository, history *mockHistoryRepository, ext *mockExtractor, alerts *mockAlertNotifier) *TrackerService {
	return NewTrackerService(items, history, ext, newTestProducer(), alerts, newTestLogger(), 2, time.Second)
}

func trackedItem(id string, priceCents *int64) domain.WishlistItem {
	return domain.WishlistItem{
		ID:                id,
		WishlistID:        "wl-001",
		Title:             "Headphones",
		SourceURL:         strPtr("https://shop.example/hp"),
		CurrentPriceCents: priceCents,
		Currency:          strPtr("USD"),
		AlertEnabled:      true,
		CreatedAt:         time.Now().UTC(),
	}
}

func ownWishlist() *domain.Wishlist {
	return &domain.Wishlist{ID: "wl-001", OwnerID: "user-001", Name: "Tech"}
}

// --- RefreshWishlist Tests ---

func TestRefreshWishlist_ForeignWishlist_ReportedAsMissing(t *testing.T) {
	items := new(mockItemRepository)
	svc := newTestTracker(items, new(mockHistoryRepository), new(mockExtractor), new(mockAlertNotifier))
	ctx := context.Background()

	items.On("GetWishlist", ctx, "wl-001").
		Return(&domain.Wishlist{ID: "wl-001", OwnerID: "someone-else"}, nil)

	summary, err := svc.RefreshWishlist(ctx, "user-001", "wl-001")

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	items.AssertNotCalled(t, "ListTrackable", mock.Anything, mock.Anything)
}

func TestRefreshWishlist_PriceDrop_UpdatesLedgerAndAlerts(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	ext := new(mockExtractor)
	alerts := new(mockAlertNotifier)
	svc := newTestTracker(items, history, ext, alerts)
	ctx := context.Background()

	item := trackedItem("item-1", centsPtr(19999))

	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	items.On("ListTrackable", ctx, "wl-001").Return([]domain.WishlistItem{item}, nil)
	ext.On("Extract", mock.Anything, "https://shop.example/hp").
		Return(&extractor.Result{PriceCents: centsPtr(14999), Currency: "USD"}, nil)
	items.On("UpdatePrice", mock.Anything, "item-1", int64(14999), "USD", mock.Anything).Return(nil)
	history.On("Append", mock.Anything, mock.AnythingOfType("*domain.PriceRecord")).Return(nil)
	alerts.On("NotifyDrop", mock.Anything, "user-001", mock.AnythingOfType("*domain.DropEvent")).Return(true, nil)

	summary, err := svc.RefreshWishlist(ctx, "user-001", "wl-001")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Checked)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Drops)
	assert.Zero(t, summary.Failed)

	require.Len(t, summary.DropEvents, 1)
	ev := summary.DropEvents[0]
	assert.Equal(t, "item-1", ev.ItemID)
	assert.Equal(t, "Headphones", ev.Title)
	assert.Equal(t, int64(19999), ev.OldPriceCents)
	assert.Equal(t, int64(14999), ev.NewPriceCents)
	assert.Equal(t, 25.0, ev.PctChange)

	alerts.AssertCalled(t, "NotifyDrop", mock.Anything, "user-001", mock.MatchedBy(func(d *domain.DropEvent) bool {
		return d.OldPriceCents == 19999 && d.NewPriceCents == 14999 && d.PctChange == 25.0
	}))
}

func TestRefreshWishlist_UnchangedPrice_NoLedgerAppend(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	ext := new(mockExtractor)
	svc := newTestTracker(items, history, ext, new(mockAlertNotifier))
	ctx := context.Background()

	item := trackedItem("item-1", centsPtr(19999))

	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	items.On("ListTrackable", ctx, "wl-001").Return([]domain.WishlistItem{item}, nil)
	ext.On("Extract", mock.Anything, "https://shop.example/hp").
		Return(&extractor.Result{PriceCents: centsPtr(19999), Currency: "USD"}, nil)
	items.On("TouchChecked", mock.Anything, "item-1", mock.Anything).Return(nil)

	summary, err := svc.RefreshWishlist(ctx, "user-001", "wl-001")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Unchanged)
	assert.Zero(t, summary.Updated)
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	items.AssertNotCalled(t, "UpdatePrice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshWishlist_FirstObservation_NotADrop(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	ext := new(mockExtractor)
	alerts := new(mockAlertNotifier)
	svc := newTestTracker(items, history, ext, alerts)
	ctx := context.Background()

	item := trackedItem("item-1", nil)
	item.Currency = nil

	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	items.On("ListTrackable", ctx, "wl-001").Return([]domain.WishlistItem{item}, nil)
	ext.On("Extract", mock.Anything, "https://shop.example/hp").
		Return(&extractor.Result{PriceCents: centsPtr(25000), Currency: "EUR"}, nil)
	items.On("UpdatePrice", mock.Anything, "item-1", int64(25000), "EUR", mock.Anything).Return(nil)
	history.On("Append", mock.Anything, mock.AnythingOfType("*domain.PriceRecord")).Return(nil)

	summary, err := svc.RefreshWishlist(ctx, "user-001", "wl-001")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Zero(t, summary.Drops)
	alerts.AssertNotCalled(t, "NotifyDrop", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshWishlist_ExtractionFailure_DoesNotAbortOthers(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	ext := new(mockExtractor)
	svc := newTestTracker(items, history, ext, new(mockAlertNotifier))
	ctx := context.Background()

	broken := trackedItem("item-1", centsPtr(19999))
	broken.SourceURL = strPtr("https://shop.example/broken")
	healthy := trackedItem("item-2", centsPtr(5000))

	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	items.On("ListTrackable", ctx, "wl-001").Return([]domain.WishlistItem{broken, healthy}, nil)
	ext.On("Extract", mock.Anything, "https://shop.example/broken").
		Return(nil, errors.New("upstream timeout"))
	ext.On("Extract", mock.Anything, "https://shop.example/hp").
		Return(&extractor.Result{PriceCents: centsPtr(5000), Currency: "USD"}, nil)
	items.On("TouchChecked", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.RefreshWishlist(ctx, "user-001", "wl-001")

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Unchanged)
	items.AssertCalled(t, "TouchChecked", mock.Anything, "item-1", mock.Anything)
}

func TestRefreshWishlist_ExtractionFailure_StillRecordsCheck(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	ext := new(mockExtractor)
	svc := newTestTracker(items, history, ext, new(mockAlertNotifier))
	ctx := context.Background()

	item := trackedItem("item-1", centsPtr(19999))

	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	items.On("ListTrackable", ctx, "wl-001").Return([]domain.WishlistItem{item}, nil)
	ext.On("Extract", mock.Anything, "https://shop.example/hp").
		Return(nil, errors.New("upstream timeout"))
	items.On("TouchChecked", mock.Anything, "item-1", mock.Anything).Return(nil)

	summary, err := svc.RefreshWishlist(ctx, "user-001", "wl-001")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	items.AssertCalled(t, "TouchChecked", mock.Anything, "item-1", mock.Anything)
	items.AssertNotCalled(t, "UpdatePrice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRefreshWishlist_NoPriceOnPage_KeepsOldPrice(t *testing.T) {
	items := new(mockItemRepository)
	ext := new(mockExtractor)
	svc := newTestTracker(items, new(mockHistoryRepository), ext, new(mockAlertNotifier))
	ctx := context.Background()

	item := trackedItem("item-1", centsPtr(19999))

	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	items.On("ListTrackable", ctx, "wl-001").Return([]domain.WishlistItem{item}, nil)
	ext.On("Extract", mock.Anything, "https://shop.example/hp").
		Return(&extractor.Result{}, nil)
	items.On("TouchChecked", mock.Anything, "item-1", mock.Anything).Return(nil)

	summary, err := svc.RefreshWishlist(ctx, "user-001", "wl-001")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.Unchanged)
	items.AssertNotCalled(t, "UpdatePrice", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Target Crossing Tests ---

func TestRefreshWishlist_TargetCrossing_FiresOncePerCrossing(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	ext := new(mockExtractor)
	alerts := new(mockAlertNotifier)
	svc := newTestTracker(items, history, ext, alerts)
	ctx := context.Background()

	item := trackedItem("item-1", centsPtr(19999))
	item.AlertTargetCents = centsPtr(15000)

	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	items.On("ListTrackable", ctx, "wl-001").Return([]domain.WishlistItem{item}, nil)
	ext.On("Extract", mock.Anything, "https://shop.example/hp").
		Return(&extractor.Result{PriceCents: centsPtr(14000), Currency: "USD"}, nil)
	items.On("UpdatePrice", mock.Anything, "item-1", int64(14000), "USD", mock.Anything).Return(nil)
	history.On("Append", mock.Anything, mock.AnythingOfType("*domain.PriceRecord")).Return(nil)
	alerts.On("NotifyDrop", mock.Anything, "user-001", mock.Anything).Return(true, nil)
	alerts.On("NotifyUnderTarget", mock.Anything, "user-001", mock.Anything).Return(true, nil)
	items.On("SetLastTargetAlert", mock.Anything, "item-1", centsPtr(14000)).Return(nil)

	_, err := svc.RefreshWishlist(ctx, "user-001", "wl-001")

	require.NoError(t, err)
	alerts.AssertCalled(t, "NotifyUnderTarget", mock.Anything, "user-001", mock.Anything)
	items.AssertCalled(t, "SetLastTargetAlert", mock.Anything, "item-1", centsPtr(14000))
}

func TestRefreshWishlist_StillUnderTarget_NoRepeatAlert(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	ext := new(mockExtractor)
	alerts := new(mockAlertNotifier)
	svc := newTestTracker(items, history, ext, alerts)
	ctx := context.Background()

	// Already alerted at 14000; a further decrease stays silent on the target axis.
	item := trackedItem("item-1", centsPtr(14000))
	item.AlertTargetCents = centsPtr(15000)
	item.LastTargetAlertCents = centsPtr(14000)

	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	items.On("ListTrackable", ctx, "wl-001").Return([]domain.WishlistItem{item}, nil)
	ext.On("Extract", mock.Anything, "https://shop.example/hp").
		Return(&extractor.Result{PriceCents: centsPtr(13000), Currency: "USD"}, nil)
	items.On("UpdatePrice", mock.Anything, "item-1", int64(13000), "USD", mock.Anything).Return(nil)
	history.On("Append", mock.Anything, mock.AnythingOfType("*domain.PriceRecord")).Return(nil)
	alerts.On("NotifyDrop", mock.Anything, "user-001", mock.Anything).Return(true, nil)

	_, err := svc.RefreshWishlist(ctx, "user-001", "wl-001")

	require.NoError(t, err)
	alerts.AssertNotCalled(t, "NotifyUnderTarget", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshWishlist_PriceBackAboveTarget_RearmsAlert(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	ext := new(mockExtractor)
	alerts := new(mockAlertNotifier)
	svc := newTestTracker(items, history, ext, alerts)
	ctx := context.Background()

	item := trackedItem("item-1", centsPtr(14000))
	item.AlertTargetCents = centsPtr(15000)
	item.LastTargetAlertCents = centsPtr(14000)

	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	items.On("ListTrackable", ctx, "wl-001").Return([]domain.WishlistItem{item}, nil)
	ext.On("Extract", mock.Anything, "https://shop.example/hp").
		Return(&extractor.Result{PriceCents: centsPtr(16000), Currency: "USD"}, nil)
	items.On("UpdatePrice", mock.Anything, "item-1", int64(16000), "USD", mock.Anything).Return(nil)
	history.On("Append", mock.Anything, mock.AnythingOfType("*domain.PriceRecord")).Return(nil)
	items.On("SetLastTargetAlert", mock.Anything, "item-1", (*int64)(nil)).Return(nil)

	_, err := svc.RefreshWishlist(ctx, "user-001", "wl-001")

	require.NoError(t, err)
	items.AssertCalled(t, "SetLastTargetAlert", mock.Anything, "item-1", (*int64)(nil))
	alerts.AssertNotCalled(t, "NotifyUnderTarget", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshWishlist_SuppressedUnderTargetAlert_KeepsCrossingArmed(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	ext := new(mockExtractor)
	alerts := new(mockAlertNotifier)
	svc := newTestTracker(items, history, ext, alerts)
	ctx := context.Background()

	item := trackedItem("item-1", centsPtr(19999))
	item.AlertTargetCents = centsPtr(15000)

	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	items.On("ListTrackable", ctx, "wl-001").Return([]domain.WishlistItem{item}, nil)
	ext.On("Extract", mock.Anything, "https://shop.example/hp").
		Return(&extractor.Result{PriceCents: centsPtr(14000), Currency: "USD"}, nil)
	items.On("UpdatePrice", mock.Anything, "item-1", int64(14000), "USD", mock.Anything).Return(nil)
	history.On("Append", mock.Anything, mock.AnythingOfType("*domain.PriceRecord")).Return(nil)
	alerts.On("NotifyDrop", mock.Anything, "user-001", mock.Anything).Return(false, nil)
	// Quiet hours: the under-target alert is held back, so the crossing must
	// stay eligible for the next check.
	alerts.On("NotifyUnderTarget", mock.Anything, "user-001", mock.Anything).Return(false, nil)

	_, err := svc.RefreshWishlist(ctx, "user-001", "wl-001")

	require.NoError(t, err)
	alerts.AssertCalled(t, "NotifyUnderTarget", mock.Anything, "user-001", mock.Anything)
	items.AssertNotCalled(t, "SetLastTargetAlert", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshWishlist_UnderTargetAlertError_KeepsCrossingArmed(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	ext := new(mockExtractor)
	alerts := new(mockAlertNotifier)
	svc := newTestTracker(items, history, ext, alerts)
	ctx := context.Background()

	item := trackedItem("item-1", centsPtr(19999))
	item.AlertTargetCents = centsPtr(15000)

	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	items.On("ListTrackable", ctx, "wl-001").Return([]domain.WishlistItem{item}, nil)
	ext.On("Extract", mock.Anything, "https://shop.example/hp").
		Return(&extractor.Result{PriceCents: centsPtr(14000), Currency: "USD"}, nil)
	items.On("UpdatePrice", mock.Anything, "item-1", int64(14000), "USD", mock.Anything).Return(nil)
	history.On("Append", mock.Anything, mock.AnythingOfType("*domain.PriceRecord")).Return(nil)
	alerts.On("NotifyDrop", mock.Anything, "user-001", mock.Anything).Return(true, nil)
	alerts.On("NotifyUnderTarget", mock.Anything, "user-001", mock.Anything).Return(false, assert.AnError)

	_, err := svc.RefreshWishlist(ctx, "user-001", "wl-001")

	require.NoError(t, err)
	items.AssertNotCalled(t, "SetLastTargetAlert", mock.Anything, mock.Anything, mock.Anything)
}

// --- PriceHistory Tests ---

func TestPriceHistory_ForeignItem_ReportedAsMissing(t *testing.T) {
	items := new(mockItemRepository)
	svc := newTestTracker(items, new(mockHistoryRepository), new(mockExtractor), new(mockAlertNotifier))
	ctx := context.Background()

	item := trackedItem("item-1", centsPtr(19999))
	items.On("GetItem", ctx, "item-1").Return(&item, nil)
	items.On("GetWishlist", ctx, "wl-001").
		Return(&domain.Wishlist{ID: "wl-001", OwnerID: "someone-else"}, nil)

	out, err := svc.PriceHistory(ctx, "user-001", "item-1", 1, 20)

	assert.Nil(t, out)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPriceHistory_IncludesDropSinceFirstObservation(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	svc := newTestTracker(items, history, new(mockExtractor), new(mockAlertNotifier))
	ctx := context.Background()

	item := trackedItem("item-1", centsPtr(15000))
	items.On("GetItem", ctx, "item-1").Return(&item, nil)
	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	history.On("List", ctx, "item-1", 1, 20).Return([]domain.PriceRecord{
		{ID: "rec-2", ItemID: "item-1", PriceCents: 15000, Currency: "USD"},
		{ID: "rec-1", ItemID: "item-1", PriceCents: 20000, Currency: "USD"},
	}, 2, nil)
	history.On("Oldest", ctx, "item-1").Return(&domain.PriceRecord{
		ID: "rec-1", ItemID: "item-1", PriceCents: 20000, Currency: "USD",
	}, nil)

	out, err := svc.PriceHistory(ctx, "user-001", "item-1", 1, 20)

	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	require.NotNil(t, out.DropSinceFirst)
	assert.True(t, out.DropSinceFirst.IsDrop)
	assert.Equal(t, 25.0, out.DropSinceFirst.PctChange)
}

func TestDropInfo_ComparesAgainstFirstObservation(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	svc := newTestTracker(items, history, new(mockExtractor), new(mockAlertNotifier))
	ctx := context.Background()

	item := trackedItem("item-1", centsPtr(15000))
	items.On("GetItem", ctx, "item-1").Return(&item, nil)
	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	history.On("Oldest", ctx, "item-1").Return(&domain.PriceRecord{
		ID: "rec-1", ItemID: "item-1", PriceCents: 20000, Currency: "USD",
		RecordedAt: time.Now().UTC().Add(-48 * time.Hour),
	}, nil)

	info, err := svc.DropInfo(ctx, "user-001", "item-1")

	require.NoError(t, err)
	assert.True(t, info.IsDrop)
	assert.Equal(t, 25.0, info.PctChange)
	require.NotNil(t, info.FirstObservedCents)
	assert.Equal(t, int64(20000), *info.FirstObservedCents)
}

func TestDropInfo_NoCurrentPrice_SkipsLedgerLookup(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	svc := newTestTracker(items, history, new(mockExtractor), new(mockAlertNotifier))
	ctx := context.Background()

	item := trackedItem("item-1", nil)
	items.On("GetItem", ctx, "item-1").Return(&item, nil)
	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)

	info, err := svc.DropInfo(ctx, "user-001", "item-1")

	require.NoError(t, err)
	assert.False(t, info.IsDrop)
	assert.Nil(t, info.FirstObservedCents)
	history.AssertNotCalled(t, "Oldest", mock.Anything, mock.Anything)
}

func TestDropInfo_NoHistoryYet_NotADrop(t *testing.T) {
	items := new(mockItemRepository)
	history := new(mockHistoryRepository)
	svc := newTestTracker(items, history, new(mockExtractor), new(mockAlertNotifier))
	ctx := context.Background()

	item := trackedItem("item-1", centsPtr(15000))
	items.On("GetItem", ctx, "item-1").Return(&item, nil)
	items.On("GetWishlist", ctx, "wl-001").Return(ownWishlist(), nil)
	history.On("Oldest", ctx, "item-1").Return(nil, apperrors.NotFound("price record", "item-1"))

	info, err := svc.DropInfo(ctx, "user-001", "item-1")

	require.NoError(t, err)
	assert.False(t, info.IsDrop)
	assert.Equal(t, 0.0, info.PctChange)
}
