package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	"github.com/ckcelina/my-wishlist-sub005/internal/event"
	"github.com/ckcelina/my-wishlist-sub005/internal/extractor"
	"github.com/ckcelina/my-wishlist-sub005/internal/notifier"
	pkgkafka "github.com/ckcelina/my-wishlist-sub005/pkg/kafka"
)

// --- Shared Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestProducer returns an event producer whose publishes fail silently in
// tests (no real broker).
func newTestProducer() *event.Producer {
	logger := newTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func strPtr(s string) *string { return &s }

func centsPtr(v int64) *int64 { return &v }

// --- Mock Item Repository ---

type mockItemRepository struct {
	mock.Mock
}

func (m *mockItemRepository) GetWishlist(ctx context.Context, id string) (*domain.Wishlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockItemRepository) GetItem(ctx context.Context, id string) (*domain.WishlistItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WishlistItem), args.Error(1)
}

func (m *mockItemRepository) ListByWishlist(ctx context.Context, wishlistID string) ([]domain.WishlistItem, error) {
	args := m.Called(ctx, wishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WishlistItem), args.Error(1)
}

func (m *mockItemRepository) ListTrackable(ctx context.Context, wishlistID string) ([]domain.WishlistItem, error) {
	args := m.Called(ctx, wishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WishlistItem), args.Error(1)
}

func (m *mockItemRepository) UpdatePrice(ctx context.Context, itemID string, priceCents int64, currency string, checkedAt time.Time) error {
	args := m.Called(ctx, itemID, priceCents, currency, checkedAt)
	return args.Error(0)
}

func (m *mockItemRepository) TouchChecked(ctx context.Context, itemID string, checkedAt time.Time) error {
	args := m.Called(ctx, itemID, checkedAt)
	return args.Error(0)
}

func (m *mockItemRepository) SetLastTargetAlert(ctx context.Context, itemID string, priceCents *int64) error {
	args := m.Called(ctx, itemID, priceCents)
	return args.Error(0)
}

func (m *mockItemRepository) ListWithTargets(ctx context.Context, userID string) ([]domain.TargetedItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TargetedItem), args.Error(1)
}

// --- Mock Price History Repository ---

type mockHistoryRepository struct {
	mock.Mock
}

func (m *mockHistoryRepository) Append(ctx context.Context, rec *domain.PriceRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockHistoryRepository) Oldest(ctx context.Context, itemID string) (*domain.PriceRecord, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PriceRecord), args.Error(1)
}

func (m *mockHistoryRepository) List(ctx context.Context, itemID string, page, perPage int) ([]domain.PriceRecord, int, error) {
	args := m.Called(ctx, itemID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PriceRecord), args.Int(1), args.Error(2)
}

// --- Mock Settings Repository ---

type mockSettingsRepository struct {
	mock.Mock
}

func (m *mockSettingsRepository) Get(ctx context.Context, userID string) (*domain.AlertSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AlertSettings), args.Error(1)
}

func (m *mockSettingsRepository) Upsert(ctx context.Context, s *domain.AlertSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// --- Mock Store Repository ---

type mockStoreRepository struct {
	mock.Mock
}

func (m *mockStoreRepository) CreateStore(ctx context.Context, s *domain.Store) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockStoreRepository) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Store), args.Error(1)
}

func (m *mockStoreRepository) ListStores(ctx context.Context) ([]domain.Store, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Store), args.Error(1)
}

func (m *mockStoreRepository) AddShippingRule(ctx context.Context, r *domain.ShippingRule) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockStoreRepository) GetRule(ctx context.Context, storeID, countryCode string) (*domain.ShippingRule, error) {
	args := m.Called(ctx, storeID, countryCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShippingRule), args.Error(1)
}

func (m *mockStoreRepository) ListRules(ctx context.Context, storeID string) ([]domain.ShippingRule, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShippingRule), args.Error(1)
}

// --- Mock Location Repository ---

type mockLocationRepository struct {
	mock.Mock
}

func (m *mockLocationRepository) Get(ctx context.Context, userID string) (*domain.UserLocation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserLocation), args.Error(1)
}

func (m *mockLocationRepository) Upsert(ctx context.Context, loc *domain.UserLocation) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *mockLocationRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Mock Shared Wishlist Repository ---

type mockSharedRepository struct {
	mock.Mock
}

func (m *mockSharedRepository) Create(ctx context.Context, s *domain.SharedWishlist) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSharedRepository) GetBySlug(ctx context.Context, slug string) (*domain.SharedWishlist, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedWishlist), args.Error(1)
}

func (m *mockSharedRepository) GetByWishlistID(ctx context.Context, wishlistID string) (*domain.SharedWishlist, error) {
	args := m.Called(ctx, wishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedWishlist), args.Error(1)
}

func (m *mockSharedRepository) UpdateSettings(ctx context.Context, s *domain.SharedWishlist) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// --- Mock Reservation Repository ---

type mockReservationRepository struct {
	mock.Mock
}

func (m *mockReservationRepository) Create(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReservationRepository) Release(ctx context.Context, sharedWishlistID, itemID string) error {
	args := m.Called(ctx, sharedWishlistID, itemID)
	return args.Error(0)
}

func (m *mockReservationRepository) ListActive(ctx context.Context, sharedWishlistID string) ([]domain.Reservation, error) {
	args := m.Called(ctx, sharedWishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *mockReservationRepository) ListForOwner(ctx context.Context, wishlistID string) ([]domain.OwnerReservation, error) {
	args := m.Called(ctx, wishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OwnerReservation), args.Error(1)
}

// --- Mock Notifier ---

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyPriceDrop(ctx context.Context, userID string, drop *domain.DropEvent) error {
	args := m.Called(ctx, userID, drop)
	return args.Error(0)
}

func (m *mockNotifier) NotifyUnderTarget(ctx context.Context, userID string, info *notifier.UnderTargetInfo) error {
	args := m.Called(ctx, userID, info)
	return args.Error(0)
}

// --- Mock Extractor ---

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, sourceURL string) (*extractor.Result, error) {
	args := m.Called(ctx, sourceURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extractor.Result), args.Error(1)
}

// --- Mock Alert Notifier (tracker-facing policy gate) ---

type mockAlertNotifier struct {
	mock.Mock
}

func (m *mockAlertNotifier) NotifyDrop(ctx context.Context, userID string, drop *domain.DropEvent) (bool, error) {
	args := m.Called(ctx, userID, drop)
	return args.Bool(0), args.Error(1)
}

func (m *mockAlertNotifier) NotifyUnderTarget(ctx context.Context, userID string, info *notifier.UnderTargetInfo) (bool, error) {
	args := m.Called(ctx, userID, info)
	return args.Bool(0), args.Error(1)
}

// --- Mock View Cache ---

type mockViewCache struct {
	mock.Mock
}

func (m *mockViewCache) Get(ctx context.Context, slug string) (*domain.SharedView, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedView), args.Error(1)
}

func (m *mockViewCache) Save(ctx context.Context, view *domain.SharedView) error {
	args := m.Called(ctx, view)
	return args.Error(0)
}

func (m *mockViewCache) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}
