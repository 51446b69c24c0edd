package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	"github.com/ckcelina/my-wishlist-sub005/internal/event"
	"github.com/ckcelina/my-wishlist-sub005/internal/extractor"
	"github.com/ckcelina/my-wishlist-sub005/internal/notifier"
	"github.com/ckcelina/my-wishlist-sub005/pkg/httputil"
	pkgkafka "github.com/ckcelina/my-wishlist-sub005/pkg/kafka"
	"github.com/ckcelina/my-wishlist-sub005/pkg/middleware"
)

// ============================================================================
// Test Helpers
// ============================================================================

const (
	testUserID     = "550e8400-e29b-41d4-a716-446655440001"
	testWishlistID = "550e8400-e29b-41d4-a716-446655440002"
	testItemID     = "550e8400-e29b-41d4-a716-446655440003"
	testStoreID    = "550e8400-e29b-41d4-a716-446655440004"
	testShareSlug  = "birthday-a1b2c3"
)

func handlerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// handlerTestProducer returns an event producer whose publishes fail silently
// in tests (no real broker).
func handlerTestProducer() *event.Producer {
	logger := handlerTestLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

// fakeTokenValidator returns a middleware.TokenValidator that always succeeds
// and injects the given userID into the request context.
func fakeTokenValidator(userID string) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		return &middleware.Claims{UserID: userID, Email: "test@example.com"}, nil
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func strPtr(s string) *string { return &s }

func centsPtr(v int64) *int64 { return &v }

// ============================================================================
// Mock Repositories
// ============================================================================

type mockItemRepo struct {
	mock.Mock
}

func (m *mockItemRepo) GetWishlist(ctx context.Context, id string) (*domain.Wishlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wishlist), args.Error(1)
}

func (m *mockItemRepo) GetItem(ctx context.Context, id string) (*domain.WishlistItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WishlistItem), args.Error(1)
}

func (m *mockItemRepo) ListByWishlist(ctx context.Context, wishlistID string) ([]domain.WishlistItem, error) {
	args := m.Called(ctx, wishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WishlistItem), args.Error(1)
}

func (m *mockItemRepo) ListTrackable(ctx context.Context, wishlistID string) ([]domain.WishlistItem, error) {
	args := m.Called(ctx, wishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WishlistItem), args.Error(1)
}

func (m *mockItemRepo) UpdatePrice(ctx context.Context, itemID string, priceCents int64, currency string, checkedAt time.Time) error {
	args := m.Called(ctx, itemID, priceCents, currency, checkedAt)
	return args.Error(0)
}

func (m *mockItemRepo) TouchChecked(ctx context.Context, itemID string, checkedAt time.Time) error {
	args := m.Called(ctx, itemID, checkedAt)
	return args.Error(0)
}

func (m *mockItemRepo) SetLastTargetAlert(ctx context.Context, itemID string, priceCents *int64) error {
	args := m.Called(ctx, itemID, priceCents)
	return args.Error(0)
}

func (m *mockItemRepo) ListWithTargets(ctx context.Context, userID string) ([]domain.TargetedItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TargetedItem), args.Error(1)
}

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) Append(ctx context.Context, rec *domain.PriceRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockHistoryRepo) Oldest(ctx context.Context, itemID string) (*domain.PriceRecord, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PriceRecord), args.Error(1)
}

func (m *mockHistoryRepo) List(ctx context.Context, itemID string, page, perPage int) ([]domain.PriceRecord, int, error) {
	args := m.Called(ctx, itemID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PriceRecord), args.Int(1), args.Error(2)
}

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) Get(ctx context.Context, userID string) (*domain.AlertSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AlertSettings), args.Error(1)
}

func (m *mockSettingsRepo) Upsert(ctx context.Context, s *domain.AlertSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type mockStoreRepo struct {
	mock.Mock
}

func (m *mockStoreRepo) CreateStore(ctx context.Context, s *domain.Store) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockStoreRepo) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Store), args.Error(1)
}

func (m *mockStoreRepo) ListStores(ctx context.Context) ([]domain.Store, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Store), args.Error(1)
}

func (m *mockStoreRepo) AddShippingRule(ctx context.Context, r *domain.ShippingRule) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockStoreRepo) GetRule(ctx context.Context, storeID, countryCode string) (*domain.ShippingRule, error) {
	args := m.Called(ctx, storeID, countryCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShippingRule), args.Error(1)
}

func (m *mockStoreRepo) ListRules(ctx context.Context, storeID string) ([]domain.ShippingRule, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShippingRule), args.Error(1)
}

type mockLocationRepo struct {
	mock.Mock
}

func (m *mockLocationRepo) Get(ctx context.Context, userID string) (*domain.UserLocation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserLocation), args.Error(1)
}

func (m *mockLocationRepo) Upsert(ctx context.Context, loc *domain.UserLocation) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *mockLocationRepo) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockSharedRepo struct {
	mock.Mock
}

func (m *mockSharedRepo) Create(ctx context.Context, s *domain.SharedWishlist) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSharedRepo) GetBySlug(ctx context.Context, slug string) (*domain.SharedWishlist, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedWishlist), args.Error(1)
}

func (m *mockSharedRepo) GetByWishlistID(ctx context.Context, wishlistID string) (*domain.SharedWishlist, error) {
	args := m.Called(ctx, wishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SharedWishlist), args.Error(1)
}

func (m *mockSharedRepo) UpdateSettings(ctx context.Context, s *domain.SharedWishlist) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type mockReservationRepo struct {
	mock.Mock
}

func (m *mockReservationRepo) Create(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReservationRepo) Release(ctx context.Context, sharedWishlistID, itemID string) error {
	args := m.Called(ctx, sharedWishlistID, itemID)
	return args.Error(0)
}

func (m *mockReservationRepo) ListActive(ctx context.Context, sharedWishlistID string) ([]domain.Reservation, error) {
	args := m.Called(ctx, sharedWishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *mockReservationRepo) ListForOwner(ctx context.Context, wishlistID string) ([]domain.OwnerReservation, error) {
	args := m.Called(ctx, wishlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OwnerReservation), args.Error(1)
}

// ============================================================================
// Mock Collaborators
// ============================================================================

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
