package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	"github.com/ckcelina/my-wishlist-sub005/internal/event"
	"github.com/ckcelina/my-wishlist-sub005/internal/repository"
	apperrors "github.com/ckcelina/my-wishlist-sub005/pkg/errors"
	"github.com/ckcelina/my-wishlist-sub005/pkg/slug"
)

// ViewCache caches rendered guest views by slug. The Redis-backed
// implementation lives in repository/redis; a nil cache disables caching.
type ViewCache interface {
	Get(ctx context.Context, slug string) (*domain.SharedView, error)
	Save(ctx context.Context, view *domain.SharedView) error
	Delete(ctx context.Context, slug string) error
}

// SharingService manages share links and guest reservations.
type SharingService struct {
	shares       repository.SharedWishlistRepository
	reservations repository.ReservationRepository
	items        repository.ItemRepository
	producer     *event.Producer
	cache        ViewCache
	logger       *slog.Logger
}

// NewSharingService creates a new sharing service. cache may be nil when
// Redis is unavailable.
func NewSharingService(
	shares repository.SharedWishlistRepository,
	reservations repository.ReservationRepository,
	items repository.ItemRepository,
	producer *event.Producer,
	cache ViewCache,
	logger *slog.Logger,
) *SharingService {
	return &SharingService{
		shares:       shares,
		reservations: reservations,
		items:        items,
		producer:     producer,
		cache:        cache,
		logger:       logger,
	}
}

// ShareInput holds the parameters for publishing a wishlist.
type ShareInput struct {
	Visibility        string `json:"visibility" validate:"omitempty,oneof=public unlisted"`
	AllowReservations *bool  `json:"allow_reservations"`
	HideReservedItems bool   `json:"hide_reserved_items"`
	ShowReserverNames bool   `json:"show_reserver_names"`
}

// Share publishes a wishlist under a fresh slug. Sharing an already shared
// wishlist returns the existing share unchanged.
func (s *SharingService) Share(ctx context.Context, userID, wishlistID string, input *ShareInput) (*domain.SharedWishlist, error) {
	wishlist, err := s.ownedWishlist(ctx, userID, wishlistID)
	if err != nil {
		return nil, err
	}

	existing, err := s.shares.GetByWishlistID(ctx, wishlistID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("look up existing share: %w", err)
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = domain.VisibilityUnlisted
	}
	allowReservations := true
	if input.AllowReservations != nil {
		allowReservations = *input.AllowReservations
	}

	share := &domain.SharedWishlist{
		ID:                uuid.NewString(),
		WishlistID:        wishlistID,
		Slug:              slug.GenerateUnique(wishlist.Name),
		Visibility:        visibility,
		AllowReservations: allowReservations,
		HideReservedItems: input.HideReservedItems,
		ShowReserverNames: input.ShowReserverNames,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.shares.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("create share: %w", err)
	}

	s.logger.InfoContext(ctx, "wishlist shared",
		slog.String("wishlist_id", wishlistID),
		slog.String("slug", share.Slug),
	)

	return share, nil
}

// UpdateShareInput holds a partial update of share settings. Nil fields keep
// their current value.
type UpdateShareInput struct {
	Visibility        *string `json:"visibility" validate:"omitempty,oneof=public unlisted"`
	AllowReservations *bool   `json:"allow_reservations"`
	HideReservedItems *bool   `json:"hide_reserved_items"`
	ShowReserverNames *bool   `json:"show_reserver_names"`
}

// UpdateShareSettings changes the visibility and reservation settings of an
// existing share.
func (s *SharingService) UpdateShareSettings(ctx context.Context, userID, wishlistID string, input *UpdateShareInput) (*domain.SharedWishlist, error) {
	if _, err := s.ownedWishlist(ctx, userID, wishlistID); err != nil {
		return nil, err
	}

	share, err := s.shares.GetByWishlistID(ctx, wishlistID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("share", wishlistID)
		}
		return nil, fmt.Errorf("look up share: %w", err)
	}

	if input.Visibility != nil {
		share.Visibility = *input.Visibility
	}
	if input.AllowReservations != nil {
		share.AllowReservations = *input.AllowReservations
	}
	if input.HideReservedItems != nil {
		share.HideReservedItems = *input.HideReservedItems
	}
	if input.ShowReserverNames != nil {
		share.ShowReserverNames = *input.ShowReserverNames
	}

	if err := s.shares.UpdateSettings(ctx, share); err != nil {
		return nil, fmt.Errorf("update share settings: %w", err)
	}

	s.invalidate(ctx, share.Slug)

	return share, nil
}

// GuestView renders the shared wishlist as guests see it: reserved items
// optionally hidden, reserver names optionally included.
func (s *SharingService) GuestView(ctx context.Context, shareSlug string) (*domain.SharedView, error) {
	if s.cache != nil {
		if view, err := s.cache.Get(ctx, shareSlug); err == nil {
			return view, nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "share view cache read failed", slog.Any("error", err))
		}
	}

	share, err := s.shares.GetBySlug(ctx, shareSlug)
	if err != nil {
		return nil, err
	}

	wishlist, err := s.items.GetWishlist(ctx, share.WishlistID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListByWishlist(ctx, share.WishlistID)
	if err != nil {
		return nil, fmt.Errorf("list shared items: %w", err)
	}

	active, err := s.reservations.ListActive(ctx, share.ID)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}

	reservedBy := make(map[string]string, len(active))
	for _, res := range active {
		reservedBy[res.ItemID] = res.ReservedByName
	}

	view := &domain.SharedView{
		Slug:              share.Slug,
		WishlistName:      wishlist.Name,
		AllowReservations: share.AllowReservations,
		Items:             make([]domain.SharedViewItem, 0, len(items)),
	}

	for _, item := range items {
		name, reserved := reservedBy[item.ID]
		if reserved && share.HideReservedItems {
			continue
		}
		viewItem := domain.SharedViewItem{
			ID:                item.ID,
			Title:             item.Title,
			CurrentPriceCents: item.CurrentPriceCents,
			Currency:          item.Currency,
			Reserved:          reserved,
		}
		if reserved && share.ShowReserverNames {
			viewItem.ReserverName = name
		}
		view.Items = append(view.Items, viewItem)
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, view); err != nil {
			s.logger.WarnContext(ctx, "share view cache write failed", slog.Any("error", err))
		}
	}

	return view, nil
}

// ReserveInput holds the parameters for a guest reservation.
type ReserveInput struct {
	ItemID    string `json:"item_id" validate:"required,uuid"`
	GuestName string `json:"guest_name" validate:"required,min=1,max=100"`
}

// Reserve places a guest's hold on an item of a shared wishlist. A second
// reservation of the same item fails with a conflict.
func (s *SharingService) Reserve(ctx context.Context, shareSlug string, input *ReserveInput) (*domain.Reservation, error) {
	share, err := s.shares.GetBySlug(ctx, shareSlug)
	if err != nil {
		return nil, err
	}
	if !share.AllowReservations {
		return nil, apperrors.Forbidden("reservations are disabled for this wishlist")
	}

	item, err := s.items.GetItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if item.WishlistID != share.WishlistID {
		return nil, apperrors.NotFound("item", input.ItemID)
	}

	reservation := &domain.Reservation{
		ID:               uuid.NewString(),
		SharedWishlistID: share.ID,
		ItemID:           item.ID,
		ReservedByName:   input.GuestName,
		Status:           domain.ReservationStatusReserved,
		ReservedAt:       time.Now().UTC(),
	}

	if err := s.reservations.Create(ctx, reservation); err != nil {
		return nil, err
	}

	reservationsTotal.WithLabelValues("reserved").Inc()

	if err := s.producer.PublishReservationCreated(ctx, reservation); err != nil {
		s.logger.WarnContext(ctx, "publish reservation created failed", slog.Any("error", err))
	}

	s.invalidate(ctx, share.Slug)

	return reservation, nil
}

// Release lifts the active reservation on an item. Releasing an unreserved
// item succeeds without effect.
func (s *SharingService) Release(ctx context.Context, shareSlug, itemID string) error {
	share, err := s.shares.GetBySlug(ctx, shareSlug)
	if err != nil {
		return err
	}

	if err := s.reservations.Release(ctx, share.ID, itemID); err != nil {
		return err
	}

	reservationsTotal.WithLabelValues("released").Inc()

	if err := s.producer.PublishReservationReleased(ctx, share.ID, itemID); err != nil {
		s.logger.WarnContext(ctx, "publish reservation released failed", slog.Any("error", err))
	}

	s.invalidate(ctx, share.Slug)

	return nil
}

// OwnerReservations lists who reserved what on the owner's wishlist.
func (s *SharingService) OwnerReservations(ctx context.Context, userID, wishlistID string) ([]domain.OwnerReservation, error) {
	if _, err := s.ownedWishlist(ctx, userID, wishlistID); err != nil {
		return nil, err
	}

	reservations, err := s.reservations.ListForOwner(ctx, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("list owner reservations: %w", err)
	}

	return reservations, nil
}

func (s *SharingService) ownedWishlist(ctx context.Context, userID, wishlistID string) (*domain.Wishlist, error) {
	wishlist, err := s.items.GetWishlist(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	if wishlist.OwnerID != userID {
		return nil, apperrors.NotFound("wishlist", wishlistID)
	}
	return wishlist, nil
}

func (s *SharingService) invalidate(ctx context.Context, shareSlug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, shareSlug); err != nil {
		s.logger.WarnContext(ctx, "share view cache invalidation failed", slog.Any("error", err))
	}
}
