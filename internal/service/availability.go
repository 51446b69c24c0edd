package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	"github.com/ckcelina/my-wishlist-sub005/internal/repository"
	apperrors "github.com/ckcelina/my-wishlist-sub005/pkg/errors"
)

// AvailabilityService resolves store shipping coverage against user locations.
type AvailabilityService struct {
	stores    repository.StoreRepository
	locations repository.LocationRepository
	logger    *slog.Logger
}

// NewAvailabilityService creates a new availability service.
func NewAvailabilityService(
	stores repository.StoreRepository,
	locations repository.LocationRepository,
	logger *slog.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		stores:    stores,
		locations: locations,
		logger:    logger,
	}
}

// CreateStoreInput holds the parameters for registering a store.
type CreateStoreInput struct {
	Name         string   `json:"name" validate:"required"`
	Domain       string   `json:"domain" validate:"required,fqdn"`
	Type         string   `json:"type" validate:"omitempty,oneof=online local hybrid"`
	Countries    []string `json:"countries" validate:"required,min=1,dive,iso3166_1_alpha2"`
	RequiresCity bool     `json:"requires_city"`
	Notes        string   `json:"notes"`
}

// CreateStore registers a new store.
func (s *AvailabilityService) CreateStore(ctx context.Context, input *CreateStoreInput) (*domain.Store, error) {
	storeType := input.Type
	if storeType == "" {
		storeType = "online"
	}

	countries := make([]string, len(input.Countries))
	for i, c := range input.Countries {
		countries[i] = strings.ToUpper(c)
	}

	store := &domain.Store{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Domain:       strings.ToLower(input.Domain),
		Type:         storeType,
		Countries:    countries,
		RequiresCity: input.RequiresCity,
		Notes:        input.Notes,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.stores.CreateStore(ctx, store); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.Conflict(fmt.Sprintf("store with domain %s already exists", store.Domain))
		}
		return nil, fmt.Errorf("create store: %w", err)
	}

	s.logger.InfoContext(ctx, "store created",
		slog.String("store_id", store.ID),
		slog.String("domain", store.Domain),
	)

	return store, nil
}

// GetStore returns a store together with its shipping rules.
func (s *AvailabilityService) GetStore(ctx context.Context, storeID string) (*domain.Store, []domain.ShippingRule, error) {
	store, err := s.stores.GetStore(ctx, storeID)
	if err != nil {
		return nil, nil, err
	}

	rules, err := s.stores.ListRules(ctx, storeID)
	if err != nil {
		return nil, nil, fmt.Errorf("list shipping rules: %w", err)
	}

	return store, rules, nil
}

// ListStores returns all registered stores.
func (s *AvailabilityService) ListStores(ctx context.Context) ([]domain.Store, error) {
	return s.stores.ListStores(ctx)
}

// AddShippingRuleInput holds the parameters for a per-country coverage rule.
type AddShippingRuleInput struct {
	CountryCode     string   `json:"country_code" validate:"required,iso3166_1_alpha2"`
	CityWhitelist   []string `json:"city_whitelist"`
	CityBlacklist   []string `json:"city_blacklist"`
	ShipsToCountry  *bool    `json:"ships_to_country"`
	ShipsToCity     *bool    `json:"ships_to_city"`
	DeliveryMethods []string `json:"delivery_methods"`
}

// AddShippingRule attaches a country rule to a store. City lists are
// normalized on write so resolution can compare them directly.
func (s *AvailabilityService) AddShippingRule(ctx context.Context, storeID string, input *AddShippingRuleInput) (*domain.ShippingRule, error) {
	if _, err := s.stores.GetStore(ctx, storeID); err != nil {
		return nil, err
	}

	shipsToCountry := true
	if input.ShipsToCountry != nil {
		shipsToCountry = *input.ShipsToCountry
	}
	shipsToCity := true
	if input.ShipsToCity != nil {
		shipsToCity = *input.ShipsToCity
	}

	rule := &domain.ShippingRule{
		ID:              uuid.NewString(),
		StoreID:         storeID,
		CountryCode:     strings.ToUpper(input.CountryCode),
		CityWhitelist:   normalizeCities(input.CityWhitelist),
		CityBlacklist:   normalizeCities(input.CityBlacklist),
		ShipsToCountry:  shipsToCountry,
		ShipsToCity:     shipsToCity,
		DeliveryMethods: input.DeliveryMethods,
	}

	if err := s.stores.AddShippingRule(ctx, rule); err != nil {
		return nil, err
	}

	return rule, nil
}

// SetLocationInput holds the parameters for saving a user's delivery location.
type SetLocationInput struct {
	CountryCode string `json:"country_code" validate:"required,iso3166_1_alpha2"`
	City        string `json:"city"`
}

// SetLocation saves the user's delivery location. Last write wins.
func (s *AvailabilityService) SetLocation(ctx context.Context, userID string, input *SetLocationInput) (*domain.UserLocation, error) {
	loc := &domain.UserLocation{
		UserID:      userID,
		CountryCode: strings.ToUpper(input.CountryCode),
		City:        strings.TrimSpace(input.City),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.locations.Upsert(ctx, loc); err != nil {
		return nil, fmt.Errorf("save location: %w", err)
	}

	return loc, nil
}

// GetLocation returns the user's saved delivery location.
func (s *AvailabilityService) GetLocation(ctx context.Context, userID string) (*domain.UserLocation, error) {
	return s.locations.Get(ctx, userID)
}

// ClearLocation removes the user's saved delivery location. Clearing an
// absent location succeeds as a no-op.
func (s *AvailabilityService) ClearLocation(ctx context.Context, userID string) error {
	if err := s.locations.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear location: %w", err)
	}
	return nil
}

// ResolveForUser determines whether a store can deliver to the user's saved
// location.
func (s *AvailabilityService) ResolveForUser(ctx context.Context, userID, storeID string) (*domain.Availability, error) {
	store, err := s.stores.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	loc, err := s.locations.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("set your delivery location before checking availability")
		}
		return nil, fmt.Errorf("load user location: %w", err)
	}

	rule, err := s.stores.GetRule(ctx, storeID, loc.CountryCode)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("load shipping rule: %w", err)
		}
		rule = nil
	}

	availability := domain.ResolveAvailability(store, rule, loc.CountryCode, loc.City)
	return &availability, nil
}

func normalizeCities(cities []string) []string {
	if len(cities) == 0 {
		return nil
	}
	out := make([]string, 0, len(cities))
	for _, c := range cities {
		if n := domain.NormalizeCity(c); n != "" {
			out = append(out, n)
		}
	}
	return out
}
