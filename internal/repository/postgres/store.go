package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ckcelina/my-wishlist-sub005/internal/domain"
	"github.com/ckcelina/my-wishlist-sub005/pkg/database"
	apperrors "github.com/ckcelina/my-wishlist-sub005/pkg/errors"
)

// StoreRepository implements repository.StoreRepository using PostgreSQL.
type StoreRepository struct {
	pool database.DBTX
}

// NewStoreRepository creates a new PostgreSQL-backed store repository.
func NewStoreRepository(pool database.DBTX) *StoreRepository {
	return &StoreRepository{pool: pool}
}

// CreateStore inserts a new store.
func (r *StoreRepository) CreateStore(ctx context.Context, s *domain.Store) error {
	query := `
		INSERT INTO stores (id, name, domain, type, countries, requires_city, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.Name, s.Domain, s.Type, s.Countries, s.RequiresCity, s.Notes, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAlreadyExists
		}
		return fmt.Errorf("insert store: %w", err)
	}

	return nil
}

// GetStore retrieves a store by its ID.
func (r *StoreRepository) GetStore(ctx context.Context, id string) (*domain.Store, error) {
	query := `
		SELECT id, name, domain, type, countries, requires_city, notes, created_at
		FROM stores
		WHERE id = $1`

	var s domain.Store
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Domain, &s.Type, &s.Countries, &s.RequiresCity, &s.Notes, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("store", id)
		}
		return nil, fmt.Errorf("scan store: %w", err)
	}

	return &s, nil
}

// ListStores returns all stores ordered by name.
func (r *StoreRepository) ListStores(ctx context.Context) ([]domain.Store, error) {
	query := `
		SELECT id, name, domain, type, countries, requires_city, notes, created_at
		FROM stores
		ORDER BY name, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	stores := make([]domain.Store, 0)
	for rows.Next() {
		var s domain.Store
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Domain, &s.Type, &s.Countries, &s.RequiresCity, &s.Notes, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan store row: %w", err)
		}
		stores = append(stores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate store rows: %w", err)
	}

	return stores, nil
}

// AddShippingRule inserts a shipping rule for a store.
func (r *StoreRepository) AddShippingRule(ctx context.Context, rule *domain.ShippingRule) error {
	query := `
		INSERT INTO shipping_rules (id, store_id, country_code, city_whitelist, city_blacklist,
			ships_to_country, ships_to_city, delivery_methods)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		rule.ID,
		rule.StoreID,
		rule.CountryCode,
		rule.CityWhitelist,
		rule.CityBlacklist,
		rule.ShipsToCountry,
		rule.ShipsToCity,
		rule.DeliveryMethods,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("shipping rule for country %s already exists", rule.CountryCode))
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("store", rule.StoreID)
		}
		return fmt.Errorf("insert shipping rule: %w", err)
	}

	return nil
}

// GetRule retrieves a store's shipping rule for a country.
func (r *StoreRepository) GetRule(ctx context.Context, storeID, countryCode string) (*domain.ShippingRule, error) {
	query := `
		SELECT id, store_id, country_code, city_whitelist, city_blacklist,
			   ships_to_country, ships_to_city, delivery_methods
		FROM shipping_rules
		WHERE store_id = $1 AND country_code = $2`

	rule, err := scanRule(r.pool.QueryRow(ctx, query, storeID, countryCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan shipping rule: %w", err)
	}

	return rule, nil
}

// ListRules returns all shipping rules of a store ordered by country code.
func (r *StoreRepository) ListRules(ctx context.Context, storeID string) ([]domain.ShippingRule, error) {
	query := `
		SELECT id, store_id, country_code, city_whitelist, city_blacklist,
			   ships_to_country, ships_to_city, delivery_methods
		FROM shipping_rules
		WHERE store_id = $1
		ORDER BY country_code`

	rows, err := r.pool.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list shipping rules: %w", err)
	}
	defer rows.Close()

	rules := make([]domain.ShippingRule, 0)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipping rule row: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipping rule rows: %w", err)
	}

	return rules, nil
}

func scanRule(row pgx.Row) (*domain.ShippingRule, error) {
	var rule domain.ShippingRule
	err := row.Scan(
		&rule.ID,
		&rule.StoreID,
		&rule.CountryCode,
		&rule.CityWhitelist,
		&rule.CityBlacklist,
		&rule.ShipsToCountry,
		&rule.ShipsToCity,
		&rule.DeliveryMethods,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}
