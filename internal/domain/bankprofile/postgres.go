package bankprofile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool the repository needs. pgxmock satisfies
// it too.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const profileColumns = `
	p.id, p.bank_code, p.bank_name, p.display_name, p.country_code,
	p.currency_code, p.swift_code, p.version, p.is_active, p.is_verified,
	p.confidence_threshold, p.detect_patterns, p.transaction_patterns,
	p.validation_rules, p.regional_config, p.column_config,
	p.usage_count, p.success_count, p.success_rate, p.last_used_at,
	p.created_at, p.updated_at,
	COALESCE(array_agg(a.alias) FILTER (WHERE a.alias IS NOT NULL), '{}') AS aliases`

const profileGroupBy = `
	GROUP BY p.id`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL profile repository.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanProfile(row pgx.Row) (*BankProfile, error) {
	p := &BankProfile{}
	err := row.Scan(
		&p.ID, &p.BankCode, &p.BankName, &p.DisplayName, &p.CountryCode,
		&p.Currency, &p.SwiftCode, &p.Version, &p.IsActive, &p.IsVerified,
		&p.ConfidenceThreshold, &p.DetectPatterns, &p.TransactionPatterns,
		&p.ValidationRules, &p.RegionalConfig, &p.ColumnConfig,
		&p.UsageCount, &p.SuccessCount, &p.SuccessRate, &p.LastUsedAt,
		&p.CreatedAt, &p.UpdatedAt,
		&p.Aliases,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func collectProfiles(rows pgx.Rows) ([]BankProfile, error) {
	defer rows.Close()

	var profiles []BankProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// ListActive returns active+verified profiles ordered by descending usage.
func (r *PostgresRepository) ListActive(ctx context.Context, countryCode string) ([]BankProfile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM bank_profiles p
		LEFT JOIN bank_profile_aliases a ON a.profile_id = p.id
		WHERE p.is_active AND p.is_verified
		  AND ($1 = '' OR p.country_code = $1)` + profileGroupBy + `
		ORDER BY p.usage_count DESC`

	rows, err := r.db.Query(ctx, query, countryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank profiles: %w", err)
	}

	profiles, err := collectProfiles(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank profiles: %w", err)
	}
	return profiles, nil
}

// GetByCode returns a profile by its unique bank code.
func (r *PostgresRepository) GetByCode(ctx context.Context, bankCode string) (*BankProfile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM bank_profiles p
		LEFT JOIN bank_profile_aliases a ON a.profile_id = p.id
		WHERE p.bank_code = $1` + profileGroupBy

	p, err := scanProfile(r.db.QueryRow(ctx, query, bankCode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank profile: %w", err)
	}
	return p, nil
}

// Search matches a case-insensitive substring of name, display name or alias.
func (r *PostgresRepository) Search(ctx context.Context, query string, limit int) ([]BankProfile, error) {
	sql := `
		SELECT ` + profileColumns + `
		FROM bank_profiles p
		LEFT JOIN bank_profile_aliases a ON a.profile_id = p.id
		WHERE p.is_active AND (
			p.bank_name ILIKE '%' || $1 || '%'
			OR p.display_name ILIKE '%' || $1 || '%'
			OR EXISTS (
				SELECT 1 FROM bank_profile_aliases al
				WHERE al.profile_id = p.id AND al.alias ILIKE '%' || $1 || '%'
			)
		)` + profileGroupBy + `
		ORDER BY p.usage_count DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search bank profiles: %w", err)
	}

	profiles, err := collectProfiles(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank profile search: %w", err)
	}
	return profiles, nil
}

// IncrementUsage bumps the usage counters in a single atomic update so
// concurrent parse completions never race on a read-modify-write.
func (r *PostgresRepository) IncrementUsage(ctx context.Context, id uuid.UUID, success bool, transactionCount int) error {
	query := `
		UPDATE bank_profiles
		SET usage_count = usage_count + 1,
		    success_count = success_count + CASE WHEN $2 THEN 1 ELSE 0 END,
		    success_rate = (success_count + CASE WHEN $2 THEN 1 ELSE 0 END)::float
		        / (usage_count + 1),
		    transactions_parsed = transactions_parsed + $3,
		    last_used_at = now(),
		    updated_at = now()
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, success, transactionCount)
	if err != nil {
		return fmt.Errorf("failed to record profile usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Insert stores a profile when its bank code is absent (insert-if-absent) and
// reports whether a row was created. Conflicting rows are left untouched so
// repeated imports never downgrade a curated profile.
func (r *PostgresRepository) Insert(ctx context.Context, p *BankProfile) (bool, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	query := `
		INSERT INTO bank_profiles (
			id, bank_code, bank_name, display_name, country_code,
			currency_code, swift_code, version, is_active, is_verified,
			confidence_threshold, detect_patterns, transaction_patterns,
			validation_rules, regional_config, column_config
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (bank_code) DO NOTHING`

	tag, err := r.db.Exec(ctx, query,
		p.ID, p.BankCode, p.BankName, p.DisplayName, p.CountryCode,
		p.Currency, p.SwiftCode, p.Version, p.IsActive, p.IsVerified,
		p.ConfidenceThreshold, p.DetectPatterns, p.TransactionPatterns,
		p.ValidationRules, p.RegionalConfig, p.ColumnConfig,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert bank profile: %w", err)
	}

	inserted := tag.RowsAffected() > 0
	if inserted && len(p.Aliases) > 0 {
		if err := r.insertAliases(ctx, p.ID, p.Aliases); err != nil {
			return true, err
		}
	}
	return inserted, nil
}

func (r *PostgresRepository) insertAliases(ctx context.Context, profileID uuid.UUID, aliases []string) error {
	query := `
		INSERT INTO bank_profile_aliases (id, profile_id, alias)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, alias) DO NOTHING`

	for _, alias := range aliases {
		if _, err := r.db.Exec(ctx, query, uuid.New(), profileID, alias); err != nil {
			return fmt.Errorf("failed to insert alias %q: %w", alias, err)
		}
	}
	return nil
}

// GetTemplate returns a template by name.
func (r *PostgresRepository) GetTemplate(ctx context.Context, name string) (*Template, error) {
	query := `
		SELECT id, name, detect_patterns, transaction_patterns,
		       validation_rules, regional_config, column_config
		FROM bank_profile_templates
		WHERE name = $1`

	t := &Template{}
	err := r.db.QueryRow(ctx, query, name).Scan(
		&t.ID, &t.Name, &t.DetectPatterns, &t.TransactionPatterns,
		&t.ValidationRules, &t.RegionalConfig, &t.ColumnConfig,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}
