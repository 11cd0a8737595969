package bankprofile

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrProfileNotFound is returned when no profile exists for a bank code.
	ErrProfileNotFound = errors.New("bank profile not found")
	// ErrTemplateNotFound is returned when an import row references an
	// unknown template.
	ErrTemplateNotFound = errors.New("bank profile template not found")
)

// Repository is the keyed backing store for profiles and templates.
type Repository interface {
	// ListActive returns active+verified profiles, optionally filtered by
	// country code (empty = all), ordered by descending usage count.
	ListActive(ctx context.Context, countryCode string) ([]BankProfile, error)

	// GetByCode returns a single profile by its unique bank code, or
	// ErrProfileNotFound.
	GetByCode(ctx context.Context, bankCode string) (*BankProfile, error)

	// Search matches query as a case-insensitive substring of bank name,
	// display name or any registered alias, ordered by descending usage
	// count and capped at limit.
	Search(ctx context.Context, query string, limit int) ([]BankProfile, error)

	// IncrementUsage atomically bumps the usage counter and recomputes the
	// success rate, so concurrent parse completions never lose updates.
	IncrementUsage(ctx context.Context, id uuid.UUID, success bool, transactionCount int) error

	// Insert stores a profile if its bank code is absent and reports whether
	// a row was inserted. Existing rows are left untouched.
	Insert(ctx context.Context, p *BankProfile) (bool, error)

	// GetTemplate returns a template by name, or ErrTemplateNotFound.
	GetTemplate(ctx context.Context, name string) (*Template, error)
}
