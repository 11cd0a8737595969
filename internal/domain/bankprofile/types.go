// Package bankprofile loads, caches, searches and imports bank-specific
// statement parsing configuration.
package bankprofile

import (
	"time"

	"github.com/google/uuid"
)

// PatternBlock is one JSON-typed configuration block of a profile. Blocks are
// deep-merged with template defaults at import time and validated against the
// schema of their declared parsing strategy.
type PatternBlock map[string]any

// BankProfile is a named, versioned bundle of detection and parsing
// configuration for one bank's statement layout. Profiles are never hard
// deleted; retirement is IsActive=false.
type BankProfile struct {
	ID          uuid.UUID `json:"id"`
	BankCode    string    `json:"bankCode"`
	BankName    string    `json:"bankName"`
	DisplayName string    `json:"displayName"`
	CountryCode string    `json:"countryCode"`
	Currency    string    `json:"currency"`
	SwiftCode   string    `json:"swiftCode"`
	Version     int       `json:"version"`

	IsActive            bool    `json:"isActive"`
	IsVerified          bool    `json:"isVerified"`
	ConfidenceThreshold float64 `json:"confidenceThreshold"`

	DetectPatterns      PatternBlock `json:"detectPatterns"`
	TransactionPatterns PatternBlock `json:"transactionPatterns"`
	ValidationRules     PatternBlock `json:"validationRules"`
	RegionalConfig      PatternBlock `json:"regionalConfig"`
	ColumnConfig        PatternBlock `json:"columnConfig"`

	Aliases []string `json:"aliases,omitempty"`

	// Usage telemetry, updated after each parse attempt.
	UsageCount   int64      `json:"usageCount"`
	SuccessCount int64      `json:"successCount"`
	SuccessRate  float64    `json:"successRate"`
	LastUsedAt   *time.Time `json:"lastUsedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Template is a reusable, bank-agnostic bundle of pattern blocks merged into
// specific profiles at import time. Per-bank overrides win on conflicts.
type Template struct {
	ID                  uuid.UUID    `json:"id"`
	Name                string       `json:"name"`
	DetectPatterns      PatternBlock `json:"detectPatterns"`
	TransactionPatterns PatternBlock `json:"transactionPatterns"`
	ValidationRules     PatternBlock `json:"validationRules"`
	RegionalConfig      PatternBlock `json:"regionalConfig"`
	ColumnConfig        PatternBlock `json:"columnConfig"`
}
