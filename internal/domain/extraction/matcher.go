package extraction

import (
	"context"
	"time"

	"github.com/statementdesk/ingest/internal/domain/statement"
)

// MatchOptions tunes a rule-matching run.
type MatchOptions struct {
	LocaleHint          string
	ConfidenceThreshold float64
}

// MatchError is one error entry reported by the rule matcher.
type MatchError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

// MatchOutcome is the rule matcher's result. The pipeline forwards it without
// inspecting its internals.
type MatchOutcome struct {
	Transactions []statement.Transaction  `json:"transactions"`
	Summary      statement.Summary        `json:"summary"`
	Success      bool                     `json:"success"`
	Errors       []MatchError             `json:"errors,omitempty"`
	Warnings     []string                 `json:"warnings,omitempty"`
	StageTimings map[string]time.Duration `json:"stageTimings,omitempty"`
}

// RuleMatcher is the external transaction-extraction service. The pipeline
// treats it as an opaque collaborator: fragments in, structured result out.
type RuleMatcher interface {
	ProcessDocument(ctx context.Context, documentName string, fragments []TextFragment, opts MatchOptions) (*MatchOutcome, error)
}
