package bankprofile

import (
	"fmt"
	"regexp"
)

// Supported transaction parsing strategies. The strategy tag in
// transactionPatterns selects which schema the rule matcher applies.
const (
	StrategyRegex    = "regex"
	StrategyColumnar = "columnar"
	StrategyKeyValue = "key-value"
)

var knownStrategies = map[string]struct{}{
	StrategyRegex:    {},
	StrategyColumnar: {},
	StrategyKeyValue: {},
}

// ValidateBlocks checks a profile's pattern blocks at import time so a
// malformed profile fails the import row instead of failing mid-parse later.
func ValidateBlocks(p *BankProfile) error {
	if strategy, ok := p.TransactionPatterns["strategy"]; ok {
		s, isString := strategy.(string)
		if !isString {
			return fmt.Errorf("transactionPatterns.strategy must be a string, got %T", strategy)
		}
		if _, known := knownStrategies[s]; !known {
			return fmt.Errorf("unknown parsing strategy %q", s)
		}
	}

	if err := validateRegexList(p.DetectPatterns, "headerPatterns"); err != nil {
		return fmt.Errorf("detectPatterns: %w", err)
	}
	for _, key := range []string{"datePattern", "amountPattern", "linePattern"} {
		if err := validateRegexValue(p.TransactionPatterns, key); err != nil {
			return fmt.Errorf("transactionPatterns: %w", err)
		}
	}

	return nil
}

func validateRegexValue(block PatternBlock, key string) error {
	raw, ok := block[key]
	if !ok {
		return nil
	}
	expr, isString := raw.(string)
	if !isString {
		return fmt.Errorf("%s must be a string, got %T", key, raw)
	}
	if _, err := regexp.Compile(expr); err != nil {
		return fmt.Errorf("%s is not a valid regex: %w", key, err)
	}
	return nil
}

func validateRegexList(block PatternBlock, key string) error {
	raw, ok := block[key]
	if !ok {
		return nil
	}
	list, isList := raw.([]any)
	if !isList {
		return fmt.Errorf("%s must be an array, got %T", key, raw)
	}
	for i, item := range list {
		expr, isString := item.(string)
		if !isString {
			return fmt.Errorf("%s[%d] must be a string, got %T", key, i, item)
		}
		if _, err := regexp.Compile(expr); err != nil {
			return fmt.Errorf("%s[%d] is not a valid regex: %w", key, i, err)
		}
	}
	return nil
}
