package api

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

const (
	MaxRankSymbols      = 50
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 500
)

// Validator handles validation logic separate from HTTP concerns
type Validator struct {
	supportedPeriods   map[string]bool
	supportedIntervals map[string]bool
	symbolRegex        *regexp.Regexp
}

var (
	validatorInstance *Validator
	validatorOnce     sync.Once
)

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		validatorInstance = &Validator{
			supportedPeriods: set("1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"),
			supportedIntervals: set("1m", "2m", "5m", "15m", "30m", "60m", "90m", "1h",
				"1d", "5d", "1wk", "1mo", "3mo"),
			// Tickers, indices (^GSPC), futures (ES=F), share classes (BRK-B, BRK.B).
			symbolRegex: regexp.MustCompile(`^[A-Za-z0-9^.=\-]{1,20}$`),
		}
	})
	return validatorInstance
}

// ValidateSymbol sanitizes and validates a single ticker symbol.
func (v *Validator) ValidateSymbol(symbol string) (string, error) {
	clean := v.sanitizeInput(symbol)
	if err := v.validateSymbol(clean); err != nil {
		return "", err
	}
	return clean, nil
}

// ValidateAnalyzeRequest validates the symbol, period and interval of a single-symbol request.
func (v *Validator) ValidateAnalyzeRequest(symbol, period, interval string) (string, string, string, error) {
	cleanSymbol := v.sanitizeInput(symbol)
	if err := v.validateSymbol(cleanSymbol); err != nil {
		return "", "", "", err
	}
	cleanPeriod, cleanInterval, err := v.validateRange(period, interval)
	if err != nil {
		return "", "", "", err
	}
	return cleanSymbol, cleanPeriod, cleanInterval, nil
}

// ValidateRankRequest validates a batch ranking request.
func (v *Validator) ValidateRankRequest(symbols []string, period, interval string) ([]string, string, string, error) {
	if len(symbols) == 0 {
		return nil, "", "", errors.New("symbols list must not be empty")
	}
	if len(symbols) > MaxRankSymbols {
		return nil, "", "", fmt.Errorf("at most %d symbols per request, got %d", MaxRankSymbols, len(symbols))
	}
	clean := make([]string, len(symbols))
	for i, s := range symbols {
		clean[i] = v.sanitizeInput(s)
		if err := v.validateSymbol(clean[i]); err != nil {
			return nil, "", "", fmt.Errorf("symbols[%d]: %w", i, err)
		}
	}
	cleanPeriod, cleanInterval, err := v.validateRange(period, interval)
	if err != nil {
		return nil, "", "", err
	}
	return clean, cleanPeriod, cleanInterval, nil
}

// ValidateHistoryRequest validates the symbol and optional limit of a history request.
func (v *Validator) ValidateHistoryRequest(symbol, limitStr string) (string, int, error) {
	cleanSymbol := v.sanitizeInput(symbol)
	if err := v.validateSymbol(cleanSymbol); err != nil {
		return "", 0, err
	}
	limitStr = v.sanitizeInput(limitStr)
	if limitStr == "" {
		return cleanSymbol, DefaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return "", 0, errors.New("limit must be a valid number")
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return "", 0, fmt.Errorf("limit must be between 1 and %d", MaxHistoryLimit)
	}
	return cleanSymbol, limit, nil
}

// sanitizeInput trims whitespace, strips control characters and caps the length.
func (v *Validator) sanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)
	if len(input) > 100 {
		input = input[:100]
	}
	return input
}

func (v *Validator) validateSymbol(symbol string) error {
	if symbol == "" {
		return errors.New("symbol parameter is required")
	}
	if !v.symbolRegex.MatchString(symbol) {
		return fmt.Errorf("invalid symbol %q: 1-20 characters of letters, digits, '^', '.', '=' or '-'", symbol)
	}
	return nil
}

func (v *Validator) validateRange(period, interval string) (string, string, error) {
	period = v.sanitizeInput(period)
	interval = v.sanitizeInput(interval)
	if !v.supportedPeriods[period] {
		return "", "", fmt.Errorf("invalid period '%s'", period)
	}
	if !v.supportedIntervals[interval] {
		return "", "", fmt.Errorf("invalid interval '%s'", interval)
	}
	return period, interval, nil
}
