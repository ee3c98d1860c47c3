package harness

import (
	"fmt"
	"strings"
)

// KeyStrategy produces message keys and states the contract a consumed
// key must satisfy.
type KeyStrategy interface {
	// Key returns the key of message index sent with correlationID.
	Key(index int, correlationID string) string

	// Valid reports whether key is acceptable for message index.
	Valid(index int, key string) bool

	// Contract names the key check in reports.
	Contract() string
}

// PrefixKeys keys every message with Prefix followed by its correlation id.
type PrefixKeys struct {
	Prefix string
}

// Key implements KeyStrategy.
func (k PrefixKeys) Key(_ int, correlationID string) string {
	return k.Prefix + correlationID
}

// Valid implements KeyStrategy.
func (k PrefixKeys) Valid(_ int, key string) bool {
	return strings.HasPrefix(key, k.Prefix)
}

// Contract implements KeyStrategy.
func (k PrefixKeys) Contract() string {
	return fmt.Sprintf("key starts with '%s' string", k.Prefix)
}

// AlternatingKeys keys even message indexes with Even and odd ones with Odd.
type AlternatingKeys struct {
	Even, Odd string
}

// Key implements KeyStrategy.
func (k AlternatingKeys) Key(index int, _ string) string {
	if index%2 == 0 {
		return k.Even
	}
	return k.Odd
}

// Valid implements KeyStrategy.
func (k AlternatingKeys) Valid(index int, key string) bool {
	return key == k.Key(index, "")
}

// Contract implements KeyStrategy.
func (k AlternatingKeys) Contract() string {
	return fmt.Sprintf("key is '%s' on even and '%s' on odd index", k.Even, k.Odd)
}

func newKeyStrategy(cfg Config) (KeyStrategy, error) {
	switch strings.ToLower(cfg.KeyStrategy) {
	case KeyStrategyPrefix:
		if cfg.KeyPrefix == "" {
			return nil, fmt.Errorf("%w: key prefix is empty", ErrInvalidConfig)
		}
		return PrefixKeys{Prefix: cfg.KeyPrefix}, nil
	case KeyStrategyAlternating:
		if len(cfg.AlternatingKeys) != 2 || cfg.AlternatingKeys[0] == cfg.AlternatingKeys[1] {
			return nil, fmt.Errorf("%w: alternating keys need two distinct values, got %v", ErrInvalidConfig, cfg.AlternatingKeys)
		}
		return AlternatingKeys{Even: cfg.AlternatingKeys[0], Odd: cfg.AlternatingKeys[1]}, nil
	}
	return nil, fmt.Errorf("%w: unknown key strategy %q", ErrInvalidConfig, cfg.KeyStrategy)
}
