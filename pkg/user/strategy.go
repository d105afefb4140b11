package user

import (
	"fmt"
	"strings"
)

// IDStrategy decides when two user ids name the same user.
type IDStrategy interface {
	Equals(a, b string) bool
	// Key returns the canonical form used to index records.
	Key(id string) string
}

type caseInsensitive struct{}

func (caseInsensitive) Equals(a, b string) bool { return strings.EqualFold(a, b) }
func (caseInsensitive) Key(id string) string    { return strings.ToLower(id) }

type caseSensitive struct{}

func (caseSensitive) Equals(a, b string) bool { return a == b }
func (caseSensitive) Key(id string) string    { return id }

var (
	CaseInsensitive IDStrategy = caseInsensitive{}
	CaseSensitive   IDStrategy = caseSensitive{}
)

// StrategyByName maps a configuration value onto an IDStrategy. An empty
// name selects CaseInsensitive.
func StrategyByName(name string) (IDStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "case-insensitive", "insensitive":
		return CaseInsensitive, nil
	case "case-sensitive", "sensitive":
		return CaseSensitive, nil
	default:
		return nil, fmt.Errorf("unsupported id strategy: %s (supported: case-insensitive, case-sensitive)", name)
	}
}
