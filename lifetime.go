package stiletto

import "github.com/danpasecinic/stiletto/internal/lifetime"

type Lifetime = lifetime.Lifetime

const (
	Transient = lifetime.Transient
	Singleton = lifetime.Singleton
)

// ParseLifetime accepts "transient" or "singleton", case-insensitively.
func ParseLifetime(s string) (Lifetime, bool) {
	return lifetime.Parse(s)
}
