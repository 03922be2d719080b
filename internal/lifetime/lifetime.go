package lifetime

import "strings"

type Lifetime int

const (
	Transient Lifetime = iota
	Singleton
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

func Parse(s string) (Lifetime, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "transient":
		return Transient, true
	case "singleton":
		return Singleton, true
	default:
		return Transient, false
	}
}
