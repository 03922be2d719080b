package stiletto

import (
	"time"
)

// ResolveHook observes every top-level resolution. Nested dependency
// resolutions are not reported separately.
type ResolveHook func(key string, duration time.Duration, err error)

type BindHook func(key string, lifetime Lifetime)
