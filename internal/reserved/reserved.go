// Package reserved maintains the set of identifiers that can never be used
// as link slugs: a fixed blocklist plus the top-level path segments of the
// application's own route tree.
package reserved

import (
	"strings"
	"sync"
)

// staticWords are always reserved, independent of the deployed routes.
var staticWords = []string{
	"admin",
	"api",
	"app",
	"auth",
	"blog",
	"cdn",
	"dashboard",
	"dev",
	"docs",
	"ftp",
	"help",
	"login",
	"logout",
	"mail",
	"news",
	"register",
	"root",
	"shop",
	"ssl",
	"staging",
	"stats",
	"support",
	"test",
	"www",
	"domains",
	"pending",
	"settings",
	"profile",
	"account",
}

// Registry answers case-insensitive reserved-word membership queries.
// The route-derived part of the set is computed lazily on first use and
// memoized for the process lifetime; the route tree does not change
// without a redeploy, so staleness is acceptable. Safe for concurrent use.
type Registry struct {
	routeSegments func() []string

	once  sync.Once
	words map[string]struct{}
}

// NewRegistry builds a registry whose derived word set comes from
// routeSegments. The provider is invoked once, on the first IsReserved
// call; a nil provider leaves only the static set.
func NewRegistry(routeSegments func() []string) *Registry {
	return &Registry{routeSegments: routeSegments}
}

// IsReserved reports whether candidate may never be used as a slug.
func (r *Registry) IsReserved(candidate string) bool {
	r.once.Do(r.build)
	_, ok := r.words[strings.ToLower(candidate)]
	return ok
}

func (r *Registry) build() {
	r.words = make(map[string]struct{}, len(staticWords))
	for _, w := range staticWords {
		r.words[strings.ToLower(w)] = struct{}{}
	}
	if r.routeSegments == nil {
		return
	}
	for _, seg := range r.routeSegments() {
		seg = strings.ToLower(strings.Trim(seg, "/"))
		if seg == "" {
			continue
		}
		r.words[seg] = struct{}{}
	}
}
