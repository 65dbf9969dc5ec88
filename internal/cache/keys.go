package cache

import "fmt"

// Key namespaces shared by the cache populate and invalidation paths.
// Writers and readers must agree on these exactly or invalidation misses.

// AccountStatusKey is the cache key for an account's derived verdict.
func AccountStatusKey(platform, accountID string) string {
	return fmt.Sprintf("account:status:%s:%s", platform, accountID)
}

// EvidenceKey is the cache key for an account's evidence list.
func EvidenceKey(platform, accountID string) string {
	return fmt.Sprintf("evidence:%s:%s", platform, accountID)
}

// StatsKey is the cache key for the global aggregate counters.
func StatsKey() string {
	return "stats:global"
}

// StatsPattern matches every stats cache entry for bulk invalidation.
func StatsPattern() string {
	return "stats:*"
}

// RateLimitKey is the sorted-set key tracking one identifier's requests
// on one route.
func RateLimitKey(route, identifier string) string {
	return fmt.Sprintf("rate-limit:%s:%s", route, identifier)
}
