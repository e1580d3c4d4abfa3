package usecase

import "time"

const (
	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// BalanceCacheTTL bounds staleness of cached balance snapshots; every
	// movement invalidates the key explicitly as well.
	BalanceCacheTTL = 5 * time.Minute

	// balanceCacheKeyPrefix namespaces balance snapshots in the cache.
	balanceCacheKeyPrefix = "balance:"

	// reconciliationPageSize is how many accounts a reconciliation pass
	// loads per page.
	reconciliationPageSize = 500

	// endOfDayBatchSize caps how many due scheduled transfers one
	// end-of-day run executes.
	endOfDayBatchSize = 1000
)

func balanceCacheKey(accountID string) string {
	return balanceCacheKeyPrefix + accountID
}
