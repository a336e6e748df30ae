package utils

import (
	"context"
	"time"
)

// DefaultQueryTimeout bounds ordinary request-path queries.
const DefaultQueryTimeout = 30 * time.Second

// SlowQueryTimeout bounds export and reporting queries that scan whole tables.
const SlowQueryTimeout = 60 * time.Second

// GetQueryContext returns a context with a timeout for database queries.
func GetQueryContext(parentCtx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return context.WithTimeout(parentCtx, timeout)
}

// GetDefaultQueryContext returns a context with the default timeout.
func GetDefaultQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return GetQueryContext(parentCtx, DefaultQueryTimeout)
}

// GetSlowQueryContext returns a context with the export/reporting timeout.
func GetSlowQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return GetQueryContext(parentCtx, SlowQueryTimeout)
}
