package storage

import "context"

// HealthCheck provides database health checking.
type HealthCheck interface {
	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Stats returns database connection pool statistics.
	Stats() *DBStats
}

// DBStats contains database connection pool statistics.
type DBStats struct {
	// MaxOpenConnections is the maximum number of open connections.
	MaxOpenConnections int `json:"max_open_connections"`

	// OpenConnections is the current number of open connections.
	OpenConnections int `json:"open_connections"`

	// InUse is the number of connections currently in use.
	InUse int `json:"in_use"`

	// Idle is the number of idle connections.
	Idle int `json:"idle"`

	// WaitCount is the total number of connections waited for.
	WaitCount int64 `json:"wait_count"`

	// WaitDuration is the total time blocked waiting for a new connection.
	WaitDuration int64 `json:"wait_duration_ns"` // nanoseconds
}
