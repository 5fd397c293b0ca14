// Package domain defines the core types and interfaces for Young & Home.
package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
type Repository interface {
	// Analysis results
	SaveAnalysis(ctx context.Context, a *Analysis) error
	GetAnalysis(ctx context.Context, id string) (*Analysis, error)
	ListAnalysesByAddress(ctx context.Context, address string, since time.Time) ([]*Analysis, error)

	// Custom rule configurations
	SaveCustomRule(ctx context.Context, rule *CustomRule) error
	GetCustomRule(ctx context.Context, id string) (*CustomRule, error)
	ListCustomRules(ctx context.Context) ([]*CustomRule, error)
	DeleteCustomRule(ctx context.Context, id string) error

	// Listing-alert subscriptions
	SaveSubscription(ctx context.Context, sub *Subscription) error
	GetSubscription(ctx context.Context, userID string) (*Subscription, error)
	ListSubscriptions(ctx context.Context) ([]*Subscription, error)
	DeleteSubscription(ctx context.Context, userID string) error

	// Registry monitoring
	GetRegistrySnapshot(ctx context.Context, address string) (*RegistrySnapshot, error)
	SaveRegistrySnapshot(ctx context.Context, snap *RegistrySnapshot) error

	// Alert log
	SaveAlert(ctx context.Context, alert *Alert) (int64, error)
	ListAlertsByUser(ctx context.Context, userID string) ([]*Alert, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
