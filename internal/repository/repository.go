// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/soccz/young-and-home/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveAnalysis stores one analysis result.
func (r *SQLRepository) SaveAnalysis(ctx context.Context, a *domain.Analysis) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("%w: analysis id is required", ErrInvalidInput)
	}

	findings, _ := json.Marshal(a.Verdict.Findings)
	cross, _ := json.Marshal(a.Cross)

	query := `
		INSERT INTO analyses (
			id, address, deposit, locale, score, level,
			estimated_value, findings, cross_result, recommendation,
			report, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		a.ID, a.Address, a.Deposit, string(a.Locale),
		a.Verdict.Score, string(a.Verdict.Level),
		a.Verdict.EstimatedValue, string(findings), string(cross),
		a.Verdict.Recommendation, a.Report, a.CreatedAt,
	)
	return err
}

// GetAnalysis retrieves an analysis by ID.
func (r *SQLRepository) GetAnalysis(ctx context.Context, id string) (*domain.Analysis, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	query := `
		SELECT id, address, deposit, locale, score, level,
			   estimated_value, findings, cross_result, recommendation,
			   report, created_at
		FROM analyses
		WHERE id = ?
	`

	var a domain.Analysis
	var locale, level, findings, cross string

	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(
		&a.ID, &a.Address, &a.Deposit, &locale,
		&a.Verdict.Score, &level,
		&a.Verdict.EstimatedValue, &findings, &cross,
		&a.Verdict.Recommendation, &a.Report, &a.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a.Locale = domain.Locale(locale)
	a.Verdict.Level = domain.RiskLevel(level)
	json.Unmarshal([]byte(findings), &a.Verdict.Findings)
	json.Unmarshal([]byte(cross), &a.Cross)

	return &a, nil
}

// ListAnalysesByAddress retrieves analyses for an address since a time.
func (r *SQLRepository) ListAnalysesByAddress(ctx context.Context, address string, since time.Time) ([]*domain.Analysis, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	}

	query := `
		SELECT id, address, deposit, locale, score, level,
			   estimated_value, findings, cross_result, recommendation,
			   report, created_at
		FROM analyses
		WHERE address = ? AND created_at >= ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), address, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*domain.Analysis
	for rows.Next() {
		var a domain.Analysis
		var locale, level, findings, cross string

		if err := rows.Scan(
			&a.ID, &a.Address, &a.Deposit, &locale,
			&a.Verdict.Score, &level,
			&a.Verdict.EstimatedValue, &findings, &cross,
			&a.Verdict.Recommendation, &a.Report, &a.CreatedAt,
		); err != nil {
			return nil, err
		}

		a.Locale = domain.Locale(locale)
		a.Verdict.Level = domain.RiskLevel(level)
		json.Unmarshal([]byte(findings), &a.Verdict.Findings)
		json.Unmarshal([]byte(cross), &a.Cross)
		analyses = append(analyses, &a)
	}

	return analyses, rows.Err()
}

// SaveCustomRule stores a custom rule configuration, upserting on ID.
func (r *SQLRepository) SaveCustomRule(ctx context.Context, rule *domain.CustomRule) error {
	if rule == nil || rule.ID == "" {
		return fmt.Errorf("%w: rule id is required", ErrInvalidInput)
	}

	enabled := 0
	if rule.Enabled {
		enabled = 1
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO custom_rules (
			id, name, category, severity, points, expression, description, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			severity = excluded.severity,
			points = excluded.points,
			expression = excluded.expression,
			description = excluded.description,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		rule.ID, rule.Name, rule.Category, string(rule.Severity),
		rule.Points, rule.Expression, rule.Description, enabled,
		now, now,
	)
	return err
}

// GetCustomRule retrieves an enabled custom rule by ID.
func (r *SQLRepository) GetCustomRule(ctx context.Context, id string) (*domain.CustomRule, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	query := `
		SELECT id, name, category, severity, points, expression, description, enabled
		FROM custom_rules
		WHERE id = ? AND enabled = 1
	`

	var rule domain.CustomRule
	var severity string
	var enabled int

	err := r.db.QueryRowContext(ctx, r.rebind(query), id).Scan(
		&rule.ID, &rule.Name, &rule.Category, &severity,
		&rule.Points, &rule.Expression, &rule.Description, &enabled,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rule.Severity = domain.Severity(severity)
	rule.Enabled = enabled == 1

	return &rule, nil
}

// ListCustomRules retrieves all enabled custom rules.
func (r *SQLRepository) ListCustomRules(ctx context.Context) ([]*domain.CustomRule, error) {
	query := `
		SELECT id, name, category, severity, points, expression, description, enabled
		FROM custom_rules
		WHERE enabled = 1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*domain.CustomRule
	for rows.Next() {
		var rule domain.CustomRule
		var severity string
		var enabled int

		if err := rows.Scan(
			&rule.ID, &rule.Name, &rule.Category, &severity,
			&rule.Points, &rule.Expression, &rule.Description, &enabled,
		); err != nil {
			return nil, err
		}

		rule.Severity = domain.Severity(severity)
		rule.Enabled = enabled == 1
		rules = append(rules, &rule)
	}

	return rules, rows.Err()
}

// DeleteCustomRule soft-deletes a custom rule by setting enabled = 0.
func (r *SQLRepository) DeleteCustomRule(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}

	query := `
		UPDATE custom_rules
		SET enabled = 0, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// SaveSubscription stores a subscription, upserting on user ID.
func (r *SQLRepository) SaveSubscription(ctx context.Context, sub *domain.Subscription) error {
	if sub == nil || sub.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	createdAt := sub.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO subscriptions (user_id, location, max_deposit, max_monthly, notify_method, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			location = excluded.location,
			max_deposit = excluded.max_deposit,
			max_monthly = excluded.max_monthly,
			notify_method = excluded.notify_method
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		sub.UserID, sub.Location, sub.MaxDeposit, sub.MaxMonthly,
		sub.NotifyMethod, createdAt,
	)
	return err
}

// GetSubscription retrieves a subscription by user ID.
func (r *SQLRepository) GetSubscription(ctx context.Context, userID string) (*domain.Subscription, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	query := `
		SELECT user_id, location, max_deposit, max_monthly, notify_method, created_at
		FROM subscriptions
		WHERE user_id = ?
	`

	var sub domain.Subscription
	err := r.db.QueryRowContext(ctx, r.rebind(query), userID).Scan(
		&sub.UserID, &sub.Location, &sub.MaxDeposit, &sub.MaxMonthly,
		&sub.NotifyMethod, &sub.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

// ListSubscriptions retrieves all subscriptions.
func (r *SQLRepository) ListSubscriptions(ctx context.Context) ([]*domain.Subscription, error) {
	query := `
		SELECT user_id, location, max_deposit, max_monthly, notify_method, created_at
		FROM subscriptions
		ORDER BY user_id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(
			&sub.UserID, &sub.Location, &sub.MaxDeposit, &sub.MaxMonthly,
			&sub.NotifyMethod, &sub.CreatedAt,
		); err != nil {
			return nil, err
		}
		subs = append(subs, &sub)
	}

	return subs, rows.Err()
}

// DeleteSubscription removes a subscription.
func (r *SQLRepository) DeleteSubscription(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	result, err := r.db.ExecContext(ctx, r.rebind(`DELETE FROM subscriptions WHERE user_id = ?`), userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// GetRegistrySnapshot retrieves the last observed registry hash for an address.
func (r *SQLRepository) GetRegistrySnapshot(ctx context.Context, address string) (*domain.RegistrySnapshot, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	}

	query := `
		SELECT address, hash, last_checked_at
		FROM registry_snapshots
		WHERE address = ?
	`

	var snap domain.RegistrySnapshot
	err := r.db.QueryRowContext(ctx, r.rebind(query), address).Scan(
		&snap.Address, &snap.Hash, &snap.LastCheckedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &snap, nil
}

// SaveRegistrySnapshot stores the observed registry hash, upserting on address.
func (r *SQLRepository) SaveRegistrySnapshot(ctx context.Context, snap *domain.RegistrySnapshot) error {
	if snap == nil || snap.Address == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO registry_snapshots (address, hash, last_checked_at)
		VALUES (?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			hash = excluded.hash,
			last_checked_at = excluded.last_checked_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		snap.Address, snap.Hash, snap.LastCheckedAt,
	)
	return err
}

// lastAlertID backs the generated alert IDs. Time-based IDs keep the
// insert portable across both drivers, but a burst of alerts can land
// in the same nanosecond; the counter bumps past the previous ID so
// every generated ID is unique within the process.
var lastAlertID atomic.Int64

func nextAlertID() int64 {
	for {
		id := time.Now().UTC().UnixNano()
		last := lastAlertID.Load()
		if id <= last {
			id = last + 1
		}
		if lastAlertID.CompareAndSwap(last, id) {
			return id
		}
	}
}

// SaveAlert stores an alert log entry and returns its ID.
func (r *SQLRepository) SaveAlert(ctx context.Context, alert *domain.Alert) (int64, error) {
	if alert == nil || alert.UserID == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	id := alert.ID
	if id == 0 {
		id = nextAlertID()
	}

	createdAt := alert.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO alerts (id, user_id, address, change_type, details, risk_score, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		id, alert.UserID, alert.Address, alert.ChangeType,
		alert.Details, alert.RiskScore, alert.Status, createdAt,
	)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// ListAlertsByUser retrieves a user's alerts, newest first.
func (r *SQLRepository) ListAlertsByUser(ctx context.Context, userID string) ([]*domain.Alert, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	query := `
		SELECT id, user_id, address, change_type, details, risk_score, status, created_at
		FROM alerts
		WHERE user_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		var a domain.Alert
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Address, &a.ChangeType,
			&a.Details, &a.RiskScore, &a.Status, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, &a)
	}

	return alerts, rows.Err()
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
