package repository

// Schema definitions for the Young & Home database.
// Compatible with both SQLite and PostgreSQL.

const schemaAnalyses = `
CREATE TABLE IF NOT EXISTS analyses (
    id TEXT PRIMARY KEY,
    address TEXT NOT NULL,
    deposit BIGINT NOT NULL,
    locale TEXT NOT NULL,
    score INTEGER NOT NULL,
    level TEXT NOT NULL,
    estimated_value BIGINT NOT NULL,
    findings TEXT NOT NULL,
    cross_result TEXT NOT NULL,
    recommendation TEXT NOT NULL,
    report TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_address ON analyses(address);
CREATE INDEX IF NOT EXISTS idx_analyses_level ON analyses(level);
CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
`

const schemaCustomRules = `
CREATE TABLE IF NOT EXISTS custom_rules (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    category TEXT NOT NULL,
    severity TEXT NOT NULL,
    points INTEGER NOT NULL,
    expression TEXT NOT NULL,
    description TEXT,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_custom_rules_enabled ON custom_rules(enabled);
`

const schemaSubscriptions = `
CREATE TABLE IF NOT EXISTS subscriptions (
    user_id TEXT PRIMARY KEY,
    location TEXT NOT NULL,
    max_deposit BIGINT NOT NULL,
    max_monthly BIGINT NOT NULL,
    notify_method TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_subscriptions_location ON subscriptions(location);
`

const schemaRegistrySnapshots = `
CREATE TABLE IF NOT EXISTS registry_snapshots (
    address TEXT PRIMARY KEY,
    hash TEXT NOT NULL,
    last_checked_at TIMESTAMP NOT NULL
);
`

const schemaAlerts = `
CREATE TABLE IF NOT EXISTS alerts (
    id BIGINT PRIMARY KEY,
    user_id TEXT NOT NULL,
    address TEXT NOT NULL,
    change_type TEXT NOT NULL,
    details TEXT,
    risk_score INTEGER NOT NULL,
    status TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_user ON alerts(user_id);
CREATE INDEX IF NOT EXISTS idx_alerts_address ON alerts(address);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaAnalyses,
		schemaCustomRules,
		schemaSubscriptions,
		schemaRegistrySnapshots,
		schemaAlerts,
	}
}
