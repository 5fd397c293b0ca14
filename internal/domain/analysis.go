package domain

import "time"

// Analysis is one stored safety-analysis result: the verdict, the
// cross-validation outcome and the rendered report for a single
// registry record.
type Analysis struct {
	ID        string                `json:"id"`
	Address   string                `json:"address"`
	Deposit   int64                 `json:"deposit"`
	Locale    Locale                `json:"locale"`
	Verdict   RiskVerdict           `json:"verdict"`
	Cross     CrossValidationResult `json:"cross"`
	Report    string                `json:"report"`
	CreatedAt time.Time             `json:"createdAt"`
}

// Subscription is a user's standing request for alerts on properties in
// a location within budget limits.
type Subscription struct {
	UserID       string    `json:"userId"`
	Location     string    `json:"location"`
	MaxDeposit   int64     `json:"maxDeposit"`   // won
	MaxMonthly   int64     `json:"maxMonthly"`   // won
	NotifyMethod string    `json:"notifyMethod"` // "slack", "kakao", "email"
	CreatedAt    time.Time `json:"createdAt"`
}

// RegistrySnapshot records the last observed state of a property's
// registry document, as a content hash.
type RegistrySnapshot struct {
	Address       string    `json:"address"`
	Hash          string    `json:"hash"`
	LastCheckedAt time.Time `json:"lastCheckedAt"`
}

// Alert is one delivered registry-change notification.
type Alert struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	Address    string    `json:"address"`
	ChangeType string    `json:"changeType"` // "mortgage", "seizure", "ownership", "registry"
	Details    string    `json:"details"`
	RiskScore  int       `json:"riskScore"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Alert status values.
const (
	AlertNotified = "notified"
	AlertPending  = "pending"
)
