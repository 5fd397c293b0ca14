// Package monitor provides registry change detection and subscription
// alerting for tracked properties.
package monitor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soccz/young-and-home/internal/domain"
	"github.com/soccz/young-and-home/internal/repository"
	"github.com/soccz/young-and-home/internal/risk"
)

// Service re-reads a property registry, compares it against the last
// observed snapshot and publishes a change event when the registry moved.
type Service struct {
	repo   domain.Repository
	bus    domain.EventBus
	scorer *risk.Scorer
}

// NewService creates a new registry monitoring service.
func NewService(repo domain.Repository, bus domain.EventBus, scorer *risk.Scorer) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		scorer: scorer,
	}
}

// CheckResult describes the outcome of a single registry check.
type CheckResult struct {
	Address      string           `json:"address"`
	Changed      bool             `json:"changed"`
	FirstCheck   bool             `json:"firstCheck"`
	PreviousHash string           `json:"previousHash,omitempty"`
	CurrentHash  string           `json:"currentHash"`
	RiskScore    int              `json:"riskScore"`
	RiskLevel    domain.RiskLevel `json:"riskLevel"`
	CheckedAt    time.Time        `json:"checkedAt"`
}

// HashRegistry computes a stable fingerprint of a registry record.
// Any change in mortgages, seizures, ownership or prior leases moves
// the hash.
func HashRegistry(registry *domain.RegistryRecord) string {
	data, _ := json.Marshal(registry)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CheckRegistry compares the given registry against the stored snapshot
// for the address, updates the snapshot and publishes a change event
// when the registry differs from the last observation.
func (s *Service) CheckRegistry(ctx context.Context, address string, registry *domain.RegistryRecord) (*CheckResult, error) {
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}

	now := time.Now().UTC()
	currentHash := HashRegistry(registry)
	verdict := s.scorer.Score(registry, 0)

	result := &CheckResult{
		Address:     address,
		CurrentHash: currentHash,
		RiskScore:   verdict.Score,
		RiskLevel:   verdict.Level,
		CheckedAt:   now,
	}

	snap, err := s.repo.GetRegistrySnapshot(ctx, address)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		result.FirstCheck = true
	case err != nil:
		return nil, fmt.Errorf("failed to load registry snapshot: %w", err)
	default:
		result.PreviousHash = snap.Hash
		result.Changed = snap.Hash != currentHash
	}

	if err := s.repo.SaveRegistrySnapshot(ctx, &domain.RegistrySnapshot{
		Address:       address,
		Hash:          currentHash,
		LastCheckedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to save registry snapshot: %w", err)
	}

	if result.Changed {
		event := domain.RegistryChangedEvent{
			Address:      address,
			PreviousHash: result.PreviousHash,
			CurrentHash:  currentHash,
			RiskScore:    verdict.Score,
			RiskLevel:    string(verdict.Level),
		}
		payload, _ := json.Marshal(event)
		if err := s.bus.Publish(ctx, domain.TopicRegistryChanged, payload); err != nil {
			slog.Error("failed to publish registry change",
				"address", address,
				"error", err,
			)
		}
	}

	slog.Info("registry checked",
		"address", address,
		"changed", result.Changed,
		"first_check", result.FirstCheck,
		"risk_score", result.RiskScore,
	)

	return result, nil
}
