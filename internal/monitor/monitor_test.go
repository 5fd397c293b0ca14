package monitor

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/soccz/young-and-home/internal/bus"
	"github.com/soccz/young-and-home/internal/cache"
	"github.com/soccz/young-and-home/internal/domain"
	"github.com/soccz/young-and-home/internal/repository"
	"github.com/soccz/young-and-home/internal/risk"
)

func newTestRepo(t *testing.T) domain.Repository {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "younghome-monitor-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	repo, err := repository.New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func cleanRegistry(address string) *domain.RegistryRecord {
	return &domain.RegistryRecord{
		PropertyAddress: address,
		OwnerName:       "김건물",
		PropertyType:    "다세대주택",
		Area:            "59.5㎡",
	}
}

func TestCheckRegistry(t *testing.T) {
	repo := newTestRepo(t)
	eventBus := bus.NewChannelBus(100)
	defer eventBus.Close()

	svc := NewService(repo, eventBus, risk.NewScorer(risk.DefaultScorerConfig()))
	ctx := context.Background()
	address := "서울시 마포구 서교동 456-78"

	t.Run("FirstCheck", func(t *testing.T) {
		result, err := svc.CheckRegistry(ctx, address, cleanRegistry(address))
		if err != nil {
			t.Fatalf("CheckRegistry failed: %v", err)
		}

		if !result.FirstCheck {
			t.Error("expected first check")
		}
		if result.Changed {
			t.Error("first check must not report a change")
		}
		if result.CurrentHash == "" {
			t.Error("expected a registry hash")
		}
	})

	t.Run("UnchangedRegistry", func(t *testing.T) {
		result, err := svc.CheckRegistry(ctx, address, cleanRegistry(address))
		if err != nil {
			t.Fatalf("CheckRegistry failed: %v", err)
		}

		if result.FirstCheck {
			t.Error("snapshot should already exist")
		}
		if result.Changed {
			t.Error("identical registry must not report a change")
		}
	})

	t.Run("ChangedRegistry", func(t *testing.T) {
		registry := cleanRegistry(address)
		registry.Mortgages = []domain.Mortgage{
			{Creditor: "국민은행", Amount: 250_000_000, Date: "2024-03-15"},
		}

		result, err := svc.CheckRegistry(ctx, address, registry)
		if err != nil {
			t.Fatalf("CheckRegistry failed: %v", err)
		}

		if !result.Changed {
			t.Error("expected a change after adding a mortgage")
		}
		if result.PreviousHash == result.CurrentHash {
			t.Error("hash should move when the registry changes")
		}
		if result.RiskScore == 0 {
			t.Error("expected a non-zero risk score with a mortgage present")
		}
	})

	t.Run("RequiresAddress", func(t *testing.T) {
		if _, err := svc.CheckRegistry(ctx, "", cleanRegistry("")); err == nil {
			t.Error("expected error for empty address")
		}
	})

	t.Run("RequiresRegistry", func(t *testing.T) {
		if _, err := svc.CheckRegistry(ctx, address, nil); err == nil {
			t.Error("expected error for nil registry")
		}
	})
}

func TestHashRegistry(t *testing.T) {
	a := cleanRegistry("서울시 마포구 서교동 456-78")
	b := cleanRegistry("서울시 마포구 서교동 456-78")

	if HashRegistry(a) != HashRegistry(b) {
		t.Error("identical registries must hash identically")
	}

	b.Seizures = []domain.Seizure{
		{Kind: domain.KindSeizure, Creditor: "서울지방세무서", Amount: 5_000_000},
	}

	if HashRegistry(a) == HashRegistry(b) {
		t.Error("a seizure must move the hash")
	}
}

func TestWatcherCreatesAlerts(t *testing.T) {
	repo := newTestRepo(t)
	eventBus := bus.NewChannelBus(100)
	defer eventBus.Close()

	lru := cache.NewLRUCache(100)
	defer lru.Close()

	ctx := context.Background()
	address := "서울시 마포구 서교동 456-78"

	// A subscriber watching the district.
	err := repo.SaveSubscription(ctx, &domain.Subscription{
		UserID:       "user-001",
		Location:     "마포구",
		MaxDeposit:   300_000_000,
		NotifyMethod: "push",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("SaveSubscription failed: %v", err)
	}

	// A subscriber watching a different district.
	err = repo.SaveSubscription(ctx, &domain.Subscription{
		UserID:       "user-002",
		Location:     "강남구",
		MaxDeposit:   500_000_000,
		NotifyMethod: "push",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("SaveSubscription failed: %v", err)
	}

	watcher := NewWatcher(eventBus, repo, lru, domain.MonitoringConfig{
		AlertWindowSecs:    3600,
		MaxAlertsPerWindow: 3,
	}, nil)
	if err := watcher.Start(); err != nil {
		t.Fatalf("watcher start failed: %v", err)
	}
	defer watcher.Stop()

	svc := NewService(repo, eventBus, risk.NewScorer(risk.DefaultScorerConfig()))

	// Baseline, then a changed registry to trigger the event.
	if _, err := svc.CheckRegistry(ctx, address, cleanRegistry(address)); err != nil {
		t.Fatalf("baseline check failed: %v", err)
	}

	changed := cleanRegistry(address)
	changed.Seizures = []domain.Seizure{
		{Kind: domain.KindSeizure, Creditor: "서울지방세무서", Amount: 5_000_000},
	}
	result, err := svc.CheckRegistry(ctx, address, changed)
	if err != nil {
		t.Fatalf("changed check failed: %v", err)
	}
	if !result.Changed {
		t.Fatal("expected registry change")
	}

	// The watcher processes asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	var alerts []*domain.Alert
	for time.Now().Before(deadline) {
		alerts, err = repo.ListAlertsByUser(ctx, "user-001")
		if err != nil {
			t.Fatalf("ListAlertsByUser failed: %v", err)
		}
		if len(alerts) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert for user-001, got %d", len(alerts))
	}
	if alerts[0].Address != address {
		t.Errorf("expected address %s, got %s", address, alerts[0].Address)
	}
	if alerts[0].Status != domain.AlertPending {
		t.Errorf("expected status %s, got %s", domain.AlertPending, alerts[0].Status)
	}
	if alerts[0].RiskScore != result.RiskScore {
		t.Errorf("expected risk score %d, got %d", result.RiskScore, alerts[0].RiskScore)
	}

	// The non-matching subscriber gets nothing.
	other, err := repo.ListAlertsByUser(ctx, "user-002")
	if err != nil {
		t.Fatalf("ListAlertsByUser failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no alerts for user-002, got %d", len(other))
	}
}

func TestWatcherSuppressesAlertBursts(t *testing.T) {
	repo := newTestRepo(t)
	eventBus := bus.NewChannelBus(100)
	defer eventBus.Close()

	lru := cache.NewLRUCache(100)
	defer lru.Close()

	ctx := context.Background()
	address := "서울시 강남구 역삼동 123-45"

	err := repo.SaveSubscription(ctx, &domain.Subscription{
		UserID:       "user-003",
		Location:     "강남구",
		NotifyMethod: "push",
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("SaveSubscription failed: %v", err)
	}

	watcher := NewWatcher(eventBus, repo, lru, domain.MonitoringConfig{
		AlertWindowSecs:    3600,
		MaxAlertsPerWindow: 1,
	}, nil)
	if err := watcher.Start(); err != nil {
		t.Fatalf("watcher start failed: %v", err)
	}
	defer watcher.Stop()

	svc := NewService(repo, eventBus, risk.NewScorer(risk.DefaultScorerConfig()))

	if _, err := svc.CheckRegistry(ctx, address, cleanRegistry(address)); err != nil {
		t.Fatalf("baseline check failed: %v", err)
	}

	// Two changes in a row; only the first may alert.
	for i, amount := range []int64{100_000_000, 200_000_000} {
		registry := cleanRegistry(address)
		registry.Mortgages = []domain.Mortgage{
			{Creditor: "국민은행", Amount: amount, Date: "2024-03-15"},
		}
		result, err := svc.CheckRegistry(ctx, address, registry)
		if err != nil {
			t.Fatalf("check %d failed: %v", i, err)
		}
		if !result.Changed {
			t.Fatalf("check %d: expected change", i)
		}
	}

	time.Sleep(200 * time.Millisecond)

	alerts, err := repo.ListAlertsByUser(ctx, "user-003")
	if err != nil {
		t.Fatalf("ListAlertsByUser failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Errorf("expected 1 alert after suppression, got %d", len(alerts))
	}
}
