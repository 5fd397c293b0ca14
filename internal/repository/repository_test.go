package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/soccz/young-and-home/internal/domain"
)

func newTestRepo(t *testing.T) domain.Repository {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "younghome-repo-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	repo, err := New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func testAnalysis(id, address string) *domain.Analysis {
	return &domain.Analysis{
		ID:      id,
		Address: address,
		Deposit: 300_000_000,
		Locale:  domain.LocaleKO,
		Verdict: domain.RiskVerdict{
			Score: 70,
			Level: domain.LevelDanger,
			Findings: []domain.RiskFinding{
				{Category: "mortgage", Severity: domain.SeverityHigh, Description: "근저당권 2건 설정"},
			},
			EstimatedValue: 823_000_000,
			Recommendation: "계약 전 전문가 상담을 권장합니다",
		},
		Cross: domain.CrossValidationResult{
			Status:     domain.CrossDone,
			Consistent: false,
			Issues:     []string{"임대인 불일치"},
		},
		Report:    "위험 등급: 위험",
		CreatedAt: time.Now().UTC(),
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved := testAnalysis("analysis-1", "서울시 강남구 역삼동 123-45")
	if err := repo.SaveAnalysis(ctx, saved); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	got, err := repo.GetAnalysis(ctx, "analysis-1")
	if err != nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}

	if got.ID != saved.ID {
		t.Errorf("expected ID %s, got %s", saved.ID, got.ID)
	}
	if got.Address != saved.Address {
		t.Errorf("expected address %s, got %s", saved.Address, got.Address)
	}
	if got.Deposit != saved.Deposit {
		t.Errorf("expected deposit %d, got %d", saved.Deposit, got.Deposit)
	}
	if got.Locale != domain.LocaleKO {
		t.Errorf("expected locale KO, got %s", got.Locale)
	}
	if got.Verdict.Score != 70 {
		t.Errorf("expected score 70, got %d", got.Verdict.Score)
	}
	if got.Verdict.Level != domain.LevelDanger {
		t.Errorf("expected level DANGER, got %s", got.Verdict.Level)
	}
	if got.Verdict.EstimatedValue != 823_000_000 {
		t.Errorf("expected estimated value 823000000, got %d", got.Verdict.EstimatedValue)
	}
	if len(got.Verdict.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(got.Verdict.Findings))
	}
	if got.Verdict.Findings[0].Category != "mortgage" {
		t.Errorf("expected mortgage finding, got %s", got.Verdict.Findings[0].Category)
	}
	if got.Cross.Status != domain.CrossDone {
		t.Errorf("expected cross status DONE, got %s", got.Cross.Status)
	}
	if got.Cross.Consistent {
		t.Error("expected inconsistent cross result")
	}
	if got.Report != saved.Report {
		t.Errorf("expected report %q, got %q", saved.Report, got.Report)
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetAnalysis(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveAnalysisValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SaveAnalysis(ctx, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil analysis, got %v", err)
	}
	if err := repo.SaveAnalysis(ctx, &domain.Analysis{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty ID, got %v", err)
	}
}

func TestListAnalysesByAddress(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	address := "서울시 마포구 서교동 456-78"

	for i, id := range []string{"a-old", "a-mid", "a-new"} {
		a := testAnalysis(id, address)
		a.CreatedAt = time.Now().UTC().Add(time.Duration(i-3) * time.Hour)
		if err := repo.SaveAnalysis(ctx, a); err != nil {
			t.Fatalf("SaveAnalysis failed: %v", err)
		}
	}

	other := testAnalysis("a-other", "서울시 송파구 잠실동 1-1")
	if err := repo.SaveAnalysis(ctx, other); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	got, err := repo.ListAnalysesByAddress(ctx, address, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ListAnalysesByAddress failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 analyses, got %d", len(got))
	}
	// Newest first.
	if got[0].ID != "a-new" {
		t.Errorf("expected a-new first, got %s", got[0].ID)
	}

	// The since cutoff excludes older rows.
	recent, err := repo.ListAnalysesByAddress(ctx, address, time.Now().UTC().Add(-90*time.Minute))
	if err != nil {
		t.Fatalf("ListAnalysesByAddress failed: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("expected 1 recent analysis, got %d", len(recent))
	}
}

func TestCustomRuleLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rule := &domain.CustomRule{
		ID:          "max-ltv",
		Name:        "LTV 한도 초과",
		Category:    "custom",
		Severity:    domain.SeverityHigh,
		Points:      20,
		Expression:  "ltv > 0.8",
		Description: "보증금 포함 부채가 시세의 80%를 넘는 물건",
		Enabled:     true,
	}

	if err := repo.SaveCustomRule(ctx, rule); err != nil {
		t.Fatalf("SaveCustomRule failed: %v", err)
	}

	got, err := repo.GetCustomRule(ctx, "max-ltv")
	if err != nil {
		t.Fatalf("GetCustomRule failed: %v", err)
	}
	if got.Name != rule.Name || got.Points != 20 || got.Expression != "ltv > 0.8" {
		t.Errorf("rule round-trip mismatch: %+v", got)
	}
	if got.Severity != domain.SeverityHigh {
		t.Errorf("expected HIGH severity, got %s", got.Severity)
	}
	if !got.Enabled {
		t.Error("expected rule to be enabled")
	}

	// Upsert replaces in place.
	rule.Points = 35
	if err := repo.SaveCustomRule(ctx, rule); err != nil {
		t.Fatalf("SaveCustomRule upsert failed: %v", err)
	}
	got, err = repo.GetCustomRule(ctx, "max-ltv")
	if err != nil {
		t.Fatalf("GetCustomRule failed: %v", err)
	}
	if got.Points != 35 {
		t.Errorf("expected upserted points 35, got %d", got.Points)
	}

	rules, err := repo.ListCustomRules(ctx)
	if err != nil {
		t.Fatalf("ListCustomRules failed: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	// Soft delete disables the rule rather than removing the row.
	if err := repo.DeleteCustomRule(ctx, "max-ltv"); err != nil {
		t.Fatalf("DeleteCustomRule failed: %v", err)
	}
	if _, err := repo.GetCustomRule(ctx, "max-ltv"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	rules, err = repo.ListCustomRules(ctx)
	if err != nil {
		t.Fatalf("ListCustomRules failed: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("expected no enabled rules, got %d", len(rules))
	}

	// Re-saving as enabled revives it.
	if err := repo.SaveCustomRule(ctx, rule); err != nil {
		t.Fatalf("SaveCustomRule failed: %v", err)
	}
	if _, err := repo.GetCustomRule(ctx, "max-ltv"); err != nil {
		t.Errorf("expected revived rule, got %v", err)
	}
}

func TestDeleteCustomRuleNotFound(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.DeleteCustomRule(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRuleIDOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"c-third", "a-first", "b-second"} {
		rule := &domain.CustomRule{
			ID:         id,
			Name:       id,
			Severity:   domain.SeverityLow,
			Points:     5,
			Expression: "mortgage_count > 0",
			Enabled:    true,
		}
		if err := repo.SaveCustomRule(ctx, rule); err != nil {
			t.Fatalf("SaveCustomRule failed: %v", err)
		}
	}

	rules, err := repo.ListCustomRules(ctx)
	if err != nil {
		t.Fatalf("ListCustomRules failed: %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}
	if rules[0].ID != "a-first" || rules[1].ID != "b-second" || rules[2].ID != "c-third" {
		t.Errorf("expected rules in ID order, got %s, %s, %s", rules[0].ID, rules[1].ID, rules[2].ID)
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sub := &domain.Subscription{
		UserID:       "user-1",
		Location:     "마포구",
		MaxDeposit:   400_000_000,
		MaxMonthly:   500_000,
		NotifyMethod: "email",
	}

	if err := repo.SaveSubscription(ctx, sub); err != nil {
		t.Fatalf("SaveSubscription failed: %v", err)
	}

	got, err := repo.GetSubscription(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetSubscription failed: %v", err)
	}
	if got.Location != "마포구" || got.MaxDeposit != 400_000_000 {
		t.Errorf("subscription round-trip mismatch: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected created_at to be filled in on save")
	}

	// Upsert on user ID updates preferences.
	sub.Location = "강남구"
	sub.NotifyMethod = "kakao"
	if err := repo.SaveSubscription(ctx, sub); err != nil {
		t.Fatalf("SaveSubscription upsert failed: %v", err)
	}
	got, err = repo.GetSubscription(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetSubscription failed: %v", err)
	}
	if got.Location != "강남구" || got.NotifyMethod != "kakao" {
		t.Errorf("expected updated subscription, got %+v", got)
	}

	subs, err := repo.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("ListSubscriptions failed: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(subs))
	}

	if err := repo.DeleteSubscription(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteSubscription failed: %v", err)
	}
	if _, err := repo.GetSubscription(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.DeleteSubscription(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestRegistrySnapshotUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	address := "서울시 서대문구 연희동 99-1"

	if _, err := repo.GetRegistrySnapshot(ctx, address); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound before first save, got %v", err)
	}

	first := &domain.RegistrySnapshot{
		Address:       address,
		Hash:          "aaaa1111",
		LastCheckedAt: time.Now().UTC(),
	}
	if err := repo.SaveRegistrySnapshot(ctx, first); err != nil {
		t.Fatalf("SaveRegistrySnapshot failed: %v", err)
	}

	got, err := repo.GetRegistrySnapshot(ctx, address)
	if err != nil {
		t.Fatalf("GetRegistrySnapshot failed: %v", err)
	}
	if got.Hash != "aaaa1111" {
		t.Errorf("expected hash aaaa1111, got %s", got.Hash)
	}

	second := &domain.RegistrySnapshot{
		Address:       address,
		Hash:          "bbbb2222",
		LastCheckedAt: time.Now().UTC(),
	}
	if err := repo.SaveRegistrySnapshot(ctx, second); err != nil {
		t.Fatalf("SaveRegistrySnapshot upsert failed: %v", err)
	}

	got, err = repo.GetRegistrySnapshot(ctx, address)
	if err != nil {
		t.Fatalf("GetRegistrySnapshot failed: %v", err)
	}
	if got.Hash != "bbbb2222" {
		t.Errorf("expected upserted hash bbbb2222, got %s", got.Hash)
	}
}

func TestSaveAndListAlerts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, details := range []string{"근저당권 설정", "압류 등기", "소유권 이전"} {
		alert := &domain.Alert{
			UserID:     "user-1",
			Address:    "서울시 강남구 역삼동 123-45",
			ChangeType: "registry",
			Details:    details,
			RiskScore:  40 + i*10,
			Status:     domain.AlertPending,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		id, err := repo.SaveAlert(ctx, alert)
		if err != nil {
			t.Fatalf("SaveAlert failed: %v", err)
		}
		if id == 0 {
			t.Error("expected a generated alert ID")
		}
	}

	otherAlert := &domain.Alert{
		UserID:     "user-2",
		Address:    "서울시 송파구 잠실동 1-1",
		ChangeType: "registry",
		Details:    "근저당권 설정",
		Status:     domain.AlertPending,
	}
	if _, err := repo.SaveAlert(ctx, otherAlert); err != nil {
		t.Fatalf("SaveAlert failed: %v", err)
	}

	alerts, err := repo.ListAlertsByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListAlertsByUser failed: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	// Newest first.
	if alerts[0].Details != "소유권 이전" {
		t.Errorf("expected newest alert first, got %s", alerts[0].Details)
	}
	if alerts[0].RiskScore != 60 {
		t.Errorf("expected risk score 60, got %d", alerts[0].RiskScore)
	}
	if alerts[0].Status != domain.AlertPending {
		t.Errorf("expected pending status, got %s", alerts[0].Status)
	}

	if _, err := repo.SaveAlert(ctx, &domain.Alert{}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing user, got %v", err)
	}
}

func TestRepositoryPing(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := New(domain.RepositoryConfig{Driver: "oracle"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestAlertIDsUniqueUnderBurst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// A change fanning out to many subscribers saves alerts back to
	// back; every one must get its own ID even within one nanosecond.
	seen := make(map[int64]bool)
	for i := 0; i < 200; i++ {
		id, err := repo.SaveAlert(ctx, &domain.Alert{
			UserID:     "user-1",
			Address:    "서울시 강남구 역삼동 123-45",
			ChangeType: "registry",
			Details:    "근저당권 설정",
			RiskScore:  40,
			Status:     domain.AlertPending,
		})
		if err != nil {
			t.Fatalf("SaveAlert failed: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate alert ID %d", id)
		}
		seen[id] = true
	}
}
