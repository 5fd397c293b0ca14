package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soccz/young-and-home/internal/domain"
	"github.com/soccz/young-and-home/internal/metrics"
	"github.com/soccz/young-and-home/internal/monitor"
	"github.com/soccz/young-and-home/internal/repository"
	"github.com/soccz/young-and-home/internal/risk"
	"github.com/soccz/young-and-home/internal/sample"
)

// analysisCacheTTL bounds how long an identical analysis request is
// served from cache before being recomputed.
const analysisCacheTTL = time.Hour

// Handler holds dependencies for API handlers.
type Handler struct {
	repo    domain.Repository
	cache   domain.Cache
	bus     domain.EventBus
	engine  *risk.Engine
	monitor *monitor.Service
	metrics *metrics.Metrics
	version string
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *risk.Engine, mon *monitor.Service, m *metrics.Metrics, version string) *Handler {
	return &Handler{
		repo:    repo,
		cache:   cache,
		bus:     bus,
		engine:  engine,
		monitor: mon,
		metrics: m,
		version: version,
	}
}

// AnalyzeRequest is the request body for POST /analyze. Either a sample
// key or an inline registry must be given.
type AnalyzeRequest struct {
	Sample   string                 `json:"sample,omitempty"`
	Registry *domain.RegistryRecord `json:"registry,omitempty"`
	Contract *domain.ContractRecord `json:"contract,omitempty"`
	Deposit  int64                  `json:"deposit,omitempty"`
}

// Analyze handles POST /analyze requests.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	locale := GetLocale(ctx)

	// Parse request
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	registry := req.Registry
	contract := req.Contract

	if req.Sample != "" {
		sampleType, err := domain.ParseSampleType(req.Sample)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
			return
		}
		registry = sample.Registry(sampleType)
		if contract == nil {
			contract = sample.Contract(sampleType)
		}
	}

	if registry == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "registry or sample is required",
		})
		return
	}
	if req.Deposit < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "deposit must not be negative",
		})
		return
	}

	// Identical inputs produce identical results, so cache by input hash.
	cacheKey := analysisCacheKey(registry, contract, req.Deposit, locale)
	if h.cache != nil {
		if cached, err := h.cache.GetAnalysis(ctx, cacheKey); err == nil && cached != nil {
			if h.metrics != nil {
				h.metrics.IncrementCacheHits()
			}
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	result := h.engine.Analyze(registry, contract, req.Deposit, locale)

	analysis := &domain.Analysis{
		ID:        uuid.New().String(),
		Address:   registry.PropertyAddress,
		Deposit:   req.Deposit,
		Locale:    locale,
		Verdict:   result.Verdict,
		Cross:     result.Cross,
		Report:    result.Report,
		CreatedAt: time.Now().UTC(),
	}
	if analysis.Deposit == 0 && contract != nil {
		analysis.Deposit = contract.Deposit
	}

	// Persist. Analysis is still returned if the save fails.
	if h.repo != nil {
		if err := h.repo.SaveAnalysis(ctx, analysis); err != nil {
			slog.Error("failed to save analysis", "id", analysis.ID, "error", err)
		}
	}

	if h.cache != nil {
		if err := h.cache.SetAnalysis(ctx, cacheKey, analysis, analysisCacheTTL); err != nil {
			slog.Error("failed to cache analysis", "id", analysis.ID, "error", err)
		}
	}

	if h.bus != nil {
		payload, _ := json.Marshal(analysis)
		if err := h.bus.Publish(ctx, domain.TopicAnalysisCompleted, payload); err != nil {
			slog.Error("failed to publish analysis event", "id", analysis.ID, "error", err)
		}
	}

	if h.metrics != nil {
		h.metrics.ObserveAnalysis(string(analysis.Verdict.Level), time.Since(start).Seconds())
		for _, f := range analysis.Verdict.Findings {
			if !builtinCategories[f.Category] {
				h.metrics.IncrementCustomRuleFired(f.Category)
			}
		}
	}

	slog.Info("analysis completed",
		"id", analysis.ID,
		"address", analysis.Address,
		"level", analysis.Verdict.Level,
		"score", analysis.Verdict.Score,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	writeJSON(w, http.StatusOK, analysis)
}

// builtinCategories marks the finding categories produced by the
// built-in rules; everything else came from a custom rule.
var builtinCategories = map[string]bool{
	risk.CategoryMultipleMortgages: true,
	risk.CategoryMortgage:          true,
	risk.CategorySeizure:           true,
	risk.CategoryPriorLease:        true,
	risk.CategoryDebtExceeded:      true,
	risk.CategoryDebtWarning:       true,
}

// analysisCacheKey fingerprints one analysis input.
func analysisCacheKey(registry *domain.RegistryRecord, contract *domain.ContractRecord, deposit int64, locale domain.Locale) string {
	data, _ := json.Marshal(struct {
		Registry *domain.RegistryRecord `json:"registry"`
		Contract *domain.ContractRecord `json:"contract"`
		Deposit  int64                  `json:"deposit"`
		Locale   domain.Locale          `json:"locale"`
	}{registry, contract, deposit, locale})

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// GetAnalysis retrieves a stored analysis by ID.
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "analysis id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	analysis, err := h.repo.GetAnalysis(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("failed to get analysis", "id", id, "error", err)
		}
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "analysis not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// ListDistricts returns the per-district price table used for market
// value estimation.
func (h *Handler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	districts := risk.Districts()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"districts":             districts,
		"count":                 len(districts),
		"defaultPricePerPyeong": risk.DefaultPricePerPyeong,
		"minEstimatedValue":     risk.MinEstimatedValue,
	})
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	// Check repository health
	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	// Check cache health
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// ListRules returns all custom rules loaded in the engine.
// Rules are loaded from the database at startup and can be reloaded via POST /rules/reload.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	custom := h.engine.CustomRules()
	if custom == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "custom rule engine not available",
		})
		return
	}

	loadedRules := custom.LoadedRules()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules":  loadedRules,
		"count":  len(loadedRules),
		"source": "database",
	})
}

// GetRule retrieves a custom rule by ID from the loaded engine rules.
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")

	if ruleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "rule id is required",
		})
		return
	}

	custom := h.engine.CustomRules()
	if custom == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "custom rule engine not available",
		})
		return
	}

	for _, rule := range custom.LoadedRules() {
		if rule.ID == ruleID {
			writeJSON(w, http.StatusOK, rule)
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "rule not found",
	})
}

// CreateRuleRequest is the request body for creating a custom rule.
type CreateRuleRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Points      int    `json:"points"`
	Expression  string `json:"expression"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`
}

// CreateRule creates a new custom rule and saves it to the database.
// After saving, call POST /rules/reload to hot-reload into the engine.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	// Validate
	if req.ID == "" || req.Name == "" || req.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id, name, and expression are required",
		})
		return
	}
	if req.Points < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "points must not be negative",
		})
		return
	}

	custom := h.engine.CustomRules()
	if custom == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "custom rule engine not available",
		})
		return
	}

	rule := &domain.CustomRule{
		ID:          req.ID,
		Name:        req.Name,
		Category:    req.Category,
		Severity:    domain.Severity(req.Severity),
		Points:      req.Points,
		Expression:  req.Expression,
		Description: req.Description,
		Enabled:     req.Enabled,
	}

	// Validate CEL expression by attempting to compile
	if err := custom.ValidateRule(rule); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid rule expression: " + err.Error(),
		})
		return
	}

	// Persist to repository
	if h.repo != nil {
		if err := h.repo.SaveCustomRule(ctx, rule); err != nil {
			slog.Error("failed to save custom rule", "id", rule.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to save rule",
			})
			return
		}
	}

	slog.Info("custom rule created", "id", rule.ID, "name", rule.Name)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"rule":    rule,
		"message": "Rule created. Call POST /rules/reload to apply changes.",
	})
}

// DeleteRule disables a custom rule and auto-reloads the engine.
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ruleID := chi.URLParam(r, "id")

	if ruleID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "rule id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	if err := h.repo.DeleteCustomRule(ctx, ruleID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("failed to delete custom rule", "id", ruleID, "error", err)
		}
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "rule not found",
		})
		return
	}

	// Auto-reload after delete
	if custom := h.engine.CustomRules(); custom != nil {
		dbRules, err := h.repo.ListCustomRules(ctx)
		if err != nil {
			slog.Error("failed to reload rules after delete", "error", err)
		} else if err := custom.ReloadRules(dbRules); err != nil {
			slog.Error("failed to reload rules into engine", "error", err)
		}
	}

	slog.Info("custom rule deleted", "id", ruleID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Rule deleted and engine reloaded.",
	})
}

// ReloadRules reloads all custom rules from the database into the engine.
// This enables hot-reloading without server restart.
func (h *Handler) ReloadRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	custom := h.engine.CustomRules()
	if custom == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "custom rule engine not available",
		})
		return
	}

	dbRules, err := h.repo.ListCustomRules(ctx)
	if err != nil {
		slog.Error("failed to list rules from database", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load rules from database",
		})
		return
	}

	if err := custom.ReloadRules(dbRules); err != nil {
		slog.Error("failed to reload rules into engine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload rules: " + err.Error(),
		})
		return
	}

	slog.Info("custom rules reloaded from database", "count", len(dbRules))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "rules reloaded successfully",
		"count":   len(dbRules),
	})
}

// MonitoringCheckRequest is the request body for POST /monitoring/check.
type MonitoringCheckRequest struct {
	Address  string                 `json:"address"`
	Sample   string                 `json:"sample,omitempty"`
	Registry *domain.RegistryRecord `json:"registry,omitempty"`
}

// MonitoringCheck re-reads a property registry and compares it to the
// last stored snapshot. On change, a registry change event is published
// for the alert watcher.
func (h *Handler) MonitoringCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.monitor == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "monitoring not available",
		})
		return
	}

	var req MonitoringCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	registry := req.Registry
	if req.Sample != "" {
		sampleType, err := domain.ParseSampleType(req.Sample)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": err.Error(),
			})
			return
		}
		registry = sample.Registry(sampleType)
	}

	if registry == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "registry or sample is required",
		})
		return
	}

	address := req.Address
	if address == "" {
		address = registry.PropertyAddress
	}
	if address == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "address is required",
		})
		return
	}

	result, err := h.monitor.CheckRegistry(ctx, address, registry)
	if err != nil {
		slog.Error("registry check failed", "address", address, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "registry check failed",
		})
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveRegistryCheck(result.Changed)
	}

	writeJSON(w, http.StatusOK, result)
}

// ListAlerts returns alerts for a user, newest first.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.URL.Query().Get("user")

	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "user query parameter is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	alerts, err := h.repo.ListAlertsByUser(ctx, userID)
	if err != nil {
		slog.Error("failed to list alerts", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list alerts",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// CreateSubscription registers a standing alert subscription for a user.
func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var sub domain.Subscription
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if sub.UserID == "" || sub.Location == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "userId and location are required",
		})
		return
	}
	if sub.NotifyMethod == "" {
		sub.NotifyMethod = "email"
	}
	sub.CreatedAt = time.Now().UTC()

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	if err := h.repo.SaveSubscription(ctx, &sub); err != nil {
		slog.Error("failed to save subscription", "user_id", sub.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save subscription",
		})
		return
	}

	slog.Info("subscription created", "user_id", sub.UserID, "location", sub.Location)
	writeJSON(w, http.StatusCreated, sub)
}

// GetSubscription retrieves a user's subscription.
func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "user id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	sub, err := h.repo.GetSubscription(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("failed to get subscription", "user_id", userID, "error", err)
		}
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "subscription not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

// DeleteSubscription removes a user's subscription.
func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "user id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	if err := h.repo.DeleteSubscription(ctx, userID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("failed to delete subscription", "user_id", userID, "error", err)
		}
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "subscription not found",
		})
		return
	}

	slog.Info("subscription deleted", "user_id", userID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "subscription deleted",
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
