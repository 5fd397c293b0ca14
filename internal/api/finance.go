package api

import (
	"encoding/json"
	"net/http"

	"github.com/soccz/young-and-home/internal/finance"
)

// CompareFinanceRequest is the request body for POST /finance/compare.
// Amounts are won; the rate defaults when omitted.
type CompareFinanceRequest struct {
	JeonseDeposit   int64   `json:"jeonseDeposit"`
	MonthlyRent     int64   `json:"monthlyRent"`
	ManagementFee   int64   `json:"managementFee"`
	LoanRatePercent float64 `json:"loanRatePercent,omitempty"`
}

// CompareFinance handles POST /finance/compare requests.
func (h *Handler) CompareFinance(w http.ResponseWriter, r *http.Request) {
	var req CompareFinanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.JeonseDeposit <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "jeonseDeposit must be positive",
		})
		return
	}
	if req.MonthlyRent < 0 || req.ManagementFee < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "amounts must not be negative",
		})
		return
	}

	result := finance.CompareRentVsJeonse(
		req.JeonseDeposit, req.MonthlyRent, req.ManagementFee, req.LoanRatePercent,
	)
	writeJSON(w, http.StatusOK, result)
}

// LoanEligibilityRequest is the request body for POST /finance/eligibility.
type LoanEligibilityRequest struct {
	AnnualIncome  int64 `json:"annualIncome"`
	ExistingLoans int64 `json:"existingLoans"`
	TargetDeposit int64 `json:"targetDeposit"`
}

// LoanEligibility handles POST /finance/eligibility requests.
func (h *Handler) LoanEligibility(w http.ResponseWriter, r *http.Request) {
	var req LoanEligibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.AnnualIncome <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "annualIncome must be positive",
		})
		return
	}
	if req.ExistingLoans < 0 || req.TargetDeposit < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "amounts must not be negative",
		})
		return
	}

	result := finance.CheckLoanEligibility(
		req.AnnualIncome, req.ExistingLoans, req.TargetDeposit,
	)
	writeJSON(w, http.StatusOK, result)
}

// LoanProducts handles POST /finance/products requests.
func (h *Handler) LoanProducts(w http.ResponseWriter, r *http.Request) {
	var profile finance.BorrowerProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if profile.Age <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "age must be positive",
		})
		return
	}

	products := finance.RecommendLoanProducts(profile)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}
