// Package finance provides housing finance calculators for prospective
// tenants: jeonse-versus-monthly-rent cost comparison, DSR based loan
// eligibility screening and youth loan product recommendation. All
// functions are pure; identical inputs always produce identical
// results.
package finance

import (
	"fmt"
	"math"
)

// Calculation assumptions. Jeonse loans are interest-only for the
// lease term, so repayment capacity converts to principal by dividing
// by the rate alone.
const (
	// JeonseLoanRatio is the share of the deposit banks typically lend.
	JeonseLoanRatio = 0.8

	// DefaultLoanRate is the assumed jeonse loan rate in percent per
	// year when the caller gives none.
	DefaultLoanRate = 4.0

	// MaxDSR is the regulatory cap on annual debt service relative to
	// annual income.
	MaxDSR = 0.40

	// ExistingLoanRate is the stress rate applied to existing debt.
	ExistingLoanRate = 0.05

	// NewLoanRate is the assumed rate on the new jeonse loan when
	// estimating the maximum principal.
	NewLoanRate = 0.04

	// YouthMaxAge and YouthIncomeCap bound eligibility for the
	// youth-only loan products.
	YouthMaxAge    = 34
	YouthIncomeCap = 50_000_000 // won per year
)

// CostBreakdown itemizes one side of the monthly cost comparison.
// All amounts are won per month.
type CostBreakdown struct {
	Interest   int64 `json:"interest,omitempty"`
	Rent       int64 `json:"rent,omitempty"`
	Management int64 `json:"management"`
	Total      int64 `json:"total"`
}

// RentComparison is the outcome of comparing a jeonse lease financed
// by a loan against a monthly rent lease.
type RentComparison struct {
	Jeonse         CostBreakdown `json:"jeonse"`
	Rent           CostBreakdown `json:"rent"`
	Difference     int64         `json:"difference"` // rent total minus jeonse total, won per month
	JeonseCheaper  bool          `json:"jeonseCheaper"`
	Recommendation string        `json:"recommendation"`
}

// CompareRentVsJeonse compares the monthly cost of financing a jeonse
// deposit with a loan against paying monthly rent. The loan covers
// JeonseLoanRatio of the deposit; the remainder is self funded and its
// opportunity cost is ignored. A non-positive rate falls back to
// DefaultLoanRate. Amounts are won.
func CompareRentVsJeonse(jeonseDeposit, monthlyRent, managementFee int64, loanRatePercent float64) RentComparison {
	if loanRatePercent <= 0 {
		loanRatePercent = DefaultLoanRate
	}

	loanAmount := float64(jeonseDeposit) * JeonseLoanRatio
	interest := int64(math.Round(loanAmount * loanRatePercent / 100 / 12))

	jeonse := CostBreakdown{
		Interest:   interest,
		Management: managementFee,
		Total:      interest + managementFee,
	}
	rent := CostBreakdown{
		Rent:       monthlyRent,
		Management: managementFee,
		Total:      monthlyRent + managementFee,
	}

	diff := rent.Total - jeonse.Total
	cheaper := diff > 0

	var recommendation string
	if cheaper {
		recommendation = fmt.Sprintf("전세 대출이 월 %s 더 저렴합니다.", formatManWon(diff))
	} else {
		recommendation = fmt.Sprintf("월세가 월 %s 더 저렴합니다. (금리 영향)", formatManWon(-diff))
	}

	return RentComparison{
		Jeonse:         jeonse,
		Rent:           rent,
		Difference:     diff,
		JeonseCheaper:  cheaper,
		Recommendation: recommendation,
	}
}

// EligibilityStatus classifies the DSR screening outcome.
type EligibilityStatus string

const (
	EligibilitySafe    EligibilityStatus = "안전"
	EligibilityCaution EligibilityStatus = "주의"
	EligibilityDenied  EligibilityStatus = "불가능"
)

// LoanEligibility is the result of the DSR based screening.
type LoanEligibility struct {
	Status  EligibilityStatus `json:"status"`
	Reason  string            `json:"reason"`
	MaxLoan int64             `json:"maxLoan"` // won
}

// CheckLoanEligibility estimates the maximum new loan a borrower can
// carry under the MaxDSR cap and checks it against the loan needed for
// the target deposit. Existing debt is stressed at ExistingLoanRate.
// Amounts are won.
func CheckLoanEligibility(annualIncome, existingLoans, targetDeposit int64) LoanEligibility {
	maxRepayment := float64(annualIncome) * MaxDSR
	existingRepayment := float64(existingLoans) * ExistingLoanRate
	capacity := maxRepayment - existingRepayment

	if capacity <= 0 {
		return LoanEligibility{
			Status:  EligibilityDenied,
			Reason:  "기대출 과다로 인한 DSR 한도 초과",
			MaxLoan: 0,
		}
	}

	maxLoan := int64(math.Round(capacity / NewLoanRate))
	targetLoan := int64(math.Round(float64(targetDeposit) * JeonseLoanRatio))

	if maxLoan >= targetLoan {
		return LoanEligibility{
			Status:  EligibilitySafe,
			Reason:  fmt.Sprintf("DSR 규제 내에서 충분히 대출 가능합니다. (한도: %s)", formatManWon(maxLoan)),
			MaxLoan: maxLoan,
		}
	}

	return LoanEligibility{
		Status: EligibilityCaution,
		Reason: fmt.Sprintf("목표 대출액(%s)이 한도(%s)를 초과할 수 있습니다.",
			formatManWon(targetLoan), formatManWon(maxLoan)),
		MaxLoan: maxLoan,
	}
}

// EmploymentType is the borrower's employment status as used by the
// product eligibility rules.
type EmploymentType string

const (
	EmploymentEmployed   EmploymentType = "재직자"
	EmploymentJobSeeker  EmploymentType = "취업준비생"
	EmploymentFreelancer EmploymentType = "프리랜서"
)

// BorrowerProfile describes a borrower for product recommendation.
type BorrowerProfile struct {
	Age          int            `json:"age"`
	AnnualIncome int64          `json:"annualIncome"` // won
	Employment   EmploymentType `json:"employment"`
	SmallCompany bool           `json:"smallCompany"`
}

// LoanProduct is one recommended loan product.
type LoanProduct struct {
	Name        string `json:"name"`
	Rate        string `json:"rate"`
	Limit       string `json:"limit"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
}

// RecommendLoanProducts returns loan products the borrower qualifies
// for, best rate first. A borrower matching no youth product gets the
// general fallback product.
func RecommendLoanProducts(p BorrowerProfile) []LoanProduct {
	var products []LoanProduct

	youth := p.Age <= YouthMaxAge && p.AnnualIncome <= YouthIncomeCap

	if p.SmallCompany && youth {
		products = append(products, LoanProduct{
			Name:        "중소기업 취업청년 전월세보증금대출",
			Rate:        "연 1.5% (고정)",
			Limit:       "최대 1억원 (보증금의 100%)",
			Description: "중소기업 재직자에게 가장 유리한 상품입니다. 금리가 매우 낮습니다.",
			Tag:         "금리최저",
		})
	}

	if youth {
		products = append(products, LoanProduct{
			Name:        "청년버팀목 전세자금대출",
			Rate:        "연 1.8% ~ 2.7%",
			Limit:       "최대 2억원 (보증금의 80%)",
			Description: "가장 일반적인 청년 전용 대출입니다. 소득에 따라 금리가 달라집니다.",
			Tag:         "인기",
		})
	}

	if p.Employment == EmploymentEmployed && p.Age <= YouthMaxAge {
		products = append(products, LoanProduct{
			Name:        "모바일 청년 전월세보증금대출",
			Rate:        "연 3.5% ~ 4.5%",
			Limit:       "보증금의 90%",
			Description: "은행 방문 없이 앱으로 간편하게 신청할 수 있습니다.",
			Tag:         "간편",
		})
	}

	if len(products) == 0 {
		products = append(products, LoanProduct{
			Name:        "버팀목 전세자금대출 (일반)",
			Rate:        "연 2.1% ~ 2.9%",
			Limit:       "수도권 최대 1.2억원",
			Description: "청년 전용 상품 조건에 맞지 않을 경우의 기본 상품입니다.",
			Tag:         "기본",
		})
	}

	return products
}

// formatManWon renders a won amount in 만원 units, dropping the
// fraction when the amount is a whole number of 만원.
func formatManWon(won int64) string {
	man := float64(won) / 10_000
	if won%10_000 == 0 {
		return fmt.Sprintf("%.0f만원", man)
	}
	return fmt.Sprintf("%.1f만원", man)
}
