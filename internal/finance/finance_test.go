package finance

import (
	"strings"
	"testing"
)

func TestCompareRentVsJeonse(t *testing.T) {
	// 200M jeonse at 4%: loan 160M, interest 533,333 won per month.
	result := CompareRentVsJeonse(200_000_000, 600_000, 100_000, 4.0)

	if result.Jeonse.Interest != 533_333 {
		t.Errorf("expected interest 533333, got %d", result.Jeonse.Interest)
	}
	if result.Jeonse.Total != 633_333 {
		t.Errorf("expected jeonse total 633333, got %d", result.Jeonse.Total)
	}
	if result.Rent.Total != 700_000 {
		t.Errorf("expected rent total 700000, got %d", result.Rent.Total)
	}
	if result.Difference != 66_667 {
		t.Errorf("expected difference 66667, got %d", result.Difference)
	}
	if !result.JeonseCheaper {
		t.Error("expected jeonse to be cheaper at 4%")
	}
	if !strings.Contains(result.Recommendation, "전세 대출이") {
		t.Errorf("unexpected recommendation: %s", result.Recommendation)
	}
}

func TestCompareRentVsJeonseHighRate(t *testing.T) {
	// At 8% the loan interest alone exceeds the rent.
	result := CompareRentVsJeonse(200_000_000, 600_000, 100_000, 8.0)

	if result.Jeonse.Interest != 1_066_667 {
		t.Errorf("expected interest 1066667, got %d", result.Jeonse.Interest)
	}
	if result.JeonseCheaper {
		t.Error("expected rent to be cheaper at 8%")
	}
	if result.Difference >= 0 {
		t.Errorf("expected negative difference, got %d", result.Difference)
	}
	if !strings.Contains(result.Recommendation, "월세가") {
		t.Errorf("unexpected recommendation: %s", result.Recommendation)
	}
}

func TestCompareRentVsJeonseDefaultRate(t *testing.T) {
	explicit := CompareRentVsJeonse(200_000_000, 600_000, 100_000, DefaultLoanRate)
	defaulted := CompareRentVsJeonse(200_000_000, 600_000, 100_000, 0)

	if explicit != defaulted {
		t.Errorf("zero rate must fall back to the default: %+v != %+v", defaulted, explicit)
	}
}

func TestCheckLoanEligibility(t *testing.T) {
	tests := []struct {
		name          string
		annualIncome  int64
		existingLoans int64
		targetDeposit int64
		wantStatus    EligibilityStatus
		wantMaxLoan   int64
	}{
		{
			// Capacity 20M/yr covers 500M at 4%; target loan is 160M.
			name:          "Safe",
			annualIncome:  50_000_000,
			targetDeposit: 200_000_000,
			wantStatus:    EligibilitySafe,
			wantMaxLoan:   500_000_000,
		},
		{
			// Capacity 12M minus 5M existing service leaves 175M of
			// headroom against a 400M target loan.
			name:          "Caution",
			annualIncome:  30_000_000,
			existingLoans: 100_000_000,
			targetDeposit: 500_000_000,
			wantStatus:    EligibilityCaution,
			wantMaxLoan:   175_000_000,
		},
		{
			// Existing service 15M exceeds the 12M DSR cap.
			name:          "Denied",
			annualIncome:  30_000_000,
			existingLoans: 300_000_000,
			targetDeposit: 100_000_000,
			wantStatus:    EligibilityDenied,
			wantMaxLoan:   0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := CheckLoanEligibility(tc.annualIncome, tc.existingLoans, tc.targetDeposit)

			if result.Status != tc.wantStatus {
				t.Errorf("expected status %s, got %s", tc.wantStatus, result.Status)
			}
			if result.MaxLoan != tc.wantMaxLoan {
				t.Errorf("expected max loan %d, got %d", tc.wantMaxLoan, result.MaxLoan)
			}
			if result.Reason == "" {
				t.Error("expected a reason")
			}
		})
	}
}

func TestRecommendLoanProducts(t *testing.T) {
	t.Run("SMEYouth", func(t *testing.T) {
		products := RecommendLoanProducts(BorrowerProfile{
			Age:          28,
			AnnualIncome: 35_000_000,
			Employment:   EmploymentEmployed,
			SmallCompany: true,
		})

		if len(products) != 3 {
			t.Fatalf("expected 3 products, got %d", len(products))
		}
		if products[0].Name != "중소기업 취업청년 전월세보증금대출" {
			t.Errorf("expected the SME product first, got %s", products[0].Name)
		}
	})

	t.Run("GeneralYouth", func(t *testing.T) {
		products := RecommendLoanProducts(BorrowerProfile{
			Age:          30,
			AnnualIncome: 45_000_000,
			Employment:   EmploymentEmployed,
		})

		if len(products) != 2 {
			t.Fatalf("expected 2 products, got %d", len(products))
		}
		if products[0].Name != "청년버팀목 전세자금대출" {
			t.Errorf("expected the general youth product first, got %s", products[0].Name)
		}
	})

	t.Run("HighIncomeEmployed", func(t *testing.T) {
		// Over the income cap; only the mobile product has no income gate.
		products := RecommendLoanProducts(BorrowerProfile{
			Age:          28,
			AnnualIncome: 60_000_000,
			Employment:   EmploymentEmployed,
		})

		if len(products) != 1 {
			t.Fatalf("expected 1 product, got %d", len(products))
		}
		if products[0].Name != "모바일 청년 전월세보증금대출" {
			t.Errorf("unexpected product: %s", products[0].Name)
		}
	})

	t.Run("Fallback", func(t *testing.T) {
		products := RecommendLoanProducts(BorrowerProfile{
			Age:          40,
			AnnualIncome: 45_000_000,
			Employment:   EmploymentFreelancer,
		})

		if len(products) != 1 {
			t.Fatalf("expected the fallback product only, got %d", len(products))
		}
		if products[0].Name != "버팀목 전세자금대출 (일반)" {
			t.Errorf("unexpected product: %s", products[0].Name)
		}
	})
}

func TestFormatManWon(t *testing.T) {
	tests := []struct {
		won  int64
		want string
	}{
		{500_000_000, "50000만원"},
		{66_667, "6.7만원"},
		{100_000, "10만원"},
	}

	for _, tc := range tests {
		if got := formatManWon(tc.won); got != tc.want {
			t.Errorf("formatManWon(%d) = %s, want %s", tc.won, got, tc.want)
		}
	}
}
