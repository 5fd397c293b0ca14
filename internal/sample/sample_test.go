package sample

import (
	"testing"

	"github.com/soccz/young-and-home/internal/domain"
)

func TestRegistryFixtures(t *testing.T) {
	t.Run("Safe", func(t *testing.T) {
		r := Registry(domain.SampleSafe)
		if r.OwnerName != "김건물" {
			t.Errorf("unexpected owner %s", r.OwnerName)
		}
		if len(r.Mortgages) != 0 || len(r.Seizures) != 0 || len(r.PriorLeases) != 0 {
			t.Error("expected a clean registry")
		}
	})

	t.Run("Risky", func(t *testing.T) {
		r := Registry(domain.SampleRisky)
		if len(r.Mortgages) != 2 {
			t.Errorf("expected 2 mortgages, got %d", len(r.Mortgages))
		}
		if r.TotalMortgage() != 350_000_000 {
			t.Errorf("expected 350M mortgage total, got %d", r.TotalMortgage())
		}
		if len(r.Seizures) != 1 || len(r.PriorLeases) != 1 {
			t.Error("expected seizure and prior lease entries")
		}
	})

	t.Run("Moderate", func(t *testing.T) {
		r := Registry(domain.SampleModerate)
		if len(r.Mortgages) != 1 {
			t.Errorf("expected 1 mortgage, got %d", len(r.Mortgages))
		}
		if len(r.Seizures) != 0 {
			t.Error("expected no seizures")
		}
	})

	t.Run("UnknownFallsBackToSafe", func(t *testing.T) {
		r := Registry(domain.SampleType("bogus"))
		if r.OwnerName != "김건물" {
			t.Errorf("expected the safe fixture, got owner %s", r.OwnerName)
		}
	})
}

func TestContractFixtures(t *testing.T) {
	t.Run("SafeLessorMatchesOwner", func(t *testing.T) {
		r := Registry(domain.SampleSafe)
		c := Contract(domain.SampleSafe)
		if c.LessorName != r.OwnerName {
			t.Errorf("expected matching lessor, got %s vs %s", c.LessorName, r.OwnerName)
		}
		if c.Address != r.PropertyAddress {
			t.Error("expected matching addresses")
		}
	})

	t.Run("RiskyLessorIsForged", func(t *testing.T) {
		r := Registry(domain.SampleRisky)
		c := Contract(domain.SampleRisky)
		if c.LessorName == r.OwnerName {
			t.Error("expected the risky lessor to differ from the registry owner")
		}
		if c.Deposit != 300_000_000 {
			t.Errorf("expected 300M deposit, got %d", c.Deposit)
		}
	})

	t.Run("AllJeonse", func(t *testing.T) {
		for _, st := range []domain.SampleType{domain.SampleSafe, domain.SampleRisky, domain.SampleModerate} {
			if Contract(st).LeaseType != domain.LeaseJeonse {
				t.Errorf("expected jeonse lease for %s", st)
			}
		}
	})
}

func TestParseSampleType(t *testing.T) {
	for _, valid := range []string{"safe", "risky", "moderate"} {
		if _, err := domain.ParseSampleType(valid); err != nil {
			t.Errorf("expected %q to parse, got %v", valid, err)
		}
	}
	if _, err := domain.ParseSampleType("dangerous"); err == nil {
		t.Error("expected error for unknown sample type")
	}
}
