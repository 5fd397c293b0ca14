package risk

import (
	"fmt"
	"strings"

	"github.com/soccz/young-and-home/internal/domain"
)

// minAddressTokenOverlap is the number of whitespace tokens the
// contract address must share with the registry address before the two
// are treated as the same property. The comparison is deliberately
// loose: formatting differences between documents are common, and a
// missed fraud is preferred over a stream of false alarms.
const minAddressTokenOverlap = 2

// Validate compares the registry against the lease contract and flags
// fraud indicators. With no contract it reports a skipped validation
// with Consistent=true: there is no mismatch to report.
//
// The owner check is exact string equality after trimming; no
// normalization is applied, so "김 건물" and "김건물" mismatch.
func Validate(registry *domain.RegistryRecord, contract *domain.ContractRecord) domain.CrossValidationResult {
	if contract == nil {
		return domain.CrossValidationResult{
			Status:     domain.CrossSkipped,
			Consistent: true,
			Issues:     []string{},
		}
	}

	result := domain.CrossValidationResult{
		Status:     domain.CrossDone,
		Consistent: true,
	}

	regOwner := strings.TrimSpace(registry.OwnerName)
	conLessor := strings.TrimSpace(contract.LessorName)
	if regOwner != "" && conLessor != "" {
		if regOwner != conLessor {
			result.Issues = append(result.Issues,
				fmt.Sprintf("owner mismatch: registry[%s] vs contract[%s]", regOwner, conLessor))
			result.Consistent = false
		} else {
			result.Issues = append(result.Issues,
				fmt.Sprintf("owner match confirmed: %s", regOwner))
		}
	}

	if tokenOverlap(contract.Address, registry.PropertyAddress) < minAddressTokenOverlap {
		result.Issues = append(result.Issues,
			"address verification needed: registry and contract addresses differ")
		result.Consistent = false
	} else {
		result.Issues = append(result.Issues, "address match confirmed")
	}

	return result
}

// tokenOverlap counts how many whitespace tokens of a appear verbatim
// among the tokens of b.
func tokenOverlap(a, b string) int {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(b) {
		set[tok] = struct{}{}
	}
	count := 0
	for _, tok := range strings.Fields(a) {
		if _, ok := set[tok]; ok {
			count++
		}
	}
	return count
}
