// Package sample provides the canned demo registry and contract
// fixtures used when no real document is supplied.
package sample

import (
	"github.com/soccz/young-and-home/internal/domain"
)

// Registry returns the demo registry record for a sample type. The
// switch is exhaustive over the closed enum; an unknown value falls
// back to the safe fixture like the original demo did.
func Registry(t domain.SampleType) *domain.RegistryRecord {
	switch t {
	case domain.SampleRisky:
		return riskyRegistry()
	case domain.SampleModerate:
		return moderateRegistry()
	case domain.SampleSafe:
		return safeRegistry()
	default:
		return safeRegistry()
	}
}

// Contract returns the demo contract record paired with a sample type.
func Contract(t domain.SampleType) *domain.ContractRecord {
	switch t {
	case domain.SampleRisky:
		return riskyContract()
	case domain.SampleModerate:
		return moderateContract()
	case domain.SampleSafe:
		return safeContract()
	default:
		return safeContract()
	}
}

func safeRegistry() *domain.RegistryRecord {
	return &domain.RegistryRecord{
		PropertyAddress: "서울특별시 마포구 신촌동 123-45 신촌타워 101호",
		PropertyType:    "아파트",
		Area:            "59.5㎡ (18평)",
		OwnerName:       "김건물",
		Mortgages:       nil,
		Seizures:        nil,
		PriorLeases:     nil,
	}
}

func riskyRegistry() *domain.RegistryRecord {
	return &domain.RegistryRecord{
		PropertyAddress: "서울특별시 강남구 역삼동 789-10 역삼빌라 201호",
		PropertyType:    "다세대주택",
		Area:            "49.5㎡ (15평)",
		OwnerName:       "박임대",
		Mortgages: []domain.Mortgage{
			{Creditor: "국민은행", Amount: 250_000_000, Date: "2018-08-01"},
			{Creditor: "신한은행", Amount: 100_000_000, Date: "2023-05-15"},
		},
		Seizures: []domain.Seizure{
			{Creditor: "서울지방세무서", Amount: 5_000_000, Date: "2024-11-20", Kind: domain.KindSeizure},
		},
		PriorLeases: []domain.PriorLease{
			{Tenant: "이세입", Deposit: 150_000_000, Date: "2022-01-15"},
		},
	}
}

func moderateRegistry() *domain.RegistryRecord {
	return &domain.RegistryRecord{
		PropertyAddress: "서울특별시 서대문구 연희동 456-78 연희주공 304호",
		PropertyType:    "아파트",
		Area:            "84.9㎡ (26평)",
		OwnerName:       "최안전",
		Mortgages: []domain.Mortgage{
			{Creditor: "우리은행", Amount: 200_000_000, Date: "2015-12-01"},
		},
	}
}

func safeContract() *domain.ContractRecord {
	return &domain.ContractRecord{
		LessorName:   "김건물", // matches the registry owner
		Address:      "서울특별시 마포구 신촌동 123-45 신촌타워 101호",
		Deposit:      200_000_000,
		ContractDate: "2024-01-15",
		LeaseType:    domain.LeaseJeonse,
	}
}

func riskyContract() *domain.ContractRecord {
	return &domain.ContractRecord{
		LessorName:   "김사기", // does NOT match the registry owner 박임대
		Address:      "서울특별시 강남구 역삼동 789-10 역삼빌라 201호",
		Deposit:      300_000_000,
		ContractDate: "2024-01-20",
		LeaseType:    domain.LeaseJeonse,
	}
}

func moderateContract() *domain.ContractRecord {
	return &domain.ContractRecord{
		LessorName:   "최안전",
		Address:      "서울특별시 서대문구 연희동 456-78 연희주공 304호",
		Deposit:      250_000_000,
		ContractDate: "2024-02-01",
		LeaseType:    domain.LeaseJeonse,
	}
}
