package domain

import (
	"strconv"
	"strings"
)

// DefaultAreaSqm is assumed when the area of a registry document cannot
// be parsed. Matches the most common small-apartment floor area in the
// demo dataset.
const DefaultAreaSqm = 59.5

// SeizureKind distinguishes a full seizure from a provisional one.
type SeizureKind string

const (
	KindSeizure            SeizureKind = "SEIZURE"
	KindProvisionalSeizure SeizureKind = "PROVISIONAL_SEIZURE"
)

// Mortgage is one registered mortgage entry (을구 근저당권).
type Mortgage struct {
	Creditor string `json:"creditor"`
	Amount   int64  `json:"amount"` // won
	Date     string `json:"date"`
}

// Seizure is one registered seizure or provisional seizure entry.
type Seizure struct {
	Creditor string      `json:"creditor"`
	Amount   int64       `json:"amount"` // won
	Date     string      `json:"date"`
	Kind     SeizureKind `json:"kind"`
}

// PriorLease is an existing tenant whose deposit claim ranks ahead of a
// new tenant's claim.
type PriorLease struct {
	Tenant  string `json:"tenant"`
	Deposit int64  `json:"deposit"` // won
	Date    string `json:"date"`
}

// RegistryRecord is one parsed lease-registry document (등기부등본).
// Constructed once per analysis request, immutable afterwards.
// Entry slices preserve document order.
type RegistryRecord struct {
	PropertyAddress string       `json:"propertyAddress"`
	PropertyType    string       `json:"propertyType"`
	Area            string       `json:"area"` // raw localized string, e.g. "59.5㎡ (18평)"
	OwnerName       string       `json:"ownerName"`
	Mortgages       []Mortgage   `json:"mortgages"`
	Seizures        []Seizure    `json:"seizures"`
	PriorLeases     []PriorLease `json:"priorLeases"`
}

// AreaSqm returns the floor area in square meters parsed from the raw
// area string, falling back to DefaultAreaSqm when it is garbled.
func (r *RegistryRecord) AreaSqm() float64 {
	return ParseArea(r.Area)
}

// TotalMortgage sums all registered mortgage amounts.
func (r *RegistryRecord) TotalMortgage() int64 {
	var total int64
	for _, m := range r.Mortgages {
		total += m.Amount
	}
	return total
}

// TotalSeizure sums all seizure claim amounts.
func (r *RegistryRecord) TotalSeizure() int64 {
	var total int64
	for _, s := range r.Seizures {
		total += s.Amount
	}
	return total
}

// TotalPriorDeposit sums the deposits of all prior lease holders.
func (r *RegistryRecord) TotalPriorDeposit() int64 {
	var total int64
	for _, l := range r.PriorLeases {
		total += l.Deposit
	}
	return total
}

// IsEmpty reports whether the record carries no usable registry data.
// Such a record produces a degenerate "unable to analyze" verdict.
func (r *RegistryRecord) IsEmpty() bool {
	return r == nil || r.PropertyAddress == ""
}

// ParseArea extracts the square-meter figure from a localized area
// string such as "59.5㎡ (18평)". Returns DefaultAreaSqm when the string
// does not parse to a positive number.
func ParseArea(area string) float64 {
	s := area
	if i := strings.Index(s, "㎡"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return DefaultAreaSqm
	}
	return v
}
