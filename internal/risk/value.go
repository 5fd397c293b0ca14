// Package risk implements the lease safety risk engine: market value
// estimation, ordered risk scoring, contract cross-validation and
// report assembly. Everything in this package is pure and stateless
// between calls; concurrent use needs no locking.
package risk

import "strings"

const (
	// SqmPerPyeong converts square meters to pyeong.
	SqmPerPyeong = 3.3058

	// DefaultPricePerPyeong is used when no district matches the address.
	DefaultPricePerPyeong int64 = 25_000_000 // won

	// MinEstimatedValue floors the estimate so tiny studio units do not
	// produce unrealistically low market values.
	MinEstimatedValue int64 = 150_000_000 // won
)

// District is one row of the price table.
type District struct {
	Name           string `json:"name"`
	PricePerPyeong int64  `json:"pricePerPyeong"` // won
}

// seoulDistricts maps Seoul district names to approximate jeonse prices
// per pyeong. Order matters: the first name contained in the address wins.
var seoulDistricts = []District{
	{"강남구", 55_000_000},
	{"서초구", 48_000_000},
	{"송파구", 42_000_000},
	{"용산구", 40_000_000},
	{"성동구", 35_000_000},
	{"광진구", 32_000_000},
	{"마포구", 32_000_000},
	{"영등포구", 30_000_000},
	{"동작구", 29_000_000},
	{"서대문구", 28_000_000},
	{"종로구", 28_000_000},
	{"중구", 27_000_000},
	{"강동구", 26_000_000},
	{"양천구", 25_000_000},
	{"강서구", 24_000_000},
	{"성북구", 23_000_000},
	{"동대문구", 22_000_000},
	{"관악구", 22_000_000},
	{"은평구", 21_000_000},
	{"구로구", 20_000_000},
	{"노원구", 19_000_000},
	{"도봉구", 18_000_000},
	{"금천구", 18_000_000},
	{"중랑구", 17_000_000},
	{"강북구", 16_000_000},
}

// Districts returns a copy of the price table.
func Districts() []District {
	out := make([]District, len(seoulDistricts))
	copy(out, seoulDistricts)
	return out
}

// PricePerPyeong returns the table price for the first district whose
// name appears in the address, or the default price when none matches.
func PricePerPyeong(address string) int64 {
	for _, d := range seoulDistricts {
		if strings.Contains(address, d.Name) {
			return d.PricePerPyeong
		}
	}
	return DefaultPricePerPyeong
}

// EstimateMarketValue estimates the market value of a property in won
// from its address and floor area. The caller is responsible for
// sanitizing areaSqm (a garbled area string defaults upstream).
func EstimateMarketValue(address string, areaSqm float64) int64 {
	pyeong := areaSqm / SqmPerPyeong
	value := int64(float64(PricePerPyeong(address)) * pyeong)
	if value < MinEstimatedValue {
		return MinEstimatedValue
	}
	return value
}
