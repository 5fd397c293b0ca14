package domain

// LeaseType is the lease arrangement named by a contract.
type LeaseType string

const (
	// LeaseJeonse is a lump-sum deposit lease with no monthly rent.
	LeaseJeonse LeaseType = "JEONSE"

	// LeaseMonthly is a deposit-plus-monthly-rent lease.
	LeaseMonthly LeaseType = "MONTHLY"
)

// ContractRecord is one parsed lease contract. It is optional input:
// when absent, cross-validation reports a skipped status.
type ContractRecord struct {
	LessorName   string    `json:"lessorName"`
	Address      string    `json:"address"`
	Deposit      int64     `json:"deposit"` // won
	ContractDate string    `json:"contractDate"`
	LeaseType    LeaseType `json:"leaseType"`
}
