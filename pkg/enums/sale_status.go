package enums

// SaleStatus marks how a ledger entry came to exist. Entries are append-only
// either way; "backfilled" rows were rebuilt by the reconciliation sweep.
type SaleStatus string

const (
	SaleStatusRecorded   SaleStatus = "recorded"
	SaleStatusBackfilled SaleStatus = "backfilled"
)

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	return s == SaleStatusRecorded || s == SaleStatusBackfilled
}
