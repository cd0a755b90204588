package wallet

import "github.com/tinoosan/wallet/internal/errs"

// TypeFilter selects a slice of the ledger by record kind and sign.
type TypeFilter string

const (
	// TypePendings selects operation rows with a negative amount.
	TypePendings TypeFilter = "pendings"
	// TypeIncomes selects operation rows with a non-negative amount.
	TypeIncomes TypeFilter = "incomes"
	// TypeTransfers selects transfer rows.
	TypeTransfers TypeFilter = "transfers"
)

// StateFilter narrows rows by reconciliation state.
type StateFilter string

const (
	StatesAll       StateFilter = "all"
	StatesClosed    StateFilter = "closed"
	StatesNotClosed StateFilter = "notclosed"
)

// BalanceFilter is the structured specification the query builder translates
// into ledger queries. Clauses are AND-ed; each set is OR-ed internally. An
// empty Types set selects nothing, it is never auto-widened.
type BalanceFilter struct {
	Start        Date         `json:"startDate"`
	End          Date         `json:"endDate"`
	Types        []TypeFilter `json:"types"`
	States       StateFilter  `json:"states"`
	Paytypes     []string     `json:"paytypes,omitempty"`
	Categories   []string     `json:"categories,omitempty"`
	Thirdparties []string     `json:"thirdparties,omitempty"`
}

// Has reports whether the filter's type set includes t.
func (f *BalanceFilter) Has(t TypeFilter) bool {
	for _, ft := range f.Types {
		if ft == t {
			return true
		}
	}
	return false
}

// Validate rejects malformed filters before any query is built.
func (f *BalanceFilter) Validate() error {
	if f.Start.IsZero() || f.End.IsZero() || f.End.Before(f.Start) {
		return errs.ErrInvalid
	}
	for _, t := range f.Types {
		switch t {
		case TypePendings, TypeIncomes, TypeTransfers:
		default:
			return errs.ErrInvalid
		}
	}
	switch f.States {
	case StatesAll, StatesClosed, StatesNotClosed, "":
	default:
		return errs.ErrInvalid
	}
	return nil
}
