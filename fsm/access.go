package fsm

import "github.com/canopy-network/ballot/lib"

// IsAdministrator() returns true if the caller is the principal the contract was deployed with
func (l *Ledger) IsAdministrator(caller lib.Principal) bool {
	return l.Administrator != "" && caller == l.Administrator
}
