package fsm

import (
	"github.com/canopy-network/ballot/lib"
)

/* Key.go contains prefix keys logic for the underlying store */

var (
	ledgerPrefix = []byte{1} // store key prefix for the singleton vote ledger
	voterPrefix  = []byte{2} // store key prefix for the voters of the current round
	eventPrefix  = []byte{3} // store key prefix for the event log
)

/*
- Length prefixed append is used to be able to easily separate the segments of a key

- BigEndianEncoding is used for uint64 so heights sort lexicographically, which keeps the event log in block order
*/

func KeyForLedger() []byte                  { return lib.JoinLenPrefix(ledgerPrefix) }
func VoterPrefix() []byte                   { return lib.JoinLenPrefix(voterPrefix) }
func KeyForVoter(p lib.Principal) []byte    { return lib.JoinLenPrefix(voterPrefix, []byte(p)) }
func EventPrefix() []byte                   { return lib.JoinLenPrefix(eventPrefix) }
func EventsPrefixForHeight(h uint64) []byte { return lib.JoinLenPrefix(eventPrefix, lib.FormatUint64(h)) }
func KeyForEvent(height, index uint64) []byte {
	return lib.JoinLenPrefix(eventPrefix, lib.FormatUint64(height), lib.FormatUint64(index))
}

// PrincipalFromVoterKey() extracts the principal segment of a voter key
func PrincipalFromVoterKey(k []byte) (lib.Principal, lib.ErrorI) {
	segments := lib.DecodeLengthPrefixed(k)
	if len(segments) != 2 {
		return "", ErrInvalidKey(k)
	}
	return lib.Principal(segments[1]), nil
}
