package store

import (
	"strings"

	"github.com/canopy-network/ballot/lib"
	"github.com/dgraph-io/badger/v4"
)

// prefixEnd() returns the smallest key greater than every key with the prefix
// returns nil when no such key exists (empty prefix or all 0xFF bytes)
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

var _ badger.Logger = &badgerLogger{}

// badgerLogger routes badger's internal logs into the node logger
// badger is chatty at info level, so info is demoted to debug
type badgerLogger struct{ log lib.LoggerI }

func newBadgerLogger(log lib.LoggerI) *badgerLogger { return &badgerLogger{log: log} }

func (b *badgerLogger) Errorf(format string, args ...any) {
	b.log.Errorf(trim(format), args...)
}

func (b *badgerLogger) Warningf(format string, args ...any) {
	b.log.Warnf(trim(format), args...)
}

func (b *badgerLogger) Infof(format string, args ...any) {
	b.log.Debugf(trim(format), args...)
}

func (b *badgerLogger) Debugf(format string, args ...any) {
	b.log.Debugf(trim(format), args...)
}

func trim(format string) string { return "badger: " + strings.TrimSuffix(format, "\n") }
