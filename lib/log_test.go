package lib

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultLogger(t *testing.T) {
	// pre-define expected
	expected := NewLogger(LoggerConfig{
		Level: DebugLevel,
		Out:   os.Stdout,
	})
	// execute the function call
	got := NewDefaultLogger()
	// compare got vs expected
	require.Equal(t, got, expected)
}

func TestNewNullLogger(t *testing.T) {
	expected := NewLogger(LoggerConfig{
		Level: DebugLevel,
		Out:   io.Discard,
	})
	require.Equal(t, NewNullLogger(), expected)
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		level    int32
		log      func(l LoggerI)
		expected string
	}{
		{
			name:     "debug at debug",
			detail:   "the lowest level admits everything",
			level:    DebugLevel,
			log:      func(l LoggerI) { l.Debugf("%s %s", "arg1", "arg2") },
			expected: "DEBUG: arg1 arg2",
		},
		{
			name:   "debug at info",
			detail: "debug messages are dropped above the debug level",
			level:  InfoLevel,
			log:    func(l LoggerI) { l.Debug("arg1 arg2") },
		},
		{
			name:     "info",
			level:    InfoLevel,
			log:      func(l LoggerI) { l.Infof("%s %s", "arg1", "arg2") },
			expected: "INFO: arg1 arg2",
		},
		{
			name:   "warn at error",
			detail: "warnings are dropped at the error level",
			level:  ErrorLevel,
			log:    func(l LoggerI) { l.Warn("arg1 arg2") },
		},
		{
			name:     "error",
			level:    ErrorLevel,
			log:      func(l LoggerI) { l.Errorf("%s %s", "arg1", "arg2") },
			expected: "ERROR: arg1 arg2",
		},
		{
			name:     "print",
			detail:   "print ignores the level",
			level:    ErrorLevel,
			log:      func(l LoggerI) { l.Print("arg1 arg2") },
			expected: "arg1 arg2",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			test.log(NewLogger(LoggerConfig{Level: test.level, Out: buf}))
			if test.expected == "" {
				require.Empty(t, buf.String())
				return
			}
			require.Contains(t, buf.String(), test.expected)
		})
	}
}

func TestNewLoggerFile(t *testing.T) {
	dir := t.TempDir()
	NewLogger(LoggerConfig{Level: InfoLevel}, dir).Info("to the rotating file")
	bz, err := os.ReadFile(filepath.Join(dir, LogDirectory, LogFileName))
	require.NoError(t, err)
	require.Contains(t, string(bz), "to the rotating file")
}
