package lib

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LogDirectory = "logs"
	LogFileName  = "log"
)

/*
	Leveled, colored logging for the node. Output goes to stdout and an auto-rotating file in the data directory
	unless an explicit writer is configured.
*/

func init() {
	color.NoColor = false
}

// LoggerI defines the interface for various logging levels and formatted output
type LoggerI interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)
	Print(msg string)
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Printf(format string, args ...interface{})
}

const (
	DebugLevel int32 = -4
	InfoLevel  int32 = 0
	WarnLevel  int32 = 4
	ErrorLevel int32 = 8
)

var _ LoggerI = &Logger{}

// LoggerConfig holds the minimum level and the destination writer
type LoggerConfig struct {
	Level int32 `json:"level"`
	Out   io.Writer
}

// Logger is the concrete implementation of LoggerI
type Logger struct {
	config LoggerConfig
}

// level couples a threshold with its label and color
type level struct {
	threshold int32
	label     string
	paint     func(format string, a ...interface{}) string
}

var (
	debugL = level{DebugLevel, "DEBUG: ", color.BlueString}
	info   = level{InfoLevel, "INFO: ", color.GreenString}
	warn   = level{WarnLevel, "WARN: ", color.YellowString}
	errL   = level{ErrorLevel, "ERROR: ", color.RedString}
	fatal  = level{ErrorLevel, "FATAL: ", color.RedString}
)

func (l *Logger) Debug(msg string) { l.log(debugL, msg) }
func (l *Logger) Info(msg string)  { l.log(info, msg) }
func (l *Logger) Warn(msg string)  { l.log(warn, msg) }
func (l *Logger) Error(msg string) { l.log(errL, msg) }
func (l *Logger) Print(msg string) { l.write(msg) }

// Fatal() logs the message and terminates the program
func (l *Logger) Fatal(msg string) {
	l.write(paint(fatal.paint, fatal.label+msg))
	os.Exit(1)
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.log(debugL, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log(info, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log(warn, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(errL, fmt.Sprintf(format, args...)) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.Fatal(fmt.Sprintf(format, args...)) }
func (l *Logger) Printf(format string, args ...interface{}) { l.write(fmt.Sprintf(format, args...)) }

// log() writes msg if the configured level admits it
func (l *Logger) log(lvl level, msg string) {
	if l.config.Level > lvl.threshold {
		return
	}
	l.write(paint(lvl.paint, lvl.label+msg))
}

// write() outputs the log message with a timestamp to the configured writer
func (l *Logger) write(msg string) {
	stamp := color.HiBlackString(time.Now().Format(time.StampMilli))
	if _, err := fmt.Fprintf(l.config.Out, "%s %s\n", stamp, msg); err != nil {
		fmt.Println(newLogError(err))
	}
}

// NewLogger() creates a new Logger; a nil writer logs to stdout and a rotating file under the data directory
func NewLogger(config LoggerConfig, dataDirPath ...string) LoggerI {
	if config.Out == nil {
		dir := DefaultDataDirPath()
		if len(dataDirPath) != 0 && dataDirPath[0] != "" {
			dir = dataDirPath[0]
		}
		logDir := filepath.Join(dir, LogDirectory)
		if _, err := os.Stat(logDir); errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(logDir, os.ModePerm); err != nil {
				panic(err)
			}
		}
		config.Out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   filepath.Join(logDir, LogFileName),
			MaxSize:    1, // megabyte
			MaxBackups: 500,
			MaxAge:     14, // days
			Compress:   true,
		})
	}
	return &Logger{config: config}
}

// NewDefaultLogger() creates a Logger at the Debug level writing to stdout
func NewDefaultLogger() LoggerI {
	return NewLogger(LoggerConfig{Level: DebugLevel, Out: os.Stdout})
}

// NewNullLogger() creates a Logger that discards all output
func NewNullLogger() LoggerI {
	return NewLogger(LoggerConfig{Level: DebugLevel, Out: io.Discard})
}

// paint() colors each line of msg separately so multi-line errors stay readable
func paint(p func(format string, a ...interface{}) string, msg string) string {
	lines := strings.Split(msg, "\n")
	for i, line := range lines {
		lines[i] = p("%s", line)
	}
	return strings.Join(lines, "\n")
}
