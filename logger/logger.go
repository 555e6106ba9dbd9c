// Package logger provides logging for the cinerate server with dual-backend
// output (console and rotating file) and a buffered copy of recent entries
// that administrators can read back over the API.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/op/go-logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	module           = "cinerate"
	maxLogBufferSize = 10240                 // Maximum log entries kept in memory
	logFileName      = "cinerate.log"        // Log file name
	timeFormat       = "2006/01/02 15:04:05" // Log timestamp format
)

// Options configures a Logger. A zero Dir disables the file backend and a nil
// Output sends console logs to stderr.
type Options struct {
	Level  logging.Level
	Dir    string
	Output io.Writer
}

type entry struct {
	time  string
	level logging.Level
	log   string
}

// Logger is built once at startup and handed to every component.
type Logger struct {
	l       *logging.Logger
	logFile io.Closer

	mu     sync.Mutex
	buffer []entry
}

// New initializes the console backend at opts.Level and, when opts.Dir is
// set, a rotating file backend that always records DEBUG.
func New(opts Options) *Logger {
	lg := &Logger{l: logging.MustGetLogger(module)}
	backends := make([]logging.Backend, 0, 2)

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	console := logging.AddModuleLevel(
		logging.NewBackendFormatter(logging.NewLogBackend(out, "", 0), newFormatter()))
	console.SetLevel(opts.Level, module)
	backends = append(backends, console)

	if opts.Dir != "" {
		if fileBackend := lg.initFileBackend(opts.Dir); fileBackend != nil {
			leveled := logging.AddModuleLevel(fileBackend)
			leveled.SetLevel(logging.DEBUG, module)
			backends = append(backends, leveled)
		}
	}

	lg.l.SetBackend(logging.MultiLogger(backends...))
	lg.l.ExtraCalldepth = 1
	return lg
}

// Discard returns a logger that writes nowhere. The in-memory buffer still works.
func Discard() *Logger {
	return New(Options{Level: logging.DEBUG, Output: io.Discard})
}

// ParseLevel maps a configured level name onto a go-logging level.
func ParseLevel(name string) (logging.Level, error) {
	if strings.EqualFold(name, "warn") {
		return logging.WARNING, nil
	}
	return logging.LogLevel(name)
}

func (lg *Logger) initFileBackend(dir string) logging.Backend {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log folder %s: %v\n", dir, err)
		return nil
	}
	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(dir, logFileName),
		MaxSize:    5, // megabytes
		MaxBackups: 3,
	}
	lg.logFile = rotating
	return logging.NewBackendFormatter(logging.NewLogBackend(rotating, "", 0), newFormatter())
}

func newFormatter() logging.Formatter {
	return logging.MustStringFormatter(`%{time:` + timeFormat + `} [%{level}] [%{shortfile}] %{message}`)
}

// Close releases the log file, if any.
func (lg *Logger) Close() error {
	if lg.logFile == nil {
		return nil
	}
	err := lg.logFile.Close()
	lg.logFile = nil
	return err
}

func (lg *Logger) Debug(args ...any) {
	lg.l.Debug(args...)
	lg.addToBuffer(logging.DEBUG, fmt.Sprint(args...))
}

func (lg *Logger) Debugf(format string, args ...any) {
	lg.l.Debugf(format, args...)
	lg.addToBuffer(logging.DEBUG, fmt.Sprintf(format, args...))
}

func (lg *Logger) Info(args ...any) {
	lg.l.Info(args...)
	lg.addToBuffer(logging.INFO, fmt.Sprint(args...))
}

func (lg *Logger) Infof(format string, args ...any) {
	lg.l.Infof(format, args...)
	lg.addToBuffer(logging.INFO, fmt.Sprintf(format, args...))
}

func (lg *Logger) Notice(args ...any) {
	lg.l.Notice(args...)
	lg.addToBuffer(logging.NOTICE, fmt.Sprint(args...))
}

func (lg *Logger) Noticef(format string, args ...any) {
	lg.l.Noticef(format, args...)
	lg.addToBuffer(logging.NOTICE, fmt.Sprintf(format, args...))
}

func (lg *Logger) Warning(args ...any) {
	lg.l.Warning(args...)
	lg.addToBuffer(logging.WARNING, fmt.Sprint(args...))
}

func (lg *Logger) Warningf(format string, args ...any) {
	lg.l.Warningf(format, args...)
	lg.addToBuffer(logging.WARNING, fmt.Sprintf(format, args...))
}

func (lg *Logger) Error(args ...any) {
	lg.l.Error(args...)
	lg.addToBuffer(logging.ERROR, fmt.Sprint(args...))
}

func (lg *Logger) Errorf(format string, args ...any) {
	lg.l.Errorf(format, args...)
	lg.addToBuffer(logging.ERROR, fmt.Sprintf(format, args...))
}

// Event logs a structured event as "event=<name> k=v ...". kv is read as
// alternating keys and values; a dangling key is logged with an empty value.
func (lg *Logger) Event(level logging.Level, name string, kv ...any) {
	msg := formatEvent(name, kv)
	switch level {
	case logging.DEBUG:
		lg.l.Debug(msg)
	case logging.INFO:
		lg.l.Info(msg)
	case logging.NOTICE:
		lg.l.Notice(msg)
	case logging.WARNING:
		lg.l.Warning(msg)
	case logging.ERROR:
		lg.l.Error(msg)
	default:
		lg.l.Critical(msg)
	}
	lg.addToBuffer(level, msg)
}

func formatEvent(name string, kv []any) string {
	var b strings.Builder
	b.WriteString("event=")
	b.WriteString(name)
	for i := 0; i < len(kv); i += 2 {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(kv[i]))
		b.WriteByte('=')
		if i+1 < len(kv) {
			b.WriteString(formatValue(kv[i+1]))
		}
	}
	return b.String()
}

func formatValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

func (lg *Logger) addToBuffer(level logging.Level, newLog string) {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	if len(lg.buffer) >= maxLogBufferSize {
		lg.buffer = lg.buffer[1:]
	}
	lg.buffer = append(lg.buffer, entry{
		time:  time.Now().Format(timeFormat),
		level: level,
		log:   newLog,
	})
}

// GetLogs returns up to c of the newest buffered entries at or above the
// severity named by level, newest first.
func (lg *Logger) GetLogs(c int, level string) []string {
	logLevel, err := ParseLevel(level)
	if err != nil {
		logLevel = logging.DEBUG
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()

	output := make([]string, 0, c)
	for i := len(lg.buffer) - 1; i >= 0 && len(output) < c; i-- {
		if lg.buffer[i].level <= logLevel {
			output = append(output, fmt.Sprintf("%s %s - %s", lg.buffer[i].time, lg.buffer[i].level, lg.buffer[i].log))
		}
	}
	return output
}
