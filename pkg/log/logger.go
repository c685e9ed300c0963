package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to SetLevel and SetModuleLevel.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var levelNames = map[string]Level{
	"debug":   Debug,
	"info":    Info,
	"notice":  Notice,
	"warning": Warning,
	"error":   Error,
}

// The logger format
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

var (
	mu sync.Mutex

	// The internal leveled logger backend
	leveledBackend logging.LeveledBackend

	// Levels survive a sink change; "" is the default for every module
	levels = map[string]Level{"": Warning}
)

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new named logger. The name is the module used by SetModuleLevel.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Override the backend output sink.
func SetSink(sink io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	backend := logging.NewLogBackend(sink, "", 0)
	backendWithFormatter := logging.NewBackendFormatter(backend, format)
	leveledBackend = logging.AddModuleLevel(backendWithFormatter)
	for module, level := range levels {
		leveledBackend.SetLevel(toLogging(level), module)
	}
	logging.SetBackend(leveledBackend)
}

// Set the default logger verbosity.
func SetLevel(level Level) {
	SetModuleLevel("", level)
}

// Set the verbosity of a single module, e.g. "chi2" or "material".
func SetModuleLevel(module string, level Level) {
	mu.Lock()
	defer mu.Unlock()

	levels[module] = level
	leveledBackend.SetLevel(toLogging(level), module)
}

// Parse a level name (debug, info, notice, warning, error).
func ParseLevel(name string) (Level, error) {
	level, ok := levelNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

func toLogging(level Level) logging.Level {
	switch level {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Notice:
		return logging.NOTICE
	case Error:
		return logging.ERROR
	}
	return logging.WARNING
}

func init() {
	SetSink(os.Stderr)
}
