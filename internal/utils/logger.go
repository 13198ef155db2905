package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	DebugMode      bool
	CurrentLevel   LogLevel = LevelInfo
	ShowRaylibInfo bool
)

var (
	logMu     sync.Mutex
	logger    = log.New(os.Stderr, "", log.LstdFlags)
	logOutput = termenv.NewOutput(os.Stderr)
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLevel maps a config/flag value to a level. Unknown names yield LevelInfo and false.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// SetOutput redirects log lines. Colors follow the capabilities of w.
func SetOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	logger.SetOutput(w)
	logOutput = termenv.NewOutput(w)
}

func levelColor(level LogLevel) termenv.Color {
	switch level {
	case LevelDebug:
		return termenv.ANSICyan
	case LevelInfo:
		return termenv.ANSIBlue
	case LevelWarn:
		return termenv.ANSIYellow
	default:
		return termenv.ANSIRed
	}
}

func logMessage(level LogLevel, format string, v ...interface{}) {
	if level < CurrentLevel {
		return
	}

	logMu.Lock()
	defer logMu.Unlock()

	tag := logOutput.String(fmt.Sprintf("[%s]", level.String())).Foreground(levelColor(level))
	logger.Printf(tag.String()+" "+format, v...)
}

func Info(format string, v ...interface{})  { logMessage(LevelInfo, format, v...) }
func Debug(format string, v ...interface{}) { logMessage(LevelDebug, format, v...) }
func Warn(format string, v ...interface{})  { logMessage(LevelWarn, format, v...) }
func Error(format string, v ...interface{}) { logMessage(LevelError, format, v...) }

func RaylibLogCallback(level int, text string) {
	formatted := logOutput.String("[RAYLIB]").Foreground(termenv.ANSIMagenta).String() + " " + text
	switch level {
	case 1, 2: // LOG_TRACE, LOG_DEBUG
		if CurrentLevel <= LevelDebug {
			Debug("%s", formatted)
		}
	case 3: // LOG_INFO
		if ShowRaylibInfo || CurrentLevel <= LevelDebug {
			Info("%s", formatted)
		}
	case 4: // LOG_WARNING
		Warn("%s", formatted)
	case 5, 6: // LOG_ERROR, LOG_FATAL
		Error("%s", formatted)
	}
}
