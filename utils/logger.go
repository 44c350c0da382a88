package utils

import "log"

type LogLevel int

const (
	LogLevelError = LogLevel(1 << iota)
	LogLevelInfo
	LogLevelNotice
	LogLevelDebug
)

// Payment notices are part of the default output; debug chatter is not.
var GlobalLogLevel = LogLevelError | LogLevelInfo | LogLevelNotice

// EnableDebugLog widens the global level to include debug output.
func EnableDebugLog() {
	GlobalLogLevel |= LogLevelDebug
}

func logf(level LogLevel, tag, format string, v ...any) {
	if GlobalLogLevel&level == 0 {
		return
	}
	log.Printf(tag+format, v...)
}

func Errorf(format string, v ...any) {
	logf(LogLevelError, "ERROR ", format, v...)
}

func Logf(format string, v ...any) {
	logf(LogLevelInfo, "", format, v...)
}

func Noticef(format string, v ...any) {
	logf(LogLevelNotice, "NOTICE ", format, v...)
}

func Debugf(format string, v ...any) {
	logf(LogLevelDebug, "DEBUG ", format, v...)
}
