package log

import (
	"time"

	"go.uber.org/zap"
)

var (
	String = zap.String
	Bool   = zap.Bool
	Any    = zap.Any
)

// Duration records a time.Duration field.
func Duration(key string, d time.Duration) Field {
	return zap.Duration(key, d)
}

// Time records a time.Time field.
func Time(key string, t time.Time) Field {
	return zap.Time(key, t)
}

// Cause records the error that caused the event being logged.
func Cause(err error) Field {
	return zap.Error(err)
}
