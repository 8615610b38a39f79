package workers

import "carfinder/logging"

// LogFunc receives worker events. Tests swap it to observe a run.
type LogFunc func(level logging.Level, source, message string)

// StdLogger writes through the process logger (default)
var StdLogger LogFunc = func(level logging.Level, source, message string) {
	logging.Logf(level, source, "%s", message)
}
