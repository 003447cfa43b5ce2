package events

import "sync/atomic"

// debugLoggingEnabled controls debug logging for the behavior-job queue.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables queue debug logging.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
