package locomotion

import "sync/atomic"

// debugLoggingEnabled controls debug logging for the locomotion subsystem.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables locomotion debug logging.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
