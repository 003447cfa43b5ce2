package jump

import "sync/atomic"

// debugLoggingEnabled controls whether debug logging is enabled for the jump
// subsystem. Package-level flag to avoid checking log level on every tick.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables jump debug logging.
// Call during initialization based on config log level.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
