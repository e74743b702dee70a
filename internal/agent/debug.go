package agent

import "sync/atomic"

// debugLoggingEnabled guards per-tick debug logs.
// Set via EnableDebugLogging() during initialization based on config.LogLevel.
var debugLoggingEnabled atomic.Bool

// EnableDebugLogging enables or disables per-tick debug logging for agents.
func EnableDebugLogging(enabled bool) {
	debugLoggingEnabled.Store(enabled)
}

// IsDebugEnabled returns true if debug logging is enabled.
// Use this to guard debug log calls on the tick path:
//
//	if agent.IsDebugEnabled() {
//	    slog.Debug("waypoint reached", "agent", id, "index", i)
//	}
func IsDebugEnabled() bool {
	return debugLoggingEnabled.Load()
}
