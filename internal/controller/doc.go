// Package controller orchestrates the Sunveil evaluation loop.
//
// The controller periodically computes the sun's position, evaluates every
// configured cover through the cover package, and dispatches position
// commands over MQTT. Between ticks it consumes sensor readings (building
// the climate context for the next evaluation) and cover state reports
// (detecting manual overrides).
//
// # Dispatch Gating
//
// Raw evaluations run every tick, but commands are gated so covers are not
// nudged by fractions of a percent:
//   - moves smaller than min_position_delta are suppressed
//   - commands sooner than min_time_delta after the previous one are held
//   - moves to or from special positions (fully open, fully closed, the
//     configured defaults) bypass both gates
//   - nothing is dispatched during the startup grace period
//   - nothing is dispatched while a manual override is active
//
// # Manual Overrides
//
// A cover state report that differs from the last dispatched position by
// more than override_threshold suspends automatic control for
// override_duration. Reports arriving within command_grace of a dispatched
// command are the cover executing that command and are ignored.
//
// # Thread Safety
//
// All exported methods are safe for concurrent use. MQTT handlers and the
// ticker loop run on separate goroutines and share state under a mutex.
package controller
