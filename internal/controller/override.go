package controller

import (
	"sync"
	"time"

	"github.com/nerrad567/sunveil-core/internal/infrastructure/config"
)

// Override describes a detected manual intervention.
type Override struct {
	// Reported is the position the cover reported.
	Reported float64

	// Expected is the position the controller last dispatched.
	Expected float64

	// DetectedAt is when the report arrived.
	DetectedAt time.Time

	// ExpiresAt is when automatic control resumes. Zero means the
	// override holds until restart or until the cover returns to the
	// expected position.
	ExpiresAt time.Time
}

// OverrideTracker detects manual interventions for one cover and suspends
// automatic control while one is active.
//
// Detection compares reported positions against the last dispatched
// command. Reports within command_grace of a dispatch are the cover
// executing that command and never count. With ignore_intermediate set,
// reports flagged as moving are transit states and never count either.
type OverrideTracker struct {
	mu  sync.Mutex
	cfg config.ControlConfig

	// commandGrace comes from the controller config; the cover needs this
	// long to finish executing a dispatched command.
	commandGrace time.Duration

	expected    float64
	hasExpected bool
	commandedAt time.Time

	active     bool
	indefinite bool
	expiresAt  time.Time
}

// NewOverrideTracker creates a tracker with the given per-cover control
// settings and the controller-wide command grace.
func NewOverrideTracker(cfg config.ControlConfig, commandGrace time.Duration) *OverrideTracker {
	return &OverrideTracker{cfg: cfg, commandGrace: commandGrace}
}

// RecordCommand notes a dispatched command so the cover's own movement is
// not read as manual intervention. value is in the cover's reporting scale
// (after any inversion).
func (o *OverrideTracker) RecordCommand(value float64, at time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.expected = value
	o.hasExpected = true
	o.commandedAt = at
}

// ObserveState inspects a reported position. It returns a non-nil
// Override when the report counts as manual intervention, and clears an
// active override when the cover returns to the expected position.
func (o *OverrideTracker) ObserveState(reported float64, moving bool, at time.Time) *Override {
	o.mu.Lock()
	defer o.mu.Unlock()

	// No dispatched command yet: nothing to compare against.
	if !o.hasExpected {
		return nil
	}

	if moving && o.cfg.IgnoreIntermediate {
		return nil
	}

	// The cover is still executing our own command.
	if at.Sub(o.commandedAt) < o.commandGrace {
		return nil
	}

	delta := reported - o.expected
	if delta < 0 {
		delta = -delta
	}

	if delta < o.cfg.OverrideThreshold {
		// Back at the expected position: manual intervention is over.
		o.active = false
		o.indefinite = false
		return nil
	}

	detected := &Override{
		Reported:   reported,
		Expected:   o.expected,
		DetectedAt: at,
	}

	o.active = true
	if o.cfg.OverrideDuration > 0 {
		o.indefinite = false
		o.expiresAt = at.Add(o.cfg.OverrideDuration)
		detected.ExpiresAt = o.expiresAt
	} else {
		o.indefinite = true
		o.expiresAt = time.Time{}
	}

	return detected
}

// Active reports whether automatic control is currently suspended.
// Expired overrides are cleared as a side effect.
func (o *OverrideTracker) Active(at time.Time) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.active {
		return false
	}
	if o.indefinite {
		return true
	}
	if at.Before(o.expiresAt) {
		return true
	}

	o.active = false
	return false
}

// Clear cancels an active override, resuming automatic control.
func (o *OverrideTracker) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = false
	o.indefinite = false
}
