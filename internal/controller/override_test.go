package controller

import (
	"testing"
	"time"

	"github.com/nerrad567/sunveil-core/internal/infrastructure/config"
)

// ─── Helpers ────────────────────────────────────────────────────────────────

func trackerConfig() config.ControlConfig {
	return config.ControlConfig{
		OverrideThreshold: 5,
		OverrideDuration:  30 * time.Minute,
	}
}

var trackerNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

// ─── Tests ──────────────────────────────────────────────────────────────────

func TestObserveStateWithoutCommand(t *testing.T) {
	o := NewOverrideTracker(trackerConfig(), 90*time.Second)

	if ov := o.ObserveState(80, false, trackerNow); ov != nil {
		t.Error("no override without a dispatched command to compare against")
	}
	if o.Active(trackerNow) {
		t.Error("tracker should start inactive")
	}
}

func TestObserveStateWithinGrace(t *testing.T) {
	o := NewOverrideTracker(trackerConfig(), 90*time.Second)
	o.RecordCommand(50, trackerNow)

	if ov := o.ObserveState(0, false, trackerNow.Add(30*time.Second)); ov != nil {
		t.Error("reports within command grace are the cover executing our command")
	}

	// Same report after the grace is an intervention.
	if ov := o.ObserveState(0, false, trackerNow.Add(2*time.Minute)); ov == nil {
		t.Error("report after grace should count as override")
	}
}

func TestObserveStateThreshold(t *testing.T) {
	o := NewOverrideTracker(trackerConfig(), 90*time.Second)
	o.RecordCommand(50, trackerNow)
	at := trackerNow.Add(5 * time.Minute)

	if ov := o.ObserveState(53, false, at); ov != nil {
		t.Error("3% deviation is below the 5% threshold")
	}
	ov := o.ObserveState(58, false, at)
	if ov == nil {
		t.Fatal("8% deviation should count as override")
	}
	if ov.Reported != 58 || ov.Expected != 50 {
		t.Errorf("reported/expected = %v/%v, want 58/50", ov.Reported, ov.Expected)
	}
	if want := at.Add(30 * time.Minute); !ov.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", ov.ExpiresAt, want)
	}
}

func TestOverrideExpiry(t *testing.T) {
	o := NewOverrideTracker(trackerConfig(), 90*time.Second)
	o.RecordCommand(50, trackerNow)
	o.ObserveState(80, false, trackerNow.Add(5*time.Minute))

	if !o.Active(trackerNow.Add(10 * time.Minute)) {
		t.Error("override should be active before expiry")
	}
	if o.Active(trackerNow.Add(40 * time.Minute)) {
		t.Error("override should have expired")
	}
	// Expiry clears the override for subsequent queries too.
	if o.Active(trackerNow.Add(11 * time.Minute)) {
		t.Error("expired override should stay cleared")
	}
}

func TestOverrideIndefiniteWithZeroDuration(t *testing.T) {
	cfg := trackerConfig()
	cfg.OverrideDuration = 0
	o := NewOverrideTracker(cfg, 90*time.Second)
	o.RecordCommand(50, trackerNow)

	ov := o.ObserveState(80, false, trackerNow.Add(5*time.Minute))
	if ov == nil {
		t.Fatal("override should be detected")
	}
	if !ov.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt = %v, want zero for indefinite override", ov.ExpiresAt)
	}
	if !o.Active(trackerNow.Add(24 * time.Hour)) {
		t.Error("indefinite override should not expire")
	}

	o.Clear()
	if o.Active(trackerNow.Add(24 * time.Hour)) {
		t.Error("Clear() should cancel the override")
	}
}

func TestOverrideClearsOnReturnToExpected(t *testing.T) {
	o := NewOverrideTracker(trackerConfig(), 90*time.Second)
	o.RecordCommand(50, trackerNow)
	o.ObserveState(80, false, trackerNow.Add(5*time.Minute))

	if !o.Active(trackerNow.Add(6 * time.Minute)) {
		t.Fatal("override should be active")
	}

	// The cover is put back near the commanded position by hand.
	if ov := o.ObserveState(51, false, trackerNow.Add(10*time.Minute)); ov != nil {
		t.Error("return to expected is not a new override")
	}
	if o.Active(trackerNow.Add(10 * time.Minute)) {
		t.Error("returning to the expected position should clear the override")
	}
}

func TestObserveStateIgnoreIntermediate(t *testing.T) {
	cfg := trackerConfig()
	cfg.IgnoreIntermediate = true
	o := NewOverrideTracker(cfg, 90*time.Second)
	o.RecordCommand(50, trackerNow)
	at := trackerNow.Add(5 * time.Minute)

	if ov := o.ObserveState(80, true, at); ov != nil {
		t.Error("moving reports are transit states with ignore_intermediate")
	}
	if ov := o.ObserveState(80, false, at); ov == nil {
		t.Error("settled report should still count as override")
	}

	// Without the flag, moving reports count.
	o2 := NewOverrideTracker(trackerConfig(), 90*time.Second)
	o2.RecordCommand(50, trackerNow)
	if ov := o2.ObserveState(80, true, at); ov == nil {
		t.Error("moving reports count without ignore_intermediate")
	}
}

func TestRecordCommandResetsExpectation(t *testing.T) {
	o := NewOverrideTracker(trackerConfig(), 90*time.Second)
	o.RecordCommand(50, trackerNow)
	o.RecordCommand(20, trackerNow.Add(10*time.Minute))

	at := trackerNow.Add(15 * time.Minute)
	if ov := o.ObserveState(21, false, at); ov != nil {
		t.Error("report near the latest command is not an override")
	}
	if ov := o.ObserveState(50, false, at); ov == nil {
		t.Error("report near a stale command should now count as override")
	}
}
