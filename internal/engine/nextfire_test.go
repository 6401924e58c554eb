package engine

import (
	"testing"
	"time"
)

func TestNextFire_NowWhenActiveOrScheduleOn(t *testing.T) {
	cfg := testConfig()

	st := heatState(18.0, 20.0)
	st.BoilerActive = true
	if got, ok := NextFire(st, cfg, Schedule{}, t0); !ok || !got.Equal(t0) {
		t.Fatalf("active boiler must project 'now', got %v ok=%v", got, ok)
	}

	st.BoilerActive = false
	if got, ok := NextFire(st, cfg, Schedule{State: ScheduleOn}, t0); !ok || !got.Equal(t0) {
		t.Fatalf("ON schedule must project 'now', got %v ok=%v", got, ok)
	}
}

func TestNextFire_NoScheduleNoProjection(t *testing.T) {
	cfg := testConfig()
	st := heatState(18.0, 20.0)

	if _, ok := NextFire(st, cfg, Schedule{State: ScheduleOff}, t0); ok {
		t.Fatalf("no next_on means no projection")
	}
}

func TestNextFire_VerbatimWhenPreheatDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.PreheatEnabled = false
	st := heatState(18.0, 20.0)

	nextOn := t0.Add(90 * time.Minute)
	got, ok := NextFire(st, cfg, Schedule{State: ScheduleOff, NextOn: nextOn}, t0)
	if !ok || !got.Equal(nextOn) {
		t.Fatalf("preheat disabled must return next_on verbatim, got %v", got)
	}
}

func TestNextFire_PreheatLeadAndClamp(t *testing.T) {
	cfg := testConfig()
	cfg.ComfortTemp = 20.0

	st := heatState(17.0, 16.0)
	st.HeatUpRate = 0.05 // deficit 3 => 60 min lead

	nextOn := t0.Add(90 * time.Minute)
	got, ok := NextFire(st, cfg, Schedule{State: ScheduleOff, NextOn: nextOn}, t0)
	if !ok || !got.Equal(nextOn.Add(-60*time.Minute)) {
		t.Fatalf("expected fire at T-60min, got %v", got)
	}

	// Window already open: clamp to now, never the past.
	nextOn = t0.Add(30 * time.Minute)
	got, ok = NextFire(st, cfg, Schedule{State: ScheduleOff, NextOn: nextOn}, t0)
	if !ok || !got.Equal(t0) {
		t.Fatalf("projection must clamp to now, got %v", got)
	}

	// Projection is read-only: the latch must be untouched.
	if st.PreheatLatch {
		t.Fatalf("NextFire must not mutate control state")
	}
}

func TestNextFire_AlreadyWarm(t *testing.T) {
	cfg := testConfig()
	st := heatState(21.0, 16.0) // above comfort

	nextOn := t0.Add(90 * time.Minute)
	got, ok := NextFire(st, cfg, Schedule{State: ScheduleOff, NextOn: nextOn}, t0)
	if !ok || !got.Equal(nextOn) {
		t.Fatalf("no deficit means next_on verbatim, got %v", got)
	}
}
