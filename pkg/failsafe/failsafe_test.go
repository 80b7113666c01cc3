package failsafe

import (
	"sync"
	"testing"
	"time"
)

func TestEvaluateAlarmSequence(t *testing.T) {
	// Voltage trace crossing into and out of the critical band.
	steps := []struct {
		voltage   string
		v         float64
		wantState State
		wantAlert bool
	}{
		{"healthy", 25.2, StateNormal, false},
		{"sagging", 22.0, StateNormal, false},
		{"crosses threshold", 20.5, StateCritical, true},
		{"still critical", 20.0, StateCritical, false},
		{"recovers", 21.6, StateNormal, false},
	}

	m := NewMachine(DefaultCriticalVoltage)
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	alerts := 0
	for _, step := range steps {
		state, alert := m.Evaluate(step.v, at)
		if state != step.wantState {
			t.Errorf("%s (%.1fV): state = %v, want %v", step.voltage, step.v, state, step.wantState)
		}
		if (alert != nil) != step.wantAlert {
			t.Errorf("%s (%.1fV): alert = %v, want alert %v", step.voltage, step.v, alert, step.wantAlert)
		}
		if alert != nil {
			alerts++
			if alert.CurrentVolts != 20.5 {
				t.Errorf("alert voltage = %v, want 20.5", alert.CurrentVolts)
			}
		}
		at = at.Add(time.Second)
	}

	if alerts != 1 {
		t.Errorf("expected exactly one alert over the sequence, got %d", alerts)
	}
}

func TestEvaluateHysteresisBand(t *testing.T) {
	m := NewMachine(21.0)

	// Enter critical.
	if state, alert := m.Evaluate(20.9, time.Now()); state != StateCritical || alert == nil {
		t.Fatalf("expected critical with alert, got %v, %v", state, alert)
	}

	// Readings inside [threshold, threshold+margin) keep the critical state
	// and never raise another alert.
	for _, v := range []float64{21.0, 21.2, 21.499999} {
		state, alert := m.Evaluate(v, time.Now())
		if state != StateCritical {
			t.Errorf("voltage %v: state = %v, want critical", v, state)
		}
		if alert != nil {
			t.Errorf("voltage %v: unexpected alert inside hysteresis band", v)
		}
	}

	// Exactly the recovery level exits.
	if state, _ := m.Evaluate(21.5, time.Now()); state != StateNormal {
		t.Errorf("voltage 21.5: state = %v, want normal", state)
	}
}

func TestEvaluateThresholdBoundary(t *testing.T) {
	m := NewMachine(21.0)

	// Exactly the threshold is not critical; entry is strict.
	if state, alert := m.Evaluate(21.0, time.Now()); state != StateNormal || alert != nil {
		t.Errorf("voltage at threshold: state = %v alert = %v, want normal and no alert", state, alert)
	}

	if state, alert := m.Evaluate(20.999, time.Now()); state != StateCritical || alert == nil {
		t.Errorf("voltage below threshold: state = %v alert = %v, want critical with alert", state, alert)
	}
}

func TestEvaluateReEntryRaisesNewAlert(t *testing.T) {
	m := NewMachine(21.0)

	if _, alert := m.Evaluate(20.0, time.Now()); alert == nil {
		t.Fatal("expected first alert")
	}
	if state, _ := m.Evaluate(21.7, time.Now()); state != StateNormal {
		t.Fatal("expected recovery")
	}
	_, alert := m.Evaluate(20.8, time.Now())
	if alert == nil {
		t.Fatal("expected a second alert after recovery")
	}
	if alert.CurrentVolts != 20.8 {
		t.Errorf("second alert voltage = %v, want 20.8", alert.CurrentVolts)
	}
}

func TestAlertContents(t *testing.T) {
	m := NewMachine(21.0)
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	_, alert := m.Evaluate(20.5, at)
	if alert == nil {
		t.Fatal("expected alert")
	}

	if alert.Message != "Battery voltage critical: 20.5V" {
		t.Errorf("message = %q", alert.Message)
	}
	if alert.Priority != PriorityHigh {
		t.Errorf("priority = %q, want %q", alert.Priority, PriorityHigh)
	}
	if alert.ThresholdVolts != 21.0 {
		t.Errorf("threshold = %v, want 21.0", alert.ThresholdVolts)
	}
	if alert.ActionRequired != ActionImmediateLanding {
		t.Errorf("action = %q, want %q", alert.ActionRequired, ActionImmediateLanding)
	}
	if !alert.EmittedAt.Equal(at) {
		t.Errorf("emitted at = %v, want %v", alert.EmittedAt, at)
	}
}

func TestAlertWire(t *testing.T) {
	alert := Alert{
		Priority:       PriorityHigh,
		Message:        "Battery voltage critical: 20.5V",
		ThresholdVolts: 21.0,
		CurrentVolts:   20.5,
		EmittedAt:      time.Date(2026, 5, 1, 12, 0, 0, 500000000, time.UTC),
		ActionRequired: ActionImmediateLanding,
	}

	p := alert.Wire()
	if p.Type != AlertTypeCritical {
		t.Errorf("type = %q, want %q", p.Type, AlertTypeCritical)
	}
	if p.CurrentVoltage != 20.5 {
		t.Errorf("current_voltage = %v, want 20.5", p.CurrentVoltage)
	}
	if p.Threshold != 21.0 {
		t.Errorf("threshold = %v, want 21.0", p.Threshold)
	}
	if p.Timestamp != "2026-05-01T12:00:00.5Z" {
		t.Errorf("timestamp = %q", p.Timestamp)
	}
}

func TestCustomThreshold(t *testing.T) {
	// 4S pack thresholds.
	m := NewMachine(14.0)

	if m.Threshold() != 14.0 {
		t.Errorf("threshold = %v, want 14.0", m.Threshold())
	}
	if m.RecoveryVoltage() != 14.5 {
		t.Errorf("recovery = %v, want 14.5", m.RecoveryVoltage())
	}

	if state, _ := m.Evaluate(13.9, time.Now()); state != StateCritical {
		t.Errorf("state = %v, want critical", state)
	}
	if state, _ := m.Evaluate(14.4, time.Now()); state != StateCritical {
		t.Errorf("state = %v, want critical inside band", state)
	}
	if state, _ := m.Evaluate(14.5, time.Now()); state != StateNormal {
		t.Errorf("state = %v, want normal at recovery level", state)
	}
}

func TestNewMachineDefaultThreshold(t *testing.T) {
	for _, invalid := range []float64{0, -5} {
		m := NewMachine(invalid)
		if m.Threshold() != DefaultCriticalVoltage {
			t.Errorf("NewMachine(%v).Threshold() = %v, want %v", invalid, m.Threshold(), DefaultCriticalVoltage)
		}
	}
}

func TestStateString(t *testing.T) {
	if StateNormal.String() != "NORMAL" {
		t.Errorf("StateNormal = %q", StateNormal.String())
	}
	if StateCritical.String() != "CRITICAL" {
		t.Errorf("StateCritical = %q", StateCritical.String())
	}
}

func TestLastAlert(t *testing.T) {
	m := NewMachine(21.0)

	if m.LastAlert() != nil {
		t.Error("expected nil last alert before any transition")
	}

	m.Evaluate(20.0, time.Now())
	alert := m.LastAlert()
	if alert == nil {
		t.Fatal("expected last alert after transition")
	}
	if alert.CurrentVolts != 20.0 {
		t.Errorf("last alert voltage = %v, want 20.0", alert.CurrentVolts)
	}

	// Recovery does not clear the last alert record.
	m.Evaluate(22.0, time.Now())
	if m.LastAlert() == nil {
		t.Error("recovery should not clear the last alert")
	}
}

func TestStateReadableDuringEvaluation(t *testing.T) {
	m := NewMachine(21.0)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Concurrent readers, as the status endpoint would do.
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					s := m.State()
					if s != StateNormal && s != StateCritical {
						t.Errorf("invalid state observed: %v", s)
						return
					}
					m.LastAlert()
				}
			}
		}()
	}

	// Single writer ramping the voltage across the band.
	for i := 0; i < 1000; i++ {
		v := 20.0 + float64(i%40)*0.05
		m.Evaluate(v, time.Now())
	}
	close(stop)
	wg.Wait()
}

func BenchmarkEvaluate(b *testing.B) {
	m := NewMachine(21.0)
	at := time.Now()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m.Evaluate(24.0, at)
	}
}
