// Copyright (c) 2026, GroundCtl Authors.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/groundctl/mavmon/pkg/failsafe"
	"github.com/groundctl/mavmon/pkg/snapshot"
	"github.com/groundctl/mavmon/pkg/telemetry"
)

type recvResult struct {
	payload []byte
	err     error
}

// scriptedReceiver replays a fixed sequence of receive results, then
// reports idle until the loop is canceled.
type scriptedReceiver struct {
	results chan recvResult
}

func newScriptedReceiver(results ...recvResult) *scriptedReceiver {
	ch := make(chan recvResult, len(results))
	for _, r := range results {
		ch <- r
	}
	close(ch)
	return &scriptedReceiver{results: ch}
}

func (s *scriptedReceiver) Receive() ([]byte, error) {
	r, ok := <-s.results
	if !ok {
		return nil, errIdle
	}
	return r.payload, r.err
}

type fakeSink struct {
	mu       sync.Mutex
	samples  []telemetry.Sample
	alerts   []failsafe.Alert
	alertErr error
}

func (f *fakeSink) Sample(s telemetry.Sample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, s)
}

func (f *fakeSink) Alert(a failsafe.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, a)
	return f.alertErr
}

func (f *fakeSink) sampleCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.samples)
}

func (f *fakeSink) alertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}

func (f *fakeSink) sampleAt(i int) telemetry.Sample {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.samples[i]
}

func (f *fakeSink) alertAt(i int) failsafe.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alerts[i]
}

func voltagePayload(voltage float64) recvResult {
	return recvResult{
		payload: []byte(fmt.Sprintf(`{"altitude":100,"airspeed":15,"battery_voltage":%v}`, voltage)),
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func runLoop(t *testing.T, l *Loop) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- l.Run(ctx)
	}()

	return func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() returned %v, want nil", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Run() did not return after cancellation")
		}
	}
}

func TestRunProcessesInArrivalOrder(t *testing.T) {
	recv := newScriptedReceiver(
		voltagePayload(25.0),
		voltagePayload(24.0),
		voltagePayload(23.0),
	)
	store := snapshot.NewStore()
	sink := &fakeSink{}
	loop := NewLoop(recv, store, failsafe.NewMachine(0), sink)

	stop := runLoop(t, loop)
	waitFor(t, func() bool { return sink.sampleCount() == 3 }, "samples not delivered")
	stop()

	for i, want := range []float64{25.0, 24.0, 23.0} {
		if got := sink.sampleAt(i).BatteryVoltage; got != want {
			t.Errorf("sample %d voltage = %v, want %v", i, got, want)
		}
	}

	latest, ok := store.Latest()
	if !ok {
		t.Fatal("snapshot empty after processing")
	}
	if latest.BatteryVoltage != 23.0 {
		t.Errorf("latest voltage = %v, want 23.0", latest.BatteryVoltage)
	}
}

func TestRunDiscardsMalformed(t *testing.T) {
	recv := newScriptedReceiver(
		voltagePayload(25.0),
		recvResult{payload: []byte(`{"battery_voltage":true}`)},
		recvResult{payload: []byte(`not json`)},
		voltagePayload(24.5),
	)
	store := snapshot.NewStore()
	sink := &fakeSink{}
	loop := NewLoop(recv, store, failsafe.NewMachine(0), sink)

	stop := runLoop(t, loop)
	waitFor(t, func() bool { return sink.sampleCount() == 2 }, "valid samples not delivered")
	stop()

	if got := sink.alertCount(); got != 0 {
		t.Errorf("alert count = %d, want 0", got)
	}
	latest, _ := store.Latest()
	if latest.BatteryVoltage != 24.5 {
		t.Errorf("latest voltage = %v, want 24.5", latest.BatteryVoltage)
	}
}

func TestRunRaisesAlertOnCriticalTransition(t *testing.T) {
	recv := newScriptedReceiver(
		voltagePayload(25.0),
		voltagePayload(20.5),
		voltagePayload(20.0),
	)
	store := snapshot.NewStore()
	machine := failsafe.NewMachine(0)
	sink := &fakeSink{}
	loop := NewLoop(recv, store, machine, sink)

	stop := runLoop(t, loop)
	waitFor(t, func() bool { return sink.sampleCount() == 3 }, "samples not delivered")
	stop()

	if got := sink.alertCount(); got != 1 {
		t.Fatalf("alert count = %d, want exactly 1", got)
	}
	if got := sink.alertAt(0).CurrentVolts; got != 20.5 {
		t.Errorf("alert voltage = %v, want 20.5", got)
	}
	if got := machine.State(); got != failsafe.StateCritical {
		t.Errorf("machine state = %v, want CRITICAL", got)
	}
}

func TestRunMalformedPreservesAlarmStateAndSnapshot(t *testing.T) {
	recv := newScriptedReceiver(
		voltagePayload(20.5),
		recvResult{payload: []byte(`{"battery_voltage":null}`)},
	)
	store := snapshot.NewStore()
	machine := failsafe.NewMachine(0)
	sink := &fakeSink{}
	loop := NewLoop(recv, store, machine, sink)

	stop := runLoop(t, loop)
	waitFor(t, func() bool { return sink.sampleCount() == 1 }, "sample not delivered")
	stop()

	if got := machine.State(); got != failsafe.StateCritical {
		t.Errorf("machine state = %v, want CRITICAL", got)
	}
	latest, _ := store.Latest()
	if latest.BatteryVoltage != 20.5 {
		t.Errorf("latest voltage = %v, want 20.5", latest.BatteryVoltage)
	}
}

func TestRunTransportFailureBacksOffAndContinues(t *testing.T) {
	recv := newScriptedReceiver(
		recvResult{err: errors.New("socket gone")},
		voltagePayload(24.0),
	)
	store := snapshot.NewStore()
	sink := &fakeSink{}
	loop := NewLoop(recv, store, failsafe.NewMachine(0), sink, WithBackoff(time.Millisecond))

	stop := runLoop(t, loop)
	waitFor(t, func() bool { return sink.sampleCount() == 1 }, "loop did not survive transport failure")
	stop()
}

func TestRunIdleTimeoutContinues(t *testing.T) {
	recv := newScriptedReceiver(
		recvResult{err: errIdle},
		voltagePayload(24.0),
	)
	store := snapshot.NewStore()
	sink := &fakeSink{}
	loop := NewLoop(recv, store, failsafe.NewMachine(0), sink)

	stop := runLoop(t, loop)
	waitFor(t, func() bool { return sink.sampleCount() == 1 }, "loop did not continue past idle window")
	stop()
}

func TestRunAlertDeliveryFailureDoesNotStopLoop(t *testing.T) {
	recv := newScriptedReceiver(
		voltagePayload(20.5),
		voltagePayload(24.0),
	)
	store := snapshot.NewStore()
	sink := &fakeSink{alertErr: errors.New("broker down")}
	loop := NewLoop(recv, store, failsafe.NewMachine(0), sink)

	stop := runLoop(t, loop)
	waitFor(t, func() bool { return sink.sampleCount() == 2 }, "loop stopped after alert failure")
	stop()
}

func TestRunReturnsNilOnCancel(t *testing.T) {
	recv := newScriptedReceiver()
	loop := NewLoop(recv, snapshot.NewStore(), failsafe.NewMachine(0), &fakeSink{})

	stop := runLoop(t, loop)
	stop()
}
