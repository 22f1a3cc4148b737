package session

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/scriptorhq/scriptor/pkg/audio"
)

// Observer is notified after every transition, once the writer has released
// the lock, so it never blocks another transition. Per spec.md §4.4 ("all
// observers receive the new state only after the writer releases") and §9
// ("observer isolation... no observer may starve peers"), a panicking
// Observer is caught and logged by the Machine; it never prevents other
// observers from running or corrupts the Machine's internal state.
type Observer func(old, new State, action Action, ev Event)

// Machine is the single authoritative source of session state. It owns the
// current State and, while Dictating, the DictationBuffer — ownership is
// moved out via the Action returned from Transition, never shared, per
// spec.md §9's "ownership, not sharing, for the hot buffer".
type Machine struct {
	mu        sync.Mutex
	current   State
	buffer    *DictationBuffer
	observers []Observer
	logger    *log.Logger

	id         string
	currentJob string
}

// NewMachine starts a Machine in Inactive, identified by a fresh session id
// surfaced in the `STATE:` snapshot (spec.md §6) so a UI front-end can tell
// two backend runs apart across a reconnect.
func NewMachine(logger *log.Logger) *Machine {
	return &Machine{current: inactiveState{}, logger: logger, id: uuid.NewString()}
}

// ID returns this Machine's session id, stable for its whole process
// lifetime.
func (m *Machine) ID() string { return m.id }

// IsActiveJob reports whether id is still the Machine's current dictation
// job. A Transcriber/LLM worker calls this immediately before emitting any
// output, so a HotkeyAbort that raced ahead of an in-flight result (spec.md
// §4.4/§5: "partial output discarded; the associated worker's completion
// callback becomes a no-op") is honored even though the worker holds its
// own copy of the buffer and cannot observe the abort directly.
func (m *Machine) IsActiveJob(id string) bool {
	if id == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentJob == id
}

// Subscribe registers an Observer. Not safe to call concurrently with
// Transition on the same Machine from outside the pipeline worker's own
// setup phase.
func (m *Machine) Subscribe(obs Observer) {
	m.mu.Lock()
	m.observers = append(m.observers, obs)
	m.mu.Unlock()
}

// Snapshot returns the current state without mutating anything.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CurrentBuffer returns the DictationBuffer owned by the Machine while
// Dictating, or nil otherwise. The pipeline worker uses this to append
// captured frames; no other worker may touch it until it is moved out by a
// Processing transition.
func (m *Machine) CurrentBuffer() *DictationBuffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.Phase() != Dictation {
		return nil
	}
	return m.buffer
}

// SeedBuffer flushes ring-buffer pre-roll frames into the owned
// DictationBuffer once VAD confirms speech has started, per spec.md §4.2.
// It is a no-op outside the Dictation phase.
func (m *Machine) SeedBuffer(preroll []audio.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current.Phase() != Dictation || m.buffer == nil {
		return
	}
	m.buffer.Seed(preroll)
}

// Advise notifies observers of a non-transitioning advisory event carrying
// a device-conflict suggestion. Its caller is the device-retry path, after
// DeviceLost has already moved the session to Inactive; nothing watches for
// sustained all-zero frames during Dictation, so no advisory is raised
// there. The phase does not change.
func (m *Machine) Advise(suggestion string) {
	m.mu.Lock()
	cur := m.current
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	ev := Event{Type: DeviceLost, Err: fmt.Errorf("advisory: %s", suggestion)}
	action := Action{Type: ActionSurfaceError, Err: ev.Err}
	m.notify(observers, cur, cur, action, ev)
}

// Transition applies ev to the current state per spec.md §4.4's table and
// returns the Action the caller (pipeline worker) must now dispatch to the
// appropriate long-lived worker. An unrecognized (state, event) pair is not
// an error: it is ignored and ActionNone is returned, since the table is
// deliberately partial (e.g. a stray HotkeyStop while Inactive).
func (m *Machine) Transition(ev Event) (newState State, action Action) {
	m.mu.Lock()
	old := m.current
	newState, action, bufferForTranscription := m.resolve(old, ev)
	m.current = newState
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	if bufferForTranscription != nil {
		action.Buffer = bufferForTranscription
	}

	m.notify(observers, old, newState, action, ev)
	return newState, action
}

func (m *Machine) resolve(old State, ev Event) (State, Action, *DictationBuffer) {
	if ev.Type == DeviceLost {
		m.buffer = nil
		m.currentJob = ""
		return inactiveState{micError: errString(ev.Err)}, Action{Type: ActionScheduleRetry, Err: ev.Err}, nil
	}

	switch old.Phase() {
	case Inactive:
		if ev.Type == DeviceReady {
			if ev.RecognizerLoaded {
				return activationState{}, Action{Type: ActionNone}, nil
			}
			return preparingState{}, Action{Type: ActionNone}, nil
		}

	case Preparing:
		if ev.Type == RecognizerReady {
			return activationState{}, Action{Type: ActionNone}, nil
		}

	case Activation:
		switch ev.Type {
		case WakeWordDetected, HotkeyStart:
			m.buffer = NewDictationBuffer(nil)
			m.currentJob = m.buffer.JobID
			return dictationState{mode: ev.Mode}, Action{Type: ActionNone}, nil
		case HotkeyToggleActive:
			return inactiveState{}, Action{Type: ActionStopAudio}, nil
		}

	case Dictation:
		mode := old.Mode()
		switch ev.Type {
		case SilenceTimeout, HotkeyStop:
			buf := m.buffer
			m.buffer = nil
			return processingState{mode: mode}, Action{Type: ActionStartTranscription, Mode: mode, JobID: buf.JobID}, buf
		case HotkeyAbort:
			m.buffer = nil
			m.currentJob = ""
			return activationState{}, Action{Type: ActionNone}, nil
		}

	case Processing:
		mode := old.Mode()
		switch ev.Type {
		case TranscriptionDone:
			if mode == ModeDictate {
				m.currentJob = ""
				return activationState{}, Action{Type: ActionDeliverText, Mode: mode, Text: ev.Text}, nil
			}
			return processingState{mode: mode}, Action{Type: ActionStreamLLM, Mode: mode, Text: ev.Text, JobID: m.currentJob}, nil
		case LLMDone:
			m.currentJob = ""
			return activationState{}, Action{Type: ActionDeliverText, Mode: mode, Text: ev.Text}, nil
		case TranscriptionFailed, LLMFailed:
			m.currentJob = ""
			return activationState{}, Action{Type: ActionSurfaceError, Err: ev.Err}, nil
		case HotkeyAbort:
			m.currentJob = ""
			return activationState{}, Action{Type: ActionNone}, nil
		}
	}

	return old, Action{Type: ActionNone}, nil
}

func (m *Machine) notify(observers []Observer, old, new State, action Action, ev Event) {
	for _, obs := range observers {
		m.safeCall(obs, old, new, action, ev)
	}
}

func (m *Machine) safeCall(obs Observer, old, new State, action Action, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			if m.logger != nil {
				m.logger.Error("session observer panicked", "recovered", r)
			}
		}
	}()
	obs(old, new, action, ev)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
