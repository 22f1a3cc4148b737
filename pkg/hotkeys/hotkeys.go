// Package hotkeys registers the global key combinations spec.md §6 names
// and dispatches the corresponding Action to the pipeline worker.
package hotkeys

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.design/x/hotkey"
)

// Action is one of the eight named hotkey surfaces of spec.md §6.
type Action string

const (
	ActionToggleActive   Action = "toggle-active"
	ActionStartDictate   Action = "start-dictate"
	ActionStartProofread Action = "start-proofread"
	ActionStartLetter    Action = "start-letter"
	ActionStopDictate    Action = "stop-dictate"
	ActionAbortDictate   Action = "abort-dictate"
	ActionRestart        Action = "restart"
	ActionShowHotkeys    Action = "show-hotkeys"
)

// AllActions lists every hotkey surface, in the order spec.md §6 lists
// them.
var AllActions = []Action{
	ActionToggleActive,
	ActionStartDictate,
	ActionStartProofread,
	ActionStartLetter,
	ActionStopDictate,
	ActionAbortDictate,
	ActionRestart,
	ActionShowHotkeys,
}

// Binding is one Action's key combination. Exact combinations are
// configuration, not contract, per spec.md §6. The persisted settings file
// has no hotkey field, so DefaultBindings is the only source of bindings.
type Binding struct {
	Action Action
	Mods   []hotkey.Modifier
	Key    hotkey.Key
}

// DefaultBindings returns the compile-time default binding table.
func DefaultBindings() []Binding {
	return []Binding{
		{ActionToggleActive, []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeySpace},
		{ActionStartDictate, []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyD},
		{ActionStartProofread, []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyP},
		{ActionStartLetter, []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyL},
		{ActionStopDictate, []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyS},
		{ActionAbortDictate, []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyEscape},
		{ActionRestart, []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyR},
		{ActionShowHotkeys, []hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyH},
	}
}

// Listener registers global hotkeys and posts the bound Action to the
// pipeline worker on keydown. It is the OS-global key listener named in
// spec.md §5's worker list ("posts events to the pipeline worker").
type Listener struct {
	mu       sync.Mutex
	bindings []Binding
	active   []*hotkey.Hotkey
	emit     func(Action)
	logger   *log.Logger
	stopCh   chan struct{}
}

// NewListener builds a Listener over bindings; emit is called once per
// keydown on its own goroutine per binding.
func NewListener(bindings []Binding, emit func(Action), logger *log.Logger) *Listener {
	return &Listener{bindings: bindings, emit: emit, logger: logger}
}

// Start registers every binding with the OS and begins dispatching events.
// If any registration fails, Start unregisters everything it already
// registered and returns the error.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopCh = make(chan struct{})
	for _, b := range l.bindings {
		hk := hotkey.New(b.Mods, b.Key)
		if err := hk.Register(); err != nil {
			l.unregisterLocked()
			return fmt.Errorf("hotkeys: register %s: %w", b.Action, err)
		}
		l.active = append(l.active, hk)
		go l.watch(b.Action, hk, l.stopCh)
	}
	return nil
}

func (l *Listener) watch(action Action, hk *hotkey.Hotkey, stop <-chan struct{}) {
	for {
		select {
		case <-hk.Keydown():
			l.emit(action)
		case <-stop:
			return
		}
	}
}

// Stop unregisters every bound hotkey.
func (l *Listener) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unregisterLocked()
}

func (l *Listener) unregisterLocked() error {
	if l.stopCh != nil {
		close(l.stopCh)
		l.stopCh = nil
	}
	var firstErr error
	for _, hk := range l.active {
		if err := hk.Unregister(); err != nil && firstErr == nil {
			firstErr = err
			l.logger.Warn("hotkey unregister failed", "err", err)
		}
	}
	l.active = nil
	return firstErr
}

// Map returns the current bindings as an Action -> human-readable combo
// map, for the `HOTKEYS:<json>` IPC event.
func Map(bindings []Binding) map[string]string {
	out := make(map[string]string, len(bindings))
	for _, b := range bindings {
		out[string(b.Action)] = describe(b)
	}
	return out
}

func describe(b Binding) string {
	s := ""
	for _, m := range b.Mods {
		s += modName(m) + "+"
	}
	return s + keyName(b.Key)
}

func modName(m hotkey.Modifier) string {
	switch m {
	case hotkey.ModCtrl:
		return "Ctrl"
	case hotkey.ModShift:
		return "Shift"
	case hotkey.ModOption:
		return "Alt"
	case hotkey.ModCmd:
		return "Cmd"
	default:
		return "?"
	}
}

func keyName(k hotkey.Key) string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "?"
}

var keyNames = map[hotkey.Key]string{
	hotkey.KeySpace:  "Space",
	hotkey.KeyEscape: "Esc",
	hotkey.KeyD:      "D",
	hotkey.KeyP:      "P",
	hotkey.KeyL:      "L",
	hotkey.KeyS:      "S",
	hotkey.KeyR:      "R",
	hotkey.KeyH:      "H",
}
