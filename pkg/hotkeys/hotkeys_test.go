package hotkeys

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.design/x/hotkey"
)

func TestDefaultBindingsCoverAllActions(t *testing.T) {
	bindings := DefaultBindings()
	require.Len(t, bindings, len(AllActions))

	seen := make(map[Action]bool)
	for _, b := range bindings {
		seen[b.Action] = true
	}
	for _, a := range AllActions {
		require.True(t, seen[a], "missing binding for %s", a)
	}
}

func TestDefaultBindingsHaveNoDuplicateCombination(t *testing.T) {
	bindings := DefaultBindings()
	combos := make(map[string]Action)
	for _, b := range bindings {
		combo := describe(b)
		if prior, ok := combos[combo]; ok {
			t.Fatalf("combo %q bound to both %s and %s", combo, prior, b.Action)
		}
		combos[combo] = b.Action
	}
}

func TestMapDescribesEveryBinding(t *testing.T) {
	bindings := DefaultBindings()
	m := Map(bindings)
	require.Len(t, m, len(bindings))
	require.Equal(t, "Ctrl+Shift+Space", m[string(ActionToggleActive)])
	require.Equal(t, "Ctrl+Shift+Esc", m[string(ActionAbortDictate)])
}

func TestDescribeUnknownKeyFallsBackToPlaceholder(t *testing.T) {
	b := Binding{Action: ActionRestart, Mods: []hotkey.Modifier{hotkey.ModCtrl}, Key: hotkey.Key(0xFF)}
	require.Equal(t, "Ctrl+?", describe(b))
}

func TestDescribeUnknownModifierFallsBackToPlaceholder(t *testing.T) {
	b := Binding{Action: ActionRestart, Mods: []hotkey.Modifier{hotkey.Modifier(0xFF)}, Key: hotkey.KeyR}
	require.Equal(t, "?+R", describe(b))
}
