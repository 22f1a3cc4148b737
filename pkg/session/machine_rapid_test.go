package session

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

// TestRapidInvariantsHoldUnderRandomEventSequences drives the Machine with
// arbitrary event sequences and checks, after every transition, the
// invariants spec.md §3/§8 require to hold for all inputs: programActive,
// isDictating and Mode stay mutually consistent with the phase.
func TestRapidInvariantsHoldUnderRandomEventSequences(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		m := NewMachine(nil)

		modeGen := rapid.SampledFrom([]Mode{ModeDictate, ModeProofread, ModeLetter})
		eventGen := rapid.SampledFrom([]func() Event{
			func() Event { return EvDeviceReady(rapid.Bool().Draw(rt, "loaded")) },
			func() Event { return EvRecognizerReady() },
			func() Event { return EvWakeWordDetected(modeGen.Draw(rt, "mode")) },
			func() Event { return EvHotkeyStart(modeGen.Draw(rt, "mode")) },
			func() Event { return EvHotkeyToggleActive() },
			func() Event { return EvSilenceTimeout() },
			func() Event { return EvHotkeyStop() },
			func() Event { return EvHotkeyAbort() },
			func() Event { return EvTranscriptionDone("some text") },
			func() Event { return EvTranscriptionFailed(errors.New("boom")) },
			func() Event { return EvLLMDone("some shaped text") },
			func() Event { return EvLLMFailed(errors.New("boom")) },
			func() Event { return EvDeviceLost(errors.New("lost")) },
		})

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			ev := eventGen.Draw(rt, "event")()
			s, _ := m.Transition(ev)

			wantActive := s.Phase() == Activation || s.Phase() == Dictation || s.Phase() == Processing
			if s.ProgramActive() != wantActive {
				rt.Fatalf("programActive=%v inconsistent with phase=%v", s.ProgramActive(), s.Phase())
			}
			if s.Dictating() != (s.Phase() == Dictation) {
				rt.Fatalf("isDictating=%v inconsistent with phase=%v", s.Dictating(), s.Phase())
			}
			modeSet := s.Mode() != ModeNone
			wantModeSet := s.Phase() == Dictation || s.Phase() == Processing
			if modeSet != wantModeSet {
				rt.Fatalf("mode=%q set=%v inconsistent with phase=%v", s.Mode(), modeSet, s.Phase())
			}
		}
	})
}
