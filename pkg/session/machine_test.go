package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/scriptorhq/scriptor/pkg/audio"
	"github.com/stretchr/testify/require"
)

func TestInitialStateInactive(t *testing.T) {
	m := NewMachine(nil)
	require.Equal(t, Inactive, m.Snapshot().Phase())
}

func TestDeviceReadyRecognizerLoadedGoesActivation(t *testing.T) {
	m := NewMachine(nil)
	s, _ := m.Transition(EvDeviceReady(true))
	require.Equal(t, Activation, s.Phase())
}

func TestDeviceReadyRecognizerLoadingGoesPreparing(t *testing.T) {
	m := NewMachine(nil)
	s, _ := m.Transition(EvDeviceReady(false))
	require.Equal(t, Preparing, s.Phase())
}

func TestRecognizerReadyFromPreparingGoesActivation(t *testing.T) {
	m := NewMachine(nil)
	m.Transition(EvDeviceReady(false))
	s, _ := m.Transition(EvRecognizerReady())
	require.Equal(t, Activation, s.Phase())
}

func TestWakeWordStartsDictationWithMode(t *testing.T) {
	m := NewMachine(nil)
	m.Transition(EvDeviceReady(true))
	s, _ := m.Transition(EvWakeWordDetected(ModeProofread))
	require.Equal(t, Dictation, s.Phase())
	require.Equal(t, ModeProofread, s.Mode())
	require.NotNil(t, m.CurrentBuffer())
}

func TestHotkeyToggleActiveFromActivationGoesInactiveAndStopsAudio(t *testing.T) {
	m := NewMachine(nil)
	m.Transition(EvDeviceReady(true))
	s, action := m.Transition(EvHotkeyToggleActive())
	require.Equal(t, Inactive, s.Phase())
	require.Equal(t, ActionStopAudio, action.Type)
}

func TestSilenceTimeoutMovesToProcessingAndStartsTranscription(t *testing.T) {
	m := NewMachine(nil)
	m.Transition(EvDeviceReady(true))
	m.Transition(EvWakeWordDetected(ModeDictate))
	buf := m.CurrentBuffer()
	buf.Append(audio.NewFrame(0, make([]byte, 4)))

	s, action := m.Transition(EvSilenceTimeout())
	require.Equal(t, Processing, s.Phase())
	require.Equal(t, ActionStartTranscription, action.Type)
	require.NotNil(t, action.Buffer)
	require.Equal(t, 1, action.Buffer.Len())
	require.Nil(t, m.CurrentBuffer(), "buffer ownership must move out of the machine")
}

func TestHotkeyAbortDuringDictationDropsBuffer(t *testing.T) {
	m := NewMachine(nil)
	m.Transition(EvDeviceReady(true))
	m.Transition(EvWakeWordDetected(ModeDictate))
	s, action := m.Transition(EvHotkeyAbort())
	require.Equal(t, Activation, s.Phase())
	require.Equal(t, ActionNone, action.Type)
	require.Nil(t, m.CurrentBuffer())
}

func TestTranscriptionDoneDictateModeDeliversDirectly(t *testing.T) {
	m := NewMachine(nil)
	m.Transition(EvDeviceReady(true))
	m.Transition(EvWakeWordDetected(ModeDictate))
	m.Transition(EvSilenceTimeout())
	s, action := m.Transition(EvTranscriptionDone("the patient reports headache symptoms"))
	require.Equal(t, Activation, s.Phase())
	require.Equal(t, ActionDeliverText, action.Type)
	require.Equal(t, "the patient reports headache symptoms", action.Text)
}

func TestTranscriptionDoneProofreadModeStreamsLLM(t *testing.T) {
	m := NewMachine(nil)
	m.Transition(EvDeviceReady(true))
	m.Transition(EvWakeWordDetected(ModeProofread))
	m.Transition(EvSilenceTimeout())
	s, action := m.Transition(EvTranscriptionDone("raw text"))
	require.Equal(t, Processing, s.Phase(), "stays in Processing until LLMDone")
	require.Equal(t, ActionStreamLLM, action.Type)

	s, action = m.Transition(EvLLMDone("shaped text"))
	require.Equal(t, Activation, s.Phase())
	require.Equal(t, ActionDeliverText, action.Type)
	require.Equal(t, "shaped text", action.Text)
}

func TestTranscriptionFailedSurfacesErrorAndReturnsToActivation(t *testing.T) {
	m := NewMachine(nil)
	m.Transition(EvDeviceReady(true))
	m.Transition(EvWakeWordDetected(ModeDictate))
	m.Transition(EvSilenceTimeout())
	s, action := m.Transition(EvTranscriptionFailed(errors.New("engine exploded")))
	require.Equal(t, Activation, s.Phase())
	require.Equal(t, ActionSurfaceError, action.Type)
}

func TestHotkeyAbortDuringProcessingReturnsToActivation(t *testing.T) {
	m := NewMachine(nil)
	m.Transition(EvDeviceReady(true))
	m.Transition(EvWakeWordDetected(ModeDictate))
	m.Transition(EvSilenceTimeout())
	s, _ := m.Transition(EvHotkeyAbort())
	require.Equal(t, Activation, s.Phase())
}

func TestDeviceLostFromAnyStateGoesInactiveWithRetry(t *testing.T) {
	m := NewMachine(nil)
	m.Transition(EvDeviceReady(true))
	m.Transition(EvWakeWordDetected(ModeDictate))
	s, action := m.Transition(EvDeviceLost(errors.New("mic unplugged")))
	require.Equal(t, Inactive, s.Phase())
	require.Equal(t, ActionScheduleRetry, action.Type)
	require.Equal(t, "mic unplugged", MicError(s))
}

func TestObserverIsolationPanicDoesNotBlockOtherObservers(t *testing.T) {
	m := NewMachine(nil)
	var calledSecond bool
	var mu sync.Mutex
	m.Subscribe(func(old, new State, action Action, ev Event) {
		panic("boom")
	})
	m.Subscribe(func(old, new State, action Action, ev Event) {
		mu.Lock()
		calledSecond = true
		mu.Unlock()
	})
	m.Transition(EvDeviceReady(true))
	mu.Lock()
	defer mu.Unlock()
	require.True(t, calledSecond)
}

func TestInvariantsHoldAcrossAllStates(t *testing.T) {
	m := NewMachine(nil)
	states := []State{}
	s, _ := m.Transition(EvDeviceReady(true))
	states = append(states, s)
	s, _ = m.Transition(EvWakeWordDetected(ModeLetter))
	states = append(states, s)
	s, _ = m.Transition(EvSilenceTimeout())
	states = append(states, s)

	for _, st := range states {
		programActive := st.Phase() == Activation || st.Phase() == Dictation || st.Phase() == Processing
		require.Equal(t, programActive, st.ProgramActive())
		require.Equal(t, st.Phase() == Dictation, st.Dictating())
		if st.Phase() == Dictation || st.Phase() == Processing {
			require.NotEqual(t, ModeNone, st.Mode())
		} else {
			require.Equal(t, ModeNone, st.Mode())
		}
	}
}
