// Package session implements the authoritative session state machine
// described in spec.md §4.4: Inactive → Preparing → Activation →
// Dictation → Processing → Activation, with Mode carried as part of the
// Dictation/Processing variants rather than a separate field, so mode and
// phase can never disagree (spec.md §9, "tagged variants for state").
package session

// Phase names one of the five session states.
type Phase string

const (
	Inactive   Phase = "inactive"
	Preparing  Phase = "preparing"
	Activation Phase = "activation"
	Dictation  Phase = "dictation"
	Processing Phase = "processing"
)

// Mode identifies which post-processing a dictation started under.
type Mode string

const (
	ModeNone      Mode = ""
	ModeDictate   Mode = "Dictate"
	ModeProofread Mode = "Proofread"
	ModeLetter    Mode = "Letter"
)

// State is the sum type over the five phases. Only the package constructs
// concrete variants; callers switch on Phase() and read Mode()/MicError()
// as needed.
type State interface {
	Phase() Phase
	Mode() Mode
	// ProgramActive mirrors spec.md §3's invariant:
	// programActive == true iff phase ∈ {Activation, Dictation, Processing}.
	ProgramActive() bool
	// Dictating mirrors isDictating == true iff phase == Dictation.
	Dictating() bool
	isState()
}

type inactiveState struct {
	micError string
}

func (s inactiveState) Phase() Phase        { return Inactive }
func (s inactiveState) Mode() Mode          { return ModeNone }
func (s inactiveState) ProgramActive() bool { return false }
func (s inactiveState) Dictating() bool     { return false }
func (inactiveState) isState()              {}

// MicError returns the human-readable microphone error attached to an
// Inactive state reached via DeviceLost,
// or "" if the Inactive state was reached normally (e.g. HotkeyToggleActive).
func MicError(s State) string {
	if is, ok := s.(inactiveState); ok {
		return is.micError
	}
	return ""
}

type preparingState struct{}

func (preparingState) Phase() Phase        { return Preparing }
func (preparingState) Mode() Mode          { return ModeNone }
func (preparingState) ProgramActive() bool { return false }
func (preparingState) Dictating() bool     { return false }
func (preparingState) isState()            {}

type activationState struct{}

func (activationState) Phase() Phase        { return Activation }
func (activationState) Mode() Mode          { return ModeNone }
func (activationState) ProgramActive() bool { return true }
func (activationState) Dictating() bool     { return false }
func (activationState) isState()            {}

type dictationState struct {
	mode Mode
}

func (s dictationState) Phase() Phase        { return Dictation }
func (s dictationState) Mode() Mode          { return s.mode }
func (s dictationState) ProgramActive() bool { return true }
func (s dictationState) Dictating() bool     { return true }
func (dictationState) isState()              {}

type processingState struct {
	mode Mode
}

func (s processingState) Phase() Phase        { return Processing }
func (s processingState) Mode() Mode          { return s.mode }
func (s processingState) ProgramActive() bool { return true }
func (s processingState) Dictating() bool     { return false }
func (processingState) isState()              {}
