package session

// ActionType tells the pipeline worker what asynchronous work a transition
// requires. The pipeline worker itself must never perform transcription or
// LLM work (spec.md §5); it only dispatches the Action to the appropriate
// long-lived worker.
type ActionType string

const (
	ActionNone              ActionType = "None"
	ActionStartTranscription ActionType = "StartTranscription"
	ActionDeliverText        ActionType = "DeliverText"
	ActionStreamLLM          ActionType = "StreamLLM"
	ActionScheduleRetry      ActionType = "ScheduleRetry"
	ActionSurfaceError       ActionType = "SurfaceError"
	ActionStopAudio          ActionType = "StopAudio"
)

// Action is the side effect a Transition call resolves to, per the "Side
// effects" column of spec.md §4.4's transition table.
type Action struct {
	Type ActionType

	Buffer *DictationBuffer // ActionStartTranscription
	Mode   Mode             // ActionStartTranscription, ActionStreamLLM, ActionDeliverText
	Text   string           // ActionDeliverText, ActionStreamLLM
	Err    error            // ActionSurfaceError, ActionScheduleRetry

	// JobID is the DictationBuffer.JobID this Action descends from, carried
	// through ActionStartTranscription and ActionStreamLLM so the worker
	// that eventually completes it can ask the Machine, via IsActiveJob,
	// whether the job is still current before emitting any output.
	JobID string
}
