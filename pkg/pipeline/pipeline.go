// Package pipeline implements the pipeline worker of spec.md §5: the
// single-threaded consumer of captured frames that runs VAD, the ring
// buffer, and the recognizer router, and drives the session state machine.
// It never performs transcription or LLM work itself — those are
// dispatched to their own worker goroutines per Action.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/scriptorhq/scriptor/pkg/audio"
	"github.com/scriptorhq/scriptor/pkg/config"
	"github.com/scriptorhq/scriptor/pkg/delivery"
	"github.com/scriptorhq/scriptor/pkg/hotkeys"
	"github.com/scriptorhq/scriptor/pkg/ipc"
	"github.com/scriptorhq/scriptor/pkg/postprocess/fillers"
	llmpkg "github.com/scriptorhq/scriptor/pkg/postprocess/llm"
	"github.com/scriptorhq/scriptor/pkg/session"
	"github.com/scriptorhq/scriptor/pkg/transcriber"
	"github.com/scriptorhq/scriptor/pkg/vad"
	"github.com/scriptorhq/scriptor/pkg/vocabulary"
	"github.com/scriptorhq/scriptor/pkg/wakeword"
)

// Worker owns every long-lived dependency named in spec.md §2 and wires
// them into the session.Machine transition table.
type Worker struct {
	Source      audio.Source
	Router      *wakeword.Router
	Transcriber transcriber.Transcriber
	Vocabulary  *vocabulary.Store
	LLM         llmpkg.Provider
	Fillers     *fillers.Filter
	Delivery    *delivery.TextDelivery
	Writer      *ipc.Writer
	Settings    *config.Store
	Logger      *log.Logger

	machine    *session.Machine
	contentVAD *vad.Detector
	wakeVAD    *vad.Detector
	ring       *vad.RingBuffer
	backoff    *audio.Backoff
}

// New builds a Worker. vadCfg sizes both VAD instances and the pre-roll
// ring buffer; logger is shared with the underlying session.Machine.
func New(vadCfg vad.Config, logger *log.Logger) (*Worker, error) {
	contentVAD, err := vad.New(vadCfg)
	if err != nil {
		return nil, err
	}
	wakeVAD, err := vad.New(vadCfg)
	if err != nil {
		return nil, err
	}
	return &Worker{
		Logger:     logger,
		machine:    session.NewMachine(logger),
		contentVAD: contentVAD,
		wakeVAD:    wakeVAD,
		ring:       vad.NewRingBuffer(vad.RingBufferDurationMS, vadCfg.FrameMillis),
		backoff:    audio.NewBackoff(),
	}, nil
}

// Machine exposes the underlying state machine, e.g. for the IPC
// dispatcher to read Snapshot() when answering SET_APP_STATE.
func (w *Worker) Machine() *session.Machine { return w.machine }

// Start subscribes the IPC-emitting observer and begins the capture loop.
// It blocks until ctx is cancelled or the audio source terminates.
func (w *Worker) Start(ctx context.Context) error {
	w.machine.Subscribe(w.emitObserver)
	return w.captureLoop(ctx)
}

// Resume restarts the capture loop after it has exited (e.g. following a
// SET_APP_STATE:true command while Inactive with the device stopped). It is
// a no-op shape around captureLoop, matching the retry path in
// scheduleRetry, and is safe to call even if capture is already running —
// worst case two capture loops briefly race on the same Source, which
// Source.Start is expected to reject.
func (w *Worker) Resume(ctx context.Context) {
	go func() {
		if err := w.captureLoop(ctx); err != nil {
			w.Logger.Error("resume failed", "err", err)
		}
	}()
}

// captureLoop runs the capture-to-pipeline frame loop without touching
// observer registration, so a device-retry reconnect never double-
// subscribes the IPC-emitting observer.
func (w *Worker) captureLoop(ctx context.Context) error {
	frames, events, amplitude, err := w.Source.Start(ctx)
	if err != nil {
		w.Writer.Status(ipc.ColorRed, fmt.Sprintf("microphone unavailable: %v", err))
		return err
	}
	w.backoff.Reset()
	recognizerLoaded := !w.Router.Preparing()
	w.machine.Transition(session.EvDeviceReady(recognizerLoaded))
	if !recognizerLoaded {
		go w.awaitRecognizerReady(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			w.Source.Stop()
			return ctx.Err()

		case f, ok := <-frames:
			if !ok {
				return nil
			}
			w.handleFrame(ctx, f)

		case ev, ok := <-events:
			if !ok {
				continue
			}
			w.handleAudioEvent(ctx, ev)

		case amp, ok := <-amplitude:
			if !ok {
				continue
			}
			w.Writer.AudioAmp(amp)
		}
	}
}

// awaitRecognizerReady polls the wake-word recognizer's load state while
// the session sits in Preparing, then fires RecognizerReady exactly once.
func (w *Worker) awaitRecognizerReady(ctx context.Context) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !w.Router.Preparing() {
				w.Router.Drain()
				w.machine.Transition(session.EvRecognizerReady())
				return
			}
		}
	}
}

func (w *Worker) handleAudioEvent(ctx context.Context, ev audio.Event) {
	switch ev.Type {
	case audio.EventOverflow:
		w.Logger.Warn("capture queue overflow, dropped oldest frame")
	case audio.EventGap:
		w.Logger.Warn("capture gap detected")
	case audio.EventDeviceLost:
		w.machine.Transition(session.EvDeviceLost(fmt.Errorf("audio device lost")))
		go w.scheduleRetry(ctx)
	}
}

func (w *Worker) scheduleRetry(ctx context.Context) {
	delay := w.backoff.Next()
	suggestion := audio.ProbeConflict()
	if suggestion != "" {
		w.machine.Advise(suggestion)
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
		if err := w.captureLoop(ctx); err != nil {
			w.Logger.Error("retry failed", "err", err)
		}
	}
}

func (w *Worker) handleFrame(ctx context.Context, f audio.Frame) {
	w.ring.Push(f)

	phase := w.machine.Snapshot().Phase()
	switch phase {
	case session.Activation, session.Preparing:
		w.Router.Feed(f)
		if ev, _ := w.wakeVAD.Process(f); ev != nil && ev.Type == vad.SpeechEnd {
			w.resolveWakeWord(ctx)
		}

	case session.Dictation:
		ev, _ := w.contentVAD.Process(f)
		if ev == nil {
			if w.contentVAD.IsSpeaking() {
				w.appendToBuffer(f)
			}
			return
		}
		switch ev.Type {
		case vad.SpeechStart:
			w.machine.SeedBuffer(w.ring.Drain())
			w.appendToBuffer(f)
		case vad.SpeechEnd:
			w.contentVAD.Reset()
			_, action := w.machine.Transition(session.EvSilenceTimeout())
			w.dispatch(ctx, action)
		}

	case session.Processing:
		// frames are discarded while a dictation result is in flight.
	}
}

func (w *Worker) appendToBuffer(f audio.Frame) {
	buf := w.machine.CurrentBuffer()
	if buf == nil {
		return
	}
	if warn := buf.Append(f); warn {
		w.Writer.Status(ipc.ColorOrange, "dictation buffer exceeds 5 minutes")
	}
}

func (w *Worker) resolveWakeWord(ctx context.Context) {
	hit, ok, err := w.Router.Resolve(ctx)
	if err != nil {
		w.Logger.Warn("wake-word recognition failed", "err", err)
		return
	}
	if !ok {
		return
	}
	mode := modeForCommand(hit.Entry.Command)
	_, action := w.machine.Transition(session.EvWakeWordDetected(mode))
	w.dispatch(ctx, action)
}

func modeForCommand(cmd wakeword.Command) session.Mode {
	switch cmd {
	case wakeword.StartProofread:
		return session.ModeProofread
	case wakeword.StartLetter:
		return session.ModeLetter
	default:
		return session.ModeDictate
	}
}

// HandleHotkey translates a global hotkey press into the corresponding
// session Event and dispatches its resulting Action.
func (w *Worker) HandleHotkey(ctx context.Context, a hotkeys.Action) {
	var ev session.Event
	switch a {
	case hotkeys.ActionToggleActive:
		ev = session.EvHotkeyToggleActive()
	case hotkeys.ActionStartDictate:
		ev = session.EvHotkeyStart(session.ModeDictate)
	case hotkeys.ActionStartProofread:
		ev = session.EvHotkeyStart(session.ModeProofread)
	case hotkeys.ActionStartLetter:
		ev = session.EvHotkeyStart(session.ModeLetter)
	case hotkeys.ActionStopDictate:
		ev = session.EvHotkeyStop()
	case hotkeys.ActionAbortDictate:
		ev = session.EvHotkeyAbort()
	case hotkeys.ActionRestart, hotkeys.ActionShowHotkeys:
		return // handled directly by cmd/scriptor, not a state transition
	default:
		return
	}
	_, action := w.machine.Transition(ev)
	w.dispatch(ctx, action)
}

// HandleCommand applies an inbound IPC command that maps to a session
// Event (start/stop/abort/toggle); CONFIG, GET_HOTKEYS, VOCABULARY_API and
// friends are handled by the IPC dispatcher directly.
func (w *Worker) HandleCommand(ctx context.Context, cmd ipc.Command) {
	var ev session.Event
	switch cmd.Type {
	case ipc.CmdStartDictate:
		ev = session.EvHotkeyStart(session.ModeDictate)
	case ipc.CmdStartProofread:
		ev = session.EvHotkeyStart(session.ModeProofread)
	case ipc.CmdStartLetter:
		ev = session.EvHotkeyStart(session.ModeLetter)
	case ipc.CmdStopDictation:
		ev = session.EvHotkeyStop()
	case ipc.CmdAbortDictation:
		ev = session.EvHotkeyAbort()
	case ipc.CmdToggleActive:
		ev = session.EvHotkeyToggleActive()
	default:
		return
	}
	_, action := w.machine.Transition(ev)
	w.dispatch(ctx, action)
}

// dispatch spawns the Transcriber/LLM worker goroutines or performs
// delivery/error surfacing for a resolved Action. It never blocks the
// pipeline worker's frame loop.
func (w *Worker) dispatch(ctx context.Context, action session.Action) {
	switch action.Type {
	case session.ActionStartTranscription:
		go w.runTranscription(ctx, action)
	case session.ActionStreamLLM:
		go w.runLLM(ctx, action)
	case session.ActionDeliverText:
		w.deliver(action)
	case session.ActionSurfaceError:
		w.Writer.TranscriptionError(action.Err.Error())
	case session.ActionScheduleRetry:
		go w.scheduleRetry(ctx)
	case session.ActionStopAudio:
		w.Source.Stop()
	}
}

func (w *Worker) runTranscription(ctx context.Context, action session.Action) {
	if action.Buffer == nil || action.Buffer.Empty() {
		_, next := w.machine.Transition(session.EvTranscriptionDone(""))
		w.dispatch(ctx, next)
		return
	}

	pcm := action.Buffer.PCM()
	result, err := w.Transcriber.Transcribe(ctx, pcm, audio.DefaultSampleRate, "")
	if err != nil {
		_, next := w.machine.Transition(session.EvTranscriptionFailed(err))
		w.dispatch(ctx, next)
		return
	}

	// The Machine may have already moved on (HotkeyAbort arrived while the
	// engine was running): action.JobID is this call's own DictationBuffer,
	// so if it no longer matches the Machine's current job the result is
	// stale and must not be surfaced, per spec.md §4.4/§5's "completion
	// callback becomes a no-op".
	if !w.machine.IsActiveJob(action.JobID) {
		return
	}

	text := result.Text
	if text != "" {
		corrected, _ := w.Vocabulary.ApplyCorrections(text)
		text = corrected
		if w.Fillers != nil {
			text = w.Fillers.Apply(text)
		}
		w.Writer.FinalTranscript(text)
	}

	_, next := w.machine.Transition(session.EvTranscriptionDone(text))
	w.dispatch(ctx, next)
}

func (w *Worker) runLLM(ctx context.Context, action session.Action) {
	mode := llmpkg.ModeProofread
	if action.Mode == session.ModeLetter {
		mode = llmpkg.ModeLetter
	}

	parser := llmpkg.NewStreamParser()
	req := llmpkg.Request{Mode: mode, Text: action.Text}

	err := w.LLM.Generate(ctx, req, func(token string) {
		if !w.machine.IsActiveJob(action.JobID) {
			return
		}
		for _, d := range parser.Feed(token) {
			w.emitDelta(d)
		}
	})

	// As with runTranscription, a HotkeyAbort may have raced ahead of
	// Generate returning; suppress the final delta, the stream-end marker,
	// and the completion transition alike so no trailing proofed text
	// reaches the UI for a dictation the user already discarded.
	if !w.machine.IsActiveJob(action.JobID) {
		return
	}

	final, _, text := parser.Finalize()
	w.emitDelta(final)
	w.Writer.ProofStreamEnd()

	if err != nil {
		_, next := w.machine.Transition(session.EvLLMFailed(err))
		w.dispatch(ctx, next)
		return
	}

	if action.Mode == session.ModeProofread {
		text = llmpkg.NormalizeProofread(text)
	}

	_, next := w.machine.Transition(session.EvLLMDone(text))
	w.dispatch(ctx, next)
}

func (w *Worker) emitDelta(d llmpkg.Delta) {
	if d.Thinking != "" {
		w.Writer.ProofStreamThinking(d.Thinking)
	}
	if d.Chunk != "" {
		w.Writer.ProofStreamChunk(d.Chunk)
	}
}

func (w *Worker) deliver(action session.Action) {
	if action.Text == "" {
		return
	}
	switch action.Mode {
	case session.ModeProofread:
		w.Writer.TranscriptionProofed(action.Text)
	case session.ModeLetter:
		w.Writer.TranscriptionLetter(action.Text)
	}
	pasted, err := w.Delivery.Deliver(action.Text + " ")
	if err != nil {
		w.Writer.TranscriptionError(fmt.Sprintf("delivery failed: %v", err))
		return
	}
	if !pasted {
		w.Writer.Status(ipc.ColorOrange, "copied to clipboard; paste manually")
	}
}

func (w *Worker) emitObserver(old, newState session.State, action session.Action, ev session.Event) {
	snap := ipc.StateSnapshot{
		SessionID:        w.machine.ID(),
		ProgramActive:    newState.ProgramActive(),
		AudioState:       string(newState.Phase()),
		IsDictating:      newState.Dictating(),
		IsProofingActive: newState.Mode() == session.ModeProofread || newState.Mode() == session.ModeLetter,
		CanDictate:       newState.Phase() == session.Activation,
		CurrentMode:      string(newState.Mode()),
		MicrophoneError:  session.MicError(newState),
	}
	w.Writer.State(snap)
	w.Writer.Status(colorFor(newState), fmt.Sprintf("%s/%s", newState.Phase(), newState.Mode()))
	if ev.Type == session.DeviceLost && action.Type == session.ActionSurfaceError && action.Err != nil {
		w.Writer.Status(ipc.ColorOrange, action.Err.Error())
	}
}

func colorFor(s session.State) ipc.Color {
	switch s.Phase() {
	case session.Inactive, session.Preparing:
		return ipc.ColorGrey
	case session.Activation:
		return ipc.ColorBlue
	case session.Dictation:
		return ipc.ColorGreen
	case session.Processing:
		return ipc.ColorOrange
	default:
		return ipc.ColorGrey
	}
}
