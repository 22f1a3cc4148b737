package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/scriptorhq/scriptor/pkg/audio"
	"github.com/scriptorhq/scriptor/pkg/config"
	"github.com/scriptorhq/scriptor/pkg/delivery"
	"github.com/scriptorhq/scriptor/pkg/hotkeys"
	"github.com/scriptorhq/scriptor/pkg/ipc"
	"github.com/scriptorhq/scriptor/pkg/pipeline"
	"github.com/scriptorhq/scriptor/pkg/postprocess/fillers"
	llmpkg "github.com/scriptorhq/scriptor/pkg/postprocess/llm"
	"github.com/scriptorhq/scriptor/pkg/session"
	"github.com/scriptorhq/scriptor/pkg/transcriber"
	"github.com/scriptorhq/scriptor/pkg/transcriber/sherpa"
	"github.com/scriptorhq/scriptor/pkg/transcriber/streamws"
	"github.com/scriptorhq/scriptor/pkg/vad"
	"github.com/scriptorhq/scriptor/pkg/vocabulary"
	"github.com/scriptorhq/scriptor/pkg/wakeword"
)

func newRunCmd() *cobra.Command {
	var (
		backend                  string
		encoder, decoder, tokens string
		numThreads               int
		wsHost, wsPath, wsAPIKey string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackend(runOpts{
				Backend:    backend,
				Encoder:    encoder,
				Decoder:    decoder,
				Tokens:     tokens,
				NumThreads: numThreads,
				WSHost:     wsHost,
				WSPath:     wsPath,
				WSAPIKey:   wsAPIKey,
			})
		},
	}
	cmd.Flags().StringVar(&backend, "asr-backend", "sherpa", "transcription backend: sherpa (offline Whisper) or streaming (remote websocket ASR)")
	cmd.Flags().StringVar(&encoder, "asr-encoder", "", "path to the sherpa-onnx Whisper encoder model")
	cmd.Flags().StringVar(&decoder, "asr-decoder", "", "path to the sherpa-onnx Whisper decoder model")
	cmd.Flags().StringVar(&tokens, "asr-tokens", "", "path to the sherpa-onnx tokens file")
	cmd.Flags().IntVar(&numThreads, "asr-threads", 2, "sherpa-onnx decode thread count")
	cmd.Flags().StringVar(&wsHost, "asr-ws-host", "", "remote streaming ASR host (asr-backend=streaming)")
	cmd.Flags().StringVar(&wsPath, "asr-ws-path", "/v1/stream", "remote streaming ASR path")
	cmd.Flags().StringVar(&wsAPIKey, "asr-ws-api-key", "", "remote streaming ASR API key")
	return cmd
}

type runOpts struct {
	Backend    string
	Encoder    string
	Decoder    string
	Tokens     string
	NumThreads int
	WSHost     string
	WSPath     string
	WSAPIKey   string
}

// buildTranscriber selects the ASR backend per opts.Backend: the offline
// sherpa-onnx Whisper engine, or a remote streaming engine reached over a
// websocket. Both satisfy transcriber.Transcriber and are interchangeable
// everywhere a Transcriber is wired in.
func buildTranscriber(opts runOpts) (transcriber.Transcriber, error) {
	switch opts.Backend {
	case "streaming":
		return streamws.New(streamws.Config{
			Host:   opts.WSHost,
			Path:   opts.WSPath,
			APIKey: opts.WSAPIKey,
		}), nil
	default:
		return sherpa.New(sherpa.Config{
			Encoder:    opts.Encoder,
			Decoder:    opts.Decoder,
			Tokens:     opts.Tokens,
			NumThreads: opts.NumThreads,
			Provider:   "cpu",
		})
	}
}

// runBackend wires every long-lived worker of spec.md §5 together and
// blocks until shutdown: capture, pipeline, hotkey listener, and the IPC
// reader/writer, supervised by an errgroup so the first worker failure
// tears down the rest.
func runBackend(opts runOpts) error {
	logger := newLogger()

	settings := config.NewStore(settingsPath, logger)
	env := config.LoadEnv(logger)

	vocab := vocabulary.NewStore()
	if err := vocab.Load(vocabularyPath); err != nil {
		logger.Warn("vocabulary load failed, starting empty", "err", err)
	}
	vocab.SetPath(vocabularyPath)
	vocab.SetFuzzyLexicon(buildFuzzyLexicon(vocab))

	engine, err := buildTranscriber(opts)
	if err != nil {
		return fmt.Errorf("scriptor: loading transcriber: %w", err)
	}

	llm, err := buildLLMProvider(env, settings)
	if err != nil {
		return fmt.Errorf("scriptor: configuring LLM backend: %w", err)
	}

	table := wakeword.NewTable(logger)
	rebuildWakeWordTable(table, settings.Get().WakeWords)

	source := audio.NewMalgoSource(audio.DefaultConfig())

	worker, err := pipeline.New(vad.DefaultConfig(), logger)
	if err != nil {
		return fmt.Errorf("scriptor: building pipeline: %w", err)
	}
	worker.Source = source
	worker.Router = wakeword.NewRouter(table, wakeword.NewTranscriberRecognizer(engine, audio.DefaultSampleRate), audio.DefaultFrameMillis)
	worker.Transcriber = engine
	worker.Vocabulary = vocab
	worker.LLM = llm
	worker.Fillers = fillers.NewFilter(settings.Get().FillerWords, settings.Get().FilterFillerWords)
	worker.Delivery = delivery.New(logger)
	worker.Settings = settings

	writer := ipc.NewWriter(os.Stdout)
	worker.Writer = writer
	vocabAPI := ipc.NewVocabularyAPI(vocab)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	hkListener := hotkeys.NewListener(hotkeys.DefaultBindings(), func(a hotkeys.Action) {
		if a == hotkeys.ActionShowHotkeys {
			writer.Hotkeys(hotkeys.Map(hotkeys.DefaultBindings()))
			return
		}
		worker.HandleHotkey(ctx, a)
	}, logger)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return worker.Start(egCtx)
	})

	eg.Go(func() error {
		if err := hkListener.Start(); err != nil {
			return fmt.Errorf("hotkey listener: %w", err)
		}
		<-egCtx.Done()
		return hkListener.Stop()
	})

	eg.Go(func() error {
		writer.BackendReady()
		reader := ipc.NewReader(os.Stdin, logger)
		runErr := reader.Run(func(cmd ipc.Command) {
			handleCommand(egCtx, worker, settings, vocab, vocabAPI, table, writer, cmd)
		})
		cancel()
		writer.ShutdownFinalized()
		if runErr != nil && runErr != ipc.ErrBrokenPipe {
			return runErr
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		logger.Error("backend exited with error", "err", err)
		return err
	}
	return nil
}

func handleCommand(ctx context.Context, worker *pipeline.Worker, settings *config.Store, vocab *vocabulary.Store, vocabAPI *ipc.VocabularyAPI, table *wakeword.Table, writer *ipc.Writer, cmd ipc.Command) {
	switch cmd.Type {
	case ipc.CmdGetConfig:
		return // UI answers this with CONFIG:<json>, nothing to emit here

	case ipc.CmdConfig:
		if err := settings.Apply([]byte(cmd.Payload)); err != nil {
			writer.Status(ipc.ColorRed, fmt.Sprintf("invalid configuration: %v", err))
			return
		}
		rebuildWakeWordTable(table, settings.Get().WakeWords)

	case ipc.CmdModelsRequest:
		writer.ModelsList(map[string]any{
			"proofing": []string{settings.Get().SelectedProofingModel},
			"letter":   []string{settings.Get().SelectedLetterModel},
		})

	case ipc.CmdGetHotkeys:
		writer.Hotkeys(hotkeys.Map(hotkeys.DefaultBindings()))

	case ipc.CmdSetAppState:
		wantActive := cmd.Payload == "true"
		phase := worker.Machine().Snapshot().Phase()
		switch {
		case wantActive && phase == session.Inactive:
			worker.Resume(ctx)
		case !wantActive && phase != session.Inactive:
			worker.HandleHotkey(ctx, hotkeys.ActionToggleActive)
		}

	case ipc.CmdVocabularyAPI:
		req, err := ipc.ParseVocabularyRequest(cmd.Payload)
		if err != nil {
			writer.Status(ipc.ColorRed, fmt.Sprintf("malformed vocabulary request: %v", err))
			return
		}
		writer.VocabResponse(req.ID, vocabAPI.Handle(req))
		vocab.Save()

	case ipc.CmdRestartApp:
		writer.Status(ipc.ColorOrange, "restart requested, exiting")
		os.Exit(0)

	default:
		worker.HandleCommand(ctx, cmd)
	}
}

func rebuildWakeWordTable(table *wakeword.Table, ww config.WakeWords) {
	var entries []wakeword.Entry
	for _, w := range ww.Dictate {
		entries = append(entries, wakeword.Entry{Word: w, Command: wakeword.StartDictate})
	}
	for _, w := range ww.Proofread {
		entries = append(entries, wakeword.Entry{Word: w, Command: wakeword.StartProofread})
	}
	for _, w := range ww.Letter {
		entries = append(entries, wakeword.Entry{Word: w, Command: wakeword.StartLetter})
	}
	table.Rebuild(entries)
}

func buildFuzzyLexicon(vocab *vocabulary.Store) *vocabulary.FuzzyLexicon {
	var terms []string
	for _, t := range vocab.Terms() {
		terms = append(terms, t.Canonical)
	}
	return vocabulary.NewFuzzyLexicon(terms)
}

func buildLLMProvider(env config.Env, settings *config.Store) (llmpkg.Provider, error) {
	switch env.LLMBackend {
	case "openai":
		return llmpkg.NewOpenAIBackend(llmpkg.OpenAIConfig{
			APIKey:  env.OpenAIAPIKey,
			BaseURL: env.OpenAIBaseURL,
			Model:   settings.Get().SelectedProofingModel,
		})
	default:
		return llmpkg.NewOllamaBackend(llmpkg.OllamaConfig{
			Host:  env.OllamaHost,
			Model: settings.Get().SelectedProofingModel,
		})
	}
}

func newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	if lvl, err := log.ParseLevel(logLevel); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}
