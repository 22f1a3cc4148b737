// Command scriptor is the voice-dictation backend: it owns the
// microphone, drives the session state machine, and talks to the UI
// shell over the line-based protocol on stdin/stdout. See the `run`
// subcommand for the long-running backend; `vocabulary` and `hotkeys`
// are offline utilities.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	settingsPath   string
	vocabularyPath string
	logLevel       string
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scriptor"
	}
	return filepath.Join(home, ".config", "scriptor")
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "scriptor",
		Short: "Voice-dictation backend",
		Long:  "scriptor captures microphone audio, detects wake words, transcribes and shapes dictated speech, and delivers it to the focused application.",
	}

	dataDir := defaultDataDir()
	root.PersistentFlags().StringVar(&settingsPath, "settings", filepath.Join(dataDir, "settings.json"), "path to the persisted settings file")
	root.PersistentFlags().StringVar(&vocabularyPath, "vocabulary", filepath.Join(dataDir, "vocabulary.json"), "path to the persisted vocabulary store")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(newRunCmd())
	root.AddCommand(newVocabularyCmd())
	root.AddCommand(newHotkeysCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
