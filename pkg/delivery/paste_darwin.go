//go:build darwin

package delivery

import "os/exec"

// darwinPaste simulates Cmd+V via osascript, which ships with every macOS
// install, so synthetic paste is unconditionally available on this OS.
type darwinPaste struct{}

// NewPasteSimulator returns the macOS synthetic-paste backend.
func NewPasteSimulator() PasteSimulator { return darwinPaste{} }

func (darwinPaste) Available() bool { return true }

func (darwinPaste) Paste() error {
	script := `tell application "System Events" to keystroke "v" using command down`
	return exec.Command("osascript", "-e", script).Run()
}
