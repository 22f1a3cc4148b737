//go:build windows

package delivery

import "os/exec"

// windowsPaste simulates Ctrl+V via PowerShell's SendKeys, available on
// every stock Windows install.
type windowsPaste struct{}

// NewPasteSimulator returns the Windows synthetic-paste backend.
func NewPasteSimulator() PasteSimulator { return windowsPaste{} }

func (windowsPaste) Available() bool { return true }

func (windowsPaste) Paste() error {
	script := `Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait('^v')`
	return exec.Command("powershell", "-NoProfile", "-Command", script).Run()
}
