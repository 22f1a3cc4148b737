// Package delivery implements the Delivery stage of spec.md §4.7: writing
// shaped text to the system clipboard and, where available, issuing a
// synthetic paste keystroke.
package delivery

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
)

// pasteDelay is the pause between the clipboard write and the synthetic
// paste keystroke, per spec.md §4.7.
const pasteDelay = 50 * time.Millisecond

// PasteSimulator issues a synthetic Cmd/Ctrl+V keystroke on the host OS.
// Implementations are platform-specific (see paste_linux.go,
// paste_darwin.go, paste_windows.go).
type PasteSimulator interface {
	Available() bool
	Paste() error
}

// TextDelivery writes text to the clipboard and, when a PasteSimulator is
// available, simulates a paste after pasteDelay.
type TextDelivery struct {
	paste  PasteSimulator
	logger *log.Logger
	sleep  func(time.Duration)
}

// New builds a TextDelivery using the platform's PasteSimulator.
func New(logger *log.Logger) *TextDelivery {
	return &TextDelivery{paste: NewPasteSimulator(), logger: logger, sleep: time.Sleep}
}

// Deliver writes text to the clipboard and attempts a synthetic paste. It
// always performs the clipboard write even if synthetic paste is
// unavailable or fails, per spec.md §4.7 ("the clipboard write still
// occurs and an informational event is emitted"). The returned bool
// reports whether a synthetic paste was attempted and succeeded.
func (d *TextDelivery) Deliver(text string) (pasted bool, err error) {
	if err := clipboard.WriteAll(text); err != nil {
		return false, err
	}

	if d.paste == nil || !d.paste.Available() {
		d.logger.Info("synthetic paste unavailable, clipboard write only")
		return false, nil
	}

	d.sleep(pasteDelay)
	if err := d.paste.Paste(); err != nil {
		d.logger.Warn("synthetic paste failed", "err", err)
		return false, nil
	}
	return true, nil
}
