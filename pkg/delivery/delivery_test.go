package delivery

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

type fakePaste struct {
	available bool
	err       error
	called    bool
}

func (f *fakePaste) Available() bool { return f.available }
func (f *fakePaste) Paste() error {
	f.called = true
	return f.err
}

func newTestDelivery(p PasteSimulator) *TextDelivery {
	return &TextDelivery{paste: p, logger: log.New(io.Discard), sleep: func(time.Duration) {}}
}

func TestDeliverWritesClipboardAndPastesWhenAvailable(t *testing.T) {
	if !clipboard.Unsupported {
		fp := &fakePaste{available: true}
		d := newTestDelivery(fp)
		pasted, err := d.Deliver("hello world")
		require.NoError(t, err)
		require.True(t, pasted)
		require.True(t, fp.called)
	}
}

func TestDeliverSkipsPasteWhenUnavailable(t *testing.T) {
	if !clipboard.Unsupported {
		fp := &fakePaste{available: false}
		d := newTestDelivery(fp)
		pasted, err := d.Deliver("hello world")
		require.NoError(t, err)
		require.False(t, pasted)
		require.False(t, fp.called)
	}
}

func TestDeliverClipboardWriteStillOccursWhenPasteFails(t *testing.T) {
	if !clipboard.Unsupported {
		fp := &fakePaste{available: true, err: errors.New("no paste tool")}
		d := newTestDelivery(fp)
		pasted, err := d.Deliver("hello world")
		require.NoError(t, err)
		require.False(t, pasted)
		text, rerr := clipboard.ReadAll()
		require.NoError(t, rerr)
		require.Equal(t, "hello world", text)
	}
}
