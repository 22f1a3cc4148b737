package transcriber

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	text       string
	err        error
	seenPath   string
	pathExists bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) TranscribeFile(ctx context.Context, path string) (string, error) {
	f.seenPath = path
	if _, err := os.Stat(path); err == nil {
		f.pathExists = true
	}
	return f.text, f.err
}

func TestFileBackendDeletesTempFileOnSuccess(t *testing.T) {
	fe := &fakeEngine{text: "hello world"}
	b := NewFileBackend(fe)
	res, err := b.Transcribe(context.Background(), make([]byte, 960), 16000, "")
	require.NoError(t, err)
	require.Equal(t, "hello world", res.Text)
	require.True(t, fe.pathExists, "engine should have seen the file while it existed")
	_, statErr := os.Stat(fe.seenPath)
	require.True(t, os.IsNotExist(statErr), "temp file must be deleted after Transcribe returns")
}

func TestFileBackendDeletesTempFileOnEngineError(t *testing.T) {
	fe := &fakeEngine{err: errors.New("boom")}
	b := NewFileBackend(fe)
	_, err := b.Transcribe(context.Background(), make([]byte, 960), 16000, "")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrModelNotLoaded)
	_, statErr := os.Stat(fe.seenPath)
	require.True(t, os.IsNotExist(statErr))
}

func TestFileBackendEmptyTextIsNotAnError(t *testing.T) {
	fe := &fakeEngine{text: ""}
	b := NewFileBackend(fe)
	res, err := b.Transcribe(context.Background(), make([]byte, 960), 16000, "")
	require.NoError(t, err)
	require.Equal(t, "", res.Text)
}
