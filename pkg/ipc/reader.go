package ipc

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// CommandType enumerates the inbound command lines of spec.md §6.
type CommandType string

const (
	CmdGetConfig        CommandType = "GET_CONFIG"
	CmdConfig           CommandType = "CONFIG"
	CmdModelsRequest    CommandType = "MODELS_REQUEST"
	CmdStartDictate     CommandType = "start_dictate"
	CmdStartProofread   CommandType = "start_proofread"
	CmdStartLetter      CommandType = "start_letter"
	CmdStopDictation    CommandType = "STOP_DICTATION"
	CmdAbortDictation   CommandType = "ABORT_DICTATION"
	CmdToggleActive     CommandType = "TOGGLE_ACTIVE"
	CmdSetAppState      CommandType = "SET_APP_STATE"
	CmdGetHotkeys       CommandType = "GET_HOTKEYS"
	CmdVocabularyAPI    CommandType = "VOCABULARY_API"
	CmdRestartApp       CommandType = "RESTART_APP"
	CmdShutdown         CommandType = "SHUTDOWN"
	CmdUnknown          CommandType = "UNKNOWN"
)

// Command is one parsed inbound line.
type Command struct {
	Type    CommandType
	Payload string // raw, unescaped remainder after the first ':' where applicable
}

// ErrBrokenPipe is returned by Run when stdin is closed or a broken-pipe
// condition is detected, per spec.md §7's IPCError taxonomy.
var ErrBrokenPipe = errors.New("ipc: broken pipe")

// Reader scans stdin line by line and dispatches parsed Commands.
type Reader struct {
	scanner *bufio.Scanner
	logger  *log.Logger
}

// NewReader wraps r (typically os.Stdin) as a line-based command reader.
func NewReader(r io.Reader, logger *log.Logger) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{scanner: scanner, logger: logger}
}

// Run reads lines until EOF or a SHUTDOWN command, invoking handle for each
// parsed Command. Malformed lines are logged and skipped, never crashing
// the reader, per spec.md §7's IPCError policy.
func (r *Reader) Run(handle func(Command)) error {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmd, ok := parseCommand(line)
		if !ok {
			r.logger.Warn("malformed ipc line", "line", line)
			continue
		}
		handle(cmd)
		if cmd.Type == CmdShutdown {
			return nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		return err
	}
	return ErrBrokenPipe
}

func parseCommand(line string) (Command, bool) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		switch CommandType(line) {
		case CmdGetConfig, CmdModelsRequest, CmdStartDictate, CmdStartProofread, CmdStartLetter,
			CmdStopDictation, CmdAbortDictation, CmdToggleActive, CmdGetHotkeys, CmdRestartApp, CmdShutdown:
			return Command{Type: CommandType(line)}, true
		}
		return Command{}, false
	}

	head := CommandType(line[:idx])
	rest := Unescape(line[idx+1:])
	switch head {
	case CmdConfig, CmdSetAppState, CmdVocabularyAPI:
		return Command{Type: head, Payload: rest}, true
	}
	return Command{}, false
}
