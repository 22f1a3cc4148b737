package audio

import (
	"os/exec"
	"runtime"
	"strings"
)

// knownMicHogs are process names historically observed to monopolize the
// microphone, restored from original_source's audio_handler.py conflict
// detection (spec.md §4.1's "advisory only" probe).
var knownMicHogs = []string{
	"zoom", "teams", "slack", "discord", "chrome", "firefox", "skype",
	"webex", "meet", "facetime",
}

// ProbeConflict does a best-effort scan of running processes for known
// microphone-monopolizing applications and returns a human-readable
// suggestion, or "" if nothing suspicious was found. It never returns an
// error: a failed probe just means no suggestion is attached, per spec.md's
// "advisory only; it never prevents retry".
func ProbeConflict() string {
	procs := listProcessNames()
	if len(procs) == 0 {
		return ""
	}
	var hits []string
	for _, p := range procs {
		lower := strings.ToLower(p)
		for _, hog := range knownMicHogs {
			if strings.Contains(lower, hog) {
				hits = append(hits, hog)
				break
			}
		}
	}
	if len(hits) == 0 {
		return ""
	}
	return "another application (" + strings.Join(dedupe(hits), ", ") + ") may be holding the microphone; close it and retry"
}

func listProcessNames() []string {
	var out []byte
	var err error
	switch runtime.GOOS {
	case "windows":
		out, err = exec.Command("tasklist").Output()
	default:
		out, err = exec.Command("ps", "-A", "-o", "comm=").Output()
	}
	if err != nil {
		return nil
	}
	lines := strings.Split(string(out), "\n")
	names := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			names = append(names, l)
		}
	}
	return names
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
