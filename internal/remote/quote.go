package remote

import "strings"

// Quote quotes s for a POSIX shell. Strings made only of common safe
// characters are returned unchanged.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		}
		switch r {
		case '-', '_', '.', '/', '@', ':', ',', '+', '=':
			return false
		}
		return true
	}) == -1 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ChangeDir returns a shell command that enters dir. A leading "~" is
// resolved against the remote $HOME rather than quoted away.
func ChangeDir(dir string) string {
	switch {
	case dir == "~":
		return `cd "$HOME"`
	case strings.HasPrefix(dir, "~/"):
		rest := strings.TrimPrefix(dir, "~/")
		if rest == "" {
			return `cd "$HOME"`
		}
		return `cd "$HOME"/` + Quote(rest)
	default:
		return "cd " + Quote(dir)
	}
}
