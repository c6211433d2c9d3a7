package remote

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"
)

// ErrShellClosed is returned when the remote shell ends before a command's
// end marker arrives.
var ErrShellClosed = errors.New("remote shell closed")

// Session is the part of *ssh.Session a Shell needs.
type Session interface {
	StdinPipe() (io.WriteCloser, error)
	Start(cmd string) error
	Wait() error
	Close() error
}

// Shell is one long-lived /bin/sh on the remote host. Commands run
// sequentially and share working directory and environment.
type Shell struct {
	mu     sync.Mutex
	sess   Session
	stdin  io.WriteCloser
	pr     *io.PipeReader
	pw     *io.PipeWriter
	reader *bufio.Reader
	nonce  string
	seq    int
	closed bool
}

// OpenShell starts a shell on a new session of client.
func OpenShell(client *ssh.Client) (*Shell, error) {
	s, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("open ssh session: %w", err)
	}
	pr, pw := io.Pipe()
	s.Stdout = pw
	s.Stderr = pw
	sh, err := startShell(s, pr, pw)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

func startShell(s Session, pr *io.PipeReader, pw *io.PipeWriter) (*Shell, error) {
	stdin, err := s.StdinPipe()
	if err != nil {
		_ = pw.Close()
		_ = s.Close()
		return nil, fmt.Errorf("remote stdin: %w", err)
	}
	if err := s.Start("/bin/sh -s -"); err != nil {
		_ = stdin.Close()
		_ = pw.Close()
		_ = s.Close()
		return nil, fmt.Errorf("start remote shell: %w", err)
	}
	go func() {
		// Unblock readers once the remote shell exits.
		_ = s.Wait()
		_ = pw.Close()
	}()
	return &Shell{
		sess:   s,
		stdin:  stdin,
		pr:     pr,
		pw:     pw,
		reader: bufio.NewReader(pr),
		nonce:  makeNonce(),
	}, nil
}

// Run executes line in the shell and returns its merged output and exit
// status. Output is forwarded to live as it arrives when live is non-nil.
// Cancelling ctx tears the whole shell down.
func (sh *Shell) Run(ctx context.Context, line string, live io.Writer) ([]byte, int, error) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.closed {
		return nil, -1, ErrShellClosed
	}

	stop := context.AfterFunc(ctx, func() {
		_ = sh.pw.CloseWithError(ctx.Err())
		_ = sh.sess.Close()
	})
	defer stop()

	marker := fmt.Sprintf("__NEWSCTL_END__%s__%d__", sh.nonce, sh.seq)
	sh.seq++

	// Braces keep builtins such as cd in the shell's own process. Stdin is
	// the command stream, so commands read /dev/null instead.
	cmd := fmt.Sprintf("{ %s\n} </dev/null 2>&1; echo %s $?\n", line, marker)
	if _, err := io.WriteString(sh.stdin, cmd); err != nil {
		return nil, -1, sh.streamErr(ctx, err)
	}

	var out []byte
	for {
		chunk, err := sh.reader.ReadString('\n')
		if idx := strings.Index(chunk, marker+" "); idx >= 0 {
			out = appendLive(out, chunk[:idx], live)
			code, perr := strconv.Atoi(strings.TrimSpace(chunk[idx+len(marker)+1:]))
			if perr != nil {
				return out, -1, fmt.Errorf("parse exit status %q: %w", chunk[idx:], perr)
			}
			return out, code, nil
		}
		out = appendLive(out, chunk, live)
		if err != nil {
			return out, -1, sh.streamErr(ctx, err)
		}
	}
}

func (sh *Shell) streamErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		return ErrShellClosed
	}
	return err
}

func appendLive(out []byte, text string, live io.Writer) []byte {
	if text == "" {
		return out
	}
	if live != nil {
		_, _ = io.WriteString(live, text)
	}
	return append(out, text...)
}

// Close ends the shell and its session. It is safe to call more than once.
func (sh *Shell) Close() error {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.closed {
		return nil
	}
	sh.closed = true
	_, _ = io.WriteString(sh.stdin, "exit\n")
	_ = sh.stdin.Close()
	_ = sh.pw.Close()
	if err := sh.sess.Close(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func makeNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
