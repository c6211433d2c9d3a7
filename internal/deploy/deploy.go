package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"newsctl/internal/logging"
	"newsctl/internal/remote"
	"newsctl/internal/runner"
	"newsctl/internal/stageexec"
)

// Step names reported in results and errors.
const (
	StepSync          = "sync"
	StepRemoteConnect = "remote-connect"
	StepRemoteCD      = "remote-cd"
	StepRemoteDeps    = "remote-deps"
	StepRemoteRestart = "remote-restart"
)

// Target is everything a deployment needs to know about both ends.
type Target struct {
	LocalRoot      string
	Host           string
	Port           int
	Dir            string
	Service        string
	DepsCommand    string
	RestartCommand string
	KeyPath        string
	KnownHosts     string
	StrictHostKey  bool
	ConnectTimeout time.Duration
}

// SSH returns the connection settings for the remote phase.
func (t Target) SSH() remote.Target {
	return remote.Target{
		Host:           t.Host,
		Port:           t.Port,
		KeyPath:        t.KeyPath,
		KnownHosts:     t.KnownHosts,
		StrictHostKey:  t.StrictHostKey,
		ConnectTimeout: t.ConnectTimeout,
	}
}

// RemoteCommands returns the ordered remote steps and their command lines.
func (t Target) RemoteCommands() []RemoteCommand {
	restart := t.RestartCommand
	if restart == "" {
		restart = "sudo systemctl restart " + remote.Quote(t.Service)
	}
	return []RemoteCommand{
		{Step: StepRemoteCD, Line: remote.ChangeDir(t.Dir)},
		{Step: StepRemoteDeps, Line: t.DepsCommand},
		{Step: StepRemoteRestart, Line: restart},
	}
}

// RemoteCommand is one line run in the remote shell.
type RemoteCommand struct {
	Step string
	Line string
}

// Shell runs command lines on the remote host in one shared shell.
type Shell interface {
	Run(ctx context.Context, line string, live io.Writer) ([]byte, int, error)
	Close() error
}

// Connector opens the remote shell.
type Connector func(ctx context.Context, target remote.Target) (Shell, error)

// Deployer runs deployments.
type Deployer struct {
	exec    runner.Executor
	connect Connector
	logger  *slog.Logger
	now     func() time.Time
}

// Option customizes a Deployer.
type Option func(*Deployer)

// WithConnector replaces the SSH connector.
func WithConnector(c Connector) Option {
	return func(d *Deployer) {
		if c != nil {
			d.connect = c
		}
	}
}

// New builds a Deployer that runs rsync through exec.
func New(exec runner.Executor, logger *slog.Logger, opts ...Option) *Deployer {
	d := &Deployer{
		exec:    exec,
		connect: DialShell,
		logger:  logging.NewComponentLogger(logger, "deploy"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deploy syncs target.LocalRoot to the remote directory, then runs the remote
// steps in one shell. Results hold every step that ran, including the
// failing one. Failures are *TransferError or *RemoteCommandError.
func (d *Deployer) Deploy(ctx context.Context, target Target, exclusions []string, live io.Writer) ([]runner.StepResult, error) {
	var shell Shell
	defer func() {
		if shell != nil {
			if err := shell.Close(); err != nil {
				d.logger.Debug("remote shell close failed", logging.Error(err))
			}
		}
	}()

	steps := []stageexec.Step{d.syncStep(target, exclusions, live)}
	steps = append(steps, stageexec.Action(StepRemoteConnect, func(ctx context.Context) error {
		sh, err := d.connect(ctx, target.SSH())
		if err != nil {
			return &RemoteCommandError{Step: StepRemoteConnect, Command: target.Host, ExitCode: -1, Err: err}
		}
		shell = sh
		return nil
	}))
	for _, rc := range target.RemoteCommands() {
		steps = append(steps, d.remoteStep(rc, func() Shell { return shell }, live))
	}

	d.logger.Info("deploy starting",
		logging.String(logging.FieldEventType, "deploy_start"),
		logging.String("host", target.Host),
		logging.String("remote_dir", target.Dir),
		logging.String("service", target.Service),
	)
	outcome := stageexec.Sequence(ctx, d.logger, steps...)
	if !outcome.Succeeded() {
		return outcome.Results, outcome.Err
	}
	return outcome.Results, nil
}

func (d *Deployer) syncStep(target Target, exclusions []string, live io.Writer) stageexec.Step {
	return stageexec.Step{
		Name: StepSync,
		Run: func(ctx context.Context) ([]runner.StepResult, error) {
			args, err := RsyncArgs(target, exclusions)
			if err != nil {
				return nil, &TransferError{Err: err}
			}
			cmd := runner.Command{Step: StepSync, Name: "rsync", Args: args, Dir: target.LocalRoot}
			result, err := d.exec.Run(ctx, cmd, live)
			if err != nil {
				return []runner.StepResult{result}, &TransferError{Result: result, Err: err}
			}
			if !result.Succeeded() {
				return []runner.StepResult{result}, &TransferError{Result: result}
			}
			return []runner.StepResult{result}, nil
		},
	}
}

func (d *Deployer) remoteStep(rc RemoteCommand, shell func() Shell, live io.Writer) stageexec.Step {
	return stageexec.Step{
		Name: rc.Step,
		Run: func(ctx context.Context) ([]runner.StepResult, error) {
			result := runner.StepResult{Step: rc.Step, Command: rc.Line, StartedAt: d.now()}
			output, code, err := shell().Run(ctx, rc.Line, live)
			result.Duration = d.now().Sub(result.StartedAt)
			result.Output = output
			result.ExitCode = code
			if err != nil {
				return []runner.StepResult{result}, &RemoteCommandError{Step: rc.Step, Command: rc.Line, ExitCode: code, Output: output, Err: err}
			}
			if code != 0 {
				return []runner.StepResult{result}, &RemoteCommandError{Step: rc.Step, Command: rc.Line, ExitCode: code, Output: output}
			}
			return []runner.StepResult{result}, nil
		},
	}
}

// RsyncArgs builds the rsync argument list: archive mode with compression,
// deletion of remote files missing locally, one --exclude per pattern, and
// ssh options passed through -e.
func RsyncArgs(target Target, exclusions []string) ([]string, error) {
	login, addr, err := target.SSH().Endpoint()
	if err != nil {
		return nil, err
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	args := []string{"-az", "--delete"}
	for _, pattern := range exclusions {
		args = append(args, "--exclude", pattern)
	}
	args = append(args, "-e", sshCommand(target, port))

	src := strings.TrimRight(target.LocalRoot, "/") + "/"
	dst := fmt.Sprintf("%s@%s:%s/", login, host, strings.TrimRight(target.Dir, "/"))
	return append(args, src, dst), nil
}

func sshCommand(target Target, port string) string {
	parts := []string{"ssh", "-p", port}
	if target.KeyPath != "" {
		parts = append(parts, "-i", remote.Quote(target.KeyPath))
	}
	if target.StrictHostKey {
		parts = append(parts, "-o", "StrictHostKeyChecking=yes")
		if target.KnownHosts != "" {
			parts = append(parts, "-o", "UserKnownHostsFile="+remote.Quote(target.KnownHosts))
		}
	} else {
		parts = append(parts, "-o", "StrictHostKeyChecking=no")
	}
	if target.ConnectTimeout > 0 {
		parts = append(parts, "-o", "ConnectTimeout="+strconv.Itoa(int(target.ConnectTimeout.Seconds())))
	}
	parts = append(parts, "-o", "BatchMode=yes")
	return strings.Join(parts, " ")
}

// DialShell connects with remote.Dial and opens a persistent shell. Closing
// the returned Shell also closes the connection.
func DialShell(ctx context.Context, target remote.Target) (Shell, error) {
	client, err := remote.Dial(ctx, target)
	if err != nil {
		return nil, err
	}
	sh, err := remote.OpenShell(client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &clientShell{Shell: sh, closeClient: client.Close}, nil
}

type clientShell struct {
	*remote.Shell
	closeClient func() error
}

func (c *clientShell) Close() error {
	shellErr := c.Shell.Close()
	clientErr := c.closeClient()
	if shellErr != nil {
		return shellErr
	}
	if clientErr != nil && !errors.Is(clientErr, net.ErrClosed) {
		return clientErr
	}
	return nil
}
