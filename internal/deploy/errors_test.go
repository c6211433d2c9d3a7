package deploy_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"newsctl/internal/deploy"
)

func TestFailedStepNamesTheFailingStep(t *testing.T) {
	remoteErr := fmt.Errorf("deploy: %w", &deploy.RemoteCommandError{Step: deploy.StepRemoteDeps, Command: "uv sync", ExitCode: 2})
	require.Equal(t, deploy.StepRemoteDeps, deploy.FailedStep(remoteErr))

	transferErr := fmt.Errorf("deploy: %w", &deploy.TransferError{Err: errors.New("connection reset")})
	require.Equal(t, deploy.StepSync, deploy.FailedStep(transferErr))

	require.Empty(t, deploy.FailedStep(errors.New("remote.host is required")))
	require.Empty(t, deploy.FailedStep(nil))
}
