package solver_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// call is what a fake solver saw.
type call struct {
	command ports.Command
	request map[string]any
}

// fakeSolver returns an executor that answers every command with response on stdout.
func fakeSolver(t *testing.T, response string) (*mocks.MockExecutor, *call) {
	t.Helper()
	ctrl := gomock.NewController(t)
	executor := mocks.NewMockExecutor(ctrl)
	seen := &call{}
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd ports.Command, stdout, _ io.Writer) error {
			seen.command = cmd
			payload, err := io.ReadAll(cmd.Stdin)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(payload, &seen.request))
			_, err = io.WriteString(stdout, response)
			return err
		})
	return executor, seen
}

func newLogger(t *testing.T) *mocks.MockLogger {
	t.Helper()
	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	return logger
}
