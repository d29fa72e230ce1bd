package solver_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pixi/internal/adapters/solver"
	"go.trai.ch/pixi/internal/adapters/telemetry"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func sourceRecord() *domain.SourceRecord {
	return &domain.SourceRecord{
		Name:    "mylib",
		Version: "0.1.0",
		Subdir:  domain.PlatformLinux64,
		Source:  "./mylib",
	}
}

func TestSourceBuilder_Build(t *testing.T) {
	executor, seen := fakeSolver(t, `{"record": {"name": "mylib", "version": "0.1.0", "build": "0",
		"subdir": "linux-64", "url": "file:///tmp/out/mylib-0.1.0-0.conda"}}`)
	b := solver.NewSourceBuilder(solver.Command{"build-backend"}, executor, newLogger(t))

	built, err := b.Build(context.Background(), sourceRecord(), domain.PlatformLinux64)
	require.NoError(t, err)

	assert.Equal(t, "file:///tmp/out/mylib-0.1.0-0.conda", built.URL)
	assert.Equal(t, "linux-64", seen.request["platform"])
	record, ok := seen.request["record"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "./mylib", record["source"])
}

// outputSpan keeps what is written to it.
type outputSpan struct {
	telemetry.NoOpSpan
	out bytes.Buffer
}

func (s *outputSpan) Write(p []byte) (int, error) { return s.out.Write(p) }

func TestSourceBuilder_StreamsStderrToStep(t *testing.T) {
	executor := mocks.NewMockExecutor(gomock.NewController(t))
	executor.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ ports.Command, stdout, stderr io.Writer) error {
			_, _ = io.WriteString(stderr, "compiling mylib\n")
			_, err := io.WriteString(stdout, `{"record": {"name": "mylib", "version": "0.1.0", "build": "0",
				"subdir": "linux-64", "url": "file:///tmp/out/mylib-0.1.0-0.conda"}}`)
			return err
		})
	b := solver.NewSourceBuilder(solver.Command{"build-backend"}, executor, newLogger(t))

	span := &outputSpan{}
	ctx := ports.ContextWithSpan(context.Background(), span)
	_, err := b.Build(ctx, sourceRecord(), domain.PlatformLinux64)
	require.NoError(t, err)
	assert.Equal(t, "compiling mylib\n", span.out.String())
}

func TestSourceBuilder_NotConfigured(t *testing.T) {
	b := solver.NewSourceBuilder(nil, mocks.NewMockExecutor(gomock.NewController(t)), newLogger(t))

	_, err := b.Build(context.Background(), sourceRecord(), domain.PlatformLinux64)
	require.ErrorIs(t, err, domain.ErrSourceRecordNotBuilt)
}

func TestSourceBuilder_BadResults(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "missing record", response: `{}`},
		{name: "still a source", response: `{"record": {"name": "mylib", "version": "0.1.0", "source": "./mylib"}}`},
		{name: "other package", response: `{"record": {"name": "other", "version": "1", "url": "file:///x.conda"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor, _ := fakeSolver(t, tt.response)
			b := solver.NewSourceBuilder(solver.Command{"build-backend"}, executor, newLogger(t))

			_, err := b.Build(context.Background(), sourceRecord(), domain.PlatformLinux64)
			require.ErrorIs(t, err, domain.ErrSolverProtocol)
		})
	}
}
