package telemetry_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"

	"go.trai.ch/pixi/internal/adapters/telemetry"
	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/pixi/internal/core/ports/mocks"
)

func TestInterfaceSatisfaction(_ *testing.T) {
	var _ ports.Tracer = (*telemetry.OTelTracer)(nil)
	var _ ports.Span = (*telemetry.OTelSpan)(nil)
	var _ ports.Tracer = (*telemetry.NoOpTracer)(nil)
	var _ ports.Span = (*telemetry.NoOpSpan)(nil)
	var _ sdktrace.SpanProcessor = (*telemetry.Bridge)(nil)
}

type completion struct {
	name   string
	kind   domain.StepKind
	status domain.StepStatus
	err    error
}

// recordingRenderer records the steps it is told about.
type recordingRenderer struct {
	mu       sync.Mutex
	names    map[string]string
	kinds    map[string]domain.StepKind
	plans    [][]string
	logs     []string
	finished []completion
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{names: map[string]string{}, kinds: map[string]domain.StepKind{}}
}

func (r *recordingRenderer) Start(context.Context) error { return nil }
func (r *recordingRenderer) Stop() error                 { return nil }
func (r *recordingRenderer) Wait() error                 { return nil }

func (r *recordingRenderer) OnPlanEmit(steps []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans = append(r.plans, steps)
}

func (r *recordingRenderer) OnStepStart(spanID, _, name string, kind domain.StepKind, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[spanID] = name
	r.kinds[spanID] = kind
}

func (r *recordingRenderer) OnStepLog(_ string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, string(data))
}

func (r *recordingRenderer) OnStepComplete(spanID string, _ time.Time, status domain.StepStatus, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, completion{
		name: r.names[spanID], kind: r.kinds[spanID], status: status, err: err,
	})
}

func newTracer(t *testing.T, r ports.Renderer) (*telemetry.OTelTracer, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(telemetry.NewBridge(r)),
		sdktrace.WithSpanProcessor(sr),
	)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return telemetry.NewOTelTracerWithProvider(tp, "test").WithRenderer(r), sr
}

func TestOTelTracer_StepLifecycle(t *testing.T) {
	t.Parallel()

	r := newRecordingRenderer()
	tracer, _ := newTracer(t, r)
	ctx := context.Background()

	tracer.EmitPlan(ctx, []string{"solve conda default linux-64"})

	_, solve := tracer.Start(ctx, "solve conda default linux-64", ports.WithStepKind(domain.StepSolveConda))
	_, err := solve.Write([]byte("resolving 12 specs\n"))
	require.NoError(t, err)
	solve.End()

	_, download := tracer.Start(ctx, "download zlib", ports.WithStepKind(domain.StepDownload))
	download.SetStatus(domain.StepStatusCached)
	download.End()

	_, build := tracer.Start(ctx, "build mylib", ports.WithStepKind(domain.StepBuild))
	build.RecordError(errors.New("setup.py failed"))
	build.SetStatus(domain.StepStatusCached)
	build.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, [][]string{{"solve conda default linux-64"}}, r.plans)
	assert.Equal(t, []string{"resolving 12 specs\n"}, r.logs)
	require.Len(t, r.finished, 3)

	assert.Equal(t, domain.StepSolveConda, r.finished[0].kind)
	assert.Equal(t, domain.StepStatusCompleted, r.finished[0].status)

	assert.Equal(t, domain.StepStatusCached, r.finished[1].status)

	assert.Equal(t, domain.StepStatusFailed, r.finished[2].status, "a recorded error wins")
	require.Error(t, r.finished[2].err)
	assert.Equal(t, "setup.py failed", r.finished[2].err.Error())
}

func TestOTelTracer_StepOutputFromContext(t *testing.T) {
	t.Parallel()

	r := newRecordingRenderer()
	tracer, _ := newTracer(t, r)

	assert.Equal(t, io.Discard, ports.StepOutput(context.Background()))

	ctx, build := tracer.Start(context.Background(), "build mylib", ports.WithStepKind(domain.StepBuild))
	_, err := io.WriteString(ports.StepOutput(ctx), "running setup.py bdist_wheel\n")
	require.NoError(t, err)
	build.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, []string{"running setup.py bdist_wheel\n"}, r.logs)
}

func TestOTelTracer_StartAttributes(t *testing.T) {
	t.Parallel()

	tracer, sr := newTracer(t, nil)
	_, span := tracer.Start(context.Background(), "link zlib",
		ports.WithStepKind(domain.StepLink),
		ports.WithAttribute("pixi.prefix", "/p/.pixi/envs/default"))
	span.SetAttribute("pixi.files", 12)
	span.SetAttribute("pixi.noarch", true)
	span.SetAttribute("pixi.deps", []string{"libzlib"})
	span.SetAttribute("pixi.other", struct{}{})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	attrs := make(map[attribute.Key]attribute.Value)
	for _, a := range spans[0].Attributes() {
		attrs[a.Key] = a.Value
	}
	assert.Equal(t, "link", attrs[telemetry.AttrKind].AsString())
	assert.Equal(t, "/p/.pixi/envs/default", attrs["pixi.prefix"].AsString())
	assert.Equal(t, int64(12), attrs["pixi.files"].AsInt64())
	assert.True(t, attrs["pixi.noarch"].AsBool())
	assert.Equal(t, []string{"libzlib"}, attrs["pixi.deps"].AsStringSlice())
	assert.Equal(t, "{}", attrs["pixi.other"].AsString())
}

func TestOTelSpan_WriteWithoutRenderer(t *testing.T) {
	t.Parallel()

	tracer, sr := newTracer(t, nil)
	ctx, span := tracer.Start(context.Background(), "install six")
	n, err := span.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	tracer.EmitPlan(ctx, []string{"install six"})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 2)
	assert.Equal(t, "log", events[0].Name)
	assert.Equal(t, "plan_emitted", events[1].Name)
}

func TestBridge_ForwardsToRenderer(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	gomock.InOrder(
		renderer.EXPECT().OnStepStart(gomock.Any(), "", "unlink zlib", domain.StepUnlink, gomock.Any()),
		renderer.EXPECT().OnStepComplete(gomock.Any(), gomock.Any(), domain.StepStatusSkipped, nil),
	)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "unlink zlib",
		trace.WithAttributes(attribute.String(telemetry.AttrKind, string(domain.StepUnlink))))
	span.SetAttributes(attribute.String(telemetry.AttrStatus, string(domain.StepStatusSkipped)))
	span.End()
}

func TestBridge_NilRenderer(t *testing.T) {
	t.Parallel()

	bridge := telemetry.NewBridge(nil)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	span.End()

	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}

func TestNoOpTracer(t *testing.T) {
	t.Parallel()

	tracer := telemetry.NewNoOpTracer()
	ctx, span := tracer.Start(context.Background(), "noop", ports.WithStepKind(domain.StepInstall))
	assert.NotNil(t, ctx)

	tracer.EmitPlan(ctx, []string{"noop"})
	span.SetAttribute("key", "value")
	span.SetStatus(domain.StepStatusCached)
	span.RecordError(errors.New("ignored"))
	n, err := span.Write([]byte("data"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	span.End()
}

func TestOTelTracer_Attach(t *testing.T) {
	t.Parallel()

	r := newRecordingRenderer()
	tracer := telemetry.NewOTelTracerWithProvider(noop.NewTracerProvider(), "test")
	ctx := context.Background()

	detach := tracer.Attach(r)
	tracer.EmitPlan(ctx, []string{"install default"})
	_, span := tracer.Start(ctx, "link zlib", ports.WithStepKind(domain.StepLink))
	span.End()
	require.NoError(t, detach(ctx))

	_, after := tracer.Start(ctx, "link after detach", ports.WithStepKind(domain.StepLink))
	after.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, [][]string{{"install default"}}, r.plans)
	require.Len(t, r.finished, 1)
	assert.Equal(t, domain.StepLink, r.finished[0].kind)
	assert.Equal(t, domain.StepStatusCompleted, r.finished[0].status)
}
