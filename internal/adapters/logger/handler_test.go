package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/pixi/internal/adapters/logger"
)

func newHandler(t *testing.T, level slog.Level) (*logger.PrettyHandler, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	buf := &bytes.Buffer{}
	return logger.NewPrettyHandler(buf, &slog.HandlerOptions{Level: level}), buf
}

func TestPrettyHandler_Levels(t *testing.T) {
	tests := []struct {
		name       string
		minimum    slog.Level
		level      slog.Level
		msg        string
		goldenName string
	}{
		{name: "info", minimum: slog.LevelInfo, level: slog.LevelInfo, msg: "information message", goldenName: "handler_info"},
		{name: "warn", minimum: slog.LevelInfo, level: slog.LevelWarn, msg: "warning message", goldenName: "handler_warn"},
		{name: "error", minimum: slog.LevelInfo, level: slog.LevelError, msg: "error message", goldenName: "handler_error"},
		{name: "debug", minimum: slog.LevelDebug, level: slog.LevelDebug, msg: "debug message", goldenName: "handler_debug"},
		{
			name: "debug filtered", minimum: slog.LevelInfo, level: slog.LevelDebug,
			msg: "debug message", goldenName: "handler_debug_filtered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, buf := newHandler(t, tt.minimum)
			slog.New(handler).Log(t.Context(), tt.level, tt.msg)

			goldie.New(t).Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	tests := []struct {
		name       string
		attrs      []slog.Attr
		msg        string
		goldenName string
	}{
		{
			name:       "single attribute",
			attrs:      []slog.Attr{slog.String("key", "value")},
			msg:        "single attr message",
			goldenName: "handler_attrs_single",
		},
		{
			name:       "multiple attributes",
			attrs:      []slog.Attr{slog.String("a", "1"), slog.Int("b", 2)},
			msg:        "multi attr message",
			goldenName: "handler_attrs_multi",
		},
		{
			name:       "group attribute",
			attrs:      []slog.Attr{slog.Group("g", slog.String("k", "v"))},
			msg:        "group attr message",
			goldenName: "handler_attrs_group",
		},
		{
			name:       "nested group attribute",
			attrs:      []slog.Attr{slog.Group("outer", slog.Group("inner", slog.String("k", "v")))},
			msg:        "nested group message",
			goldenName: "handler_attrs_nested_group",
		},
		{
			name:       "quoted values",
			attrs:      []slog.Attr{slog.String("empty", ""), slog.String("path", "/tmp/my env")},
			msg:        "quoted value message",
			goldenName: "handler_attrs_quoted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, buf := newHandler(t, slog.LevelInfo)
			slog.New(handler.WithAttrs(tt.attrs)).Info(tt.msg)

			goldie.New(t).Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_WithGroup(t *testing.T) {
	tests := []struct {
		name       string
		groups     []string
		key, value string
		msg        string
		goldenName string
	}{
		{
			name: "single group", groups: []string{"request"}, key: "id", value: "123",
			msg: "single group message", goldenName: "handler_group_single",
		},
		{
			name: "nested groups", groups: []string{"a", "b"}, key: "key", value: "val",
			msg: "nested group message", goldenName: "handler_group_nested",
		},
		{
			name: "empty group name", groups: []string{""}, key: "key", value: "val",
			msg: "empty group test", goldenName: "handler_group_empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, buf := newHandler(t, slog.LevelInfo)
			var h slog.Handler = handler
			for _, g := range tt.groups {
				h = h.WithGroup(g)
			}
			slog.New(h).Info(tt.msg, tt.key, tt.value)

			goldie.New(t).Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestPrettyHandler_WithAttrsKeepsParent(t *testing.T) {
	handler, buf := newHandler(t, slog.LevelInfo)
	child := handler.WithAttrs([]slog.Attr{slog.String("child", "1")})

	slog.New(handler).Info("parent")
	slog.New(child).Info("child")

	assert.Equal(t, "parent\nchild child=1\n", buf.String())
}

func TestPrettyHandler_Enabled(t *testing.T) {
	handler, _ := newHandler(t, slog.LevelInfo)

	assert.False(t, handler.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, handler.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, handler.Enabled(t.Context(), slog.LevelError))
}

func TestPrettyHandler_FollowsLevelVar(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	level := &slog.LevelVar{}
	handler := logger.NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: level})

	assert.False(t, handler.Enabled(t.Context(), slog.LevelDebug))
	level.Set(slog.LevelDebug)
	assert.True(t, handler.Enabled(t.Context(), slog.LevelDebug))
}
