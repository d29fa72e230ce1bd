// Package resolve drives the binary and wheel solvers for one environment and platform.
package resolve

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// RecordSource yields the binary records a prefix is materialized from.
// It is called at most once.
type RecordSource func(ctx context.Context) ([]domain.LockedRecord, error)

// Records returns a RecordSource for an already computed binary solve.
func Records(records []domain.LockedRecord, err error) RecordSource {
	return func(context.Context) ([]domain.LockedRecord, error) {
		return records, err
	}
}

type lazyState int

const (
	stateUninitialized lazyState = iota
	stateInProgress
	stateDone
)

// LazyPrefix materializes a solve group prefix the first time a source build needs an interpreter.
// Concurrent callers share one installation and receive the same result.
type LazyPrefix struct {
	group     string
	prefix    string
	platform  domain.Platform
	noInstall bool
	source    RecordSource
	m         *Materializer

	mu      sync.Mutex
	state   lazyState
	waiters chan struct{}
	env     *domain.BuildEnvironment
	err     error
}

// GetOrInit returns the build environment, installing the prefix on the first call.
func (l *LazyPrefix) GetOrInit(ctx context.Context) (*domain.BuildEnvironment, error) {
	l.mu.Lock()
	switch l.state {
	case stateDone:
		env, err := l.env, l.err
		l.mu.Unlock()
		return env, err
	case stateInProgress:
		waiters := l.waiters
		l.mu.Unlock()
		select {
		case <-waiters:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.env, l.err
	default:
		l.state = stateInProgress
		l.waiters = make(chan struct{})
		l.mu.Unlock()
	}

	env, err := l.materialize(ctx)

	l.mu.Lock()
	l.state = stateDone
	l.env, l.err = env, err
	l.source = nil
	close(l.waiters)
	l.mu.Unlock()

	return env, err
}

// Prefix returns the directory the build environment is installed into.
func (l *LazyPrefix) Prefix() string {
	return l.prefix
}

// Materialized reports whether the prefix was successfully installed.
func (l *LazyPrefix) Materialized() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == stateDone && l.err == nil
}

func (l *LazyPrefix) materialize(ctx context.Context) (*domain.BuildEnvironment, error) {
	if l.platform == "" {
		return nil, zerr.With(domain.ErrNoBuildPlatform, "group", l.group)
	}

	records, err := l.source(ctx)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrBinarySolveFailed.Error()), "group", l.group)
	}

	if l.noInstall {
		return nil, zerr.With(domain.ErrInstallationRequiredButDisallowed, "group", l.group)
	}
	expected, ok := domain.PythonInfoFromRecords(records, l.platform)
	if !ok {
		return nil, zerr.With(domain.ErrPythonMissing, "group", l.group)
	}

	return l.m.materialize(ctx, l.group, l.prefix, l.platform, records, expected)
}

// PreparedPrefix is a build context over a prefix that was already installed.
type PreparedPrefix struct {
	updated *domain.CondaPrefixUpdated
}

// NewPreparedPrefix wraps the result of a prefix update.
func NewPreparedPrefix(updated *domain.CondaPrefixUpdated) *PreparedPrefix {
	return &PreparedPrefix{updated: updated}
}

// GetOrInit returns the build environment of the installed prefix.
func (p *PreparedPrefix) GetOrInit(context.Context) (*domain.BuildEnvironment, error) {
	info := p.updated.PythonStatus.CurrentInfo()
	if info == nil {
		return nil, zerr.With(domain.ErrPythonMissing, "group", p.updated.Group)
	}
	return &domain.BuildEnvironment{
		Group:  p.updated.Group,
		Prefix: p.updated.Prefix,
		Python: *info,
		Env:    ActivationEnv(p.updated.Prefix, p.updated.Platform),
	}, nil
}

// Materializer installs build prefixes. Lazy prefixes created by one Materializer share
// installations of the same prefix path.
type Materializer struct {
	installer ports.PrefixInstaller
	querier   ports.InterpreterQuerier
	tracer    ports.Tracer
	flight    singleflight.Group
}

// NewMaterializer creates a Materializer.
func NewMaterializer(installer ports.PrefixInstaller, querier ports.InterpreterQuerier, tracer ports.Tracer) *Materializer {
	return &Materializer{installer: installer, querier: querier, tracer: tracer}
}

// Lazy returns a build context that installs records from source into prefix on first use.
// An empty platform means the prefix cannot run on this host.
func (m *Materializer) Lazy(
	group, prefix string,
	platform domain.Platform,
	source RecordSource,
	noInstall bool,
) *LazyPrefix {
	return &LazyPrefix{
		group:     group,
		prefix:    prefix,
		platform:  platform,
		noInstall: noInstall,
		source:    source,
		m:         m,
	}
}

func (m *Materializer) materialize(
	ctx context.Context,
	group, prefix string,
	platform domain.Platform,
	records []domain.LockedRecord,
	expected domain.PythonInfo,
) (*domain.BuildEnvironment, error) {
	v, err, _ := m.flight.Do(prefix, func() (any, error) {
		ctx, span := m.tracer.Start(ctx, "materialize "+group,
			ports.WithStepKind(domain.StepMaterialize),
			ports.WithAttribute("pixi.prefix", prefix))
		defer span.End()

		if _, err := m.installer.Update(ctx, prefix, group, platform, records); err != nil {
			span.RecordError(err)
			return nil, err
		}

		info, err := m.querier.Query(ctx, prefix, expected)
		if err != nil {
			span.RecordError(err)
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInterpreterQueryFailed.Error()), "prefix", prefix)
		}

		return &domain.BuildEnvironment{
			Group:  group,
			Prefix: prefix,
			Python: info,
			Env:    ActivationEnv(prefix, platform),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.BuildEnvironment), nil
}

// ActivationEnv returns the process environment of a prefix: the inherited variables with the
// prefix's executables first on PATH and CONDA_PREFIX pointing at it.
func ActivationEnv(prefix string, platform domain.Platform) []string {
	var bins []string
	if platform.IsWindows() {
		bins = []string{
			prefix,
			filepath.Join(prefix, "Library", "bin"),
			filepath.Join(prefix, "Scripts"),
		}
	} else {
		bins = []string{filepath.Join(prefix, "bin")}
	}

	env := make([]string, 0, len(os.Environ())+2)
	path := strings.Join(bins, string(os.PathListSeparator))
	for _, kv := range os.Environ() {
		key, value, _ := strings.Cut(kv, "=")
		switch strings.ToUpper(key) {
		case "PATH":
			if value != "" {
				path += string(os.PathListSeparator) + value
			}
		case "CONDA_PREFIX", "PYTHONHOME", "PYTHONPATH":
		default:
			env = append(env, kv)
		}
	}
	return append(env, "PATH="+path, "CONDA_PREFIX="+prefix)
}
