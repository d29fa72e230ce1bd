package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.InterpreterQuerier = (*InterpreterQuerier)(nil)

// interpreterScript prints the facts the installer needs about an interpreter as one JSON object.
const interpreterScript = `import json, os, platform, sys, sysconfig
print(json.dumps({
    "version": platform.python_version(),
    "site_packages": os.path.relpath(sysconfig.get_paths()["purelib"], sys.prefix),
}))`

type interpreterFacts struct {
	Version      string `json:"version"`
	SitePackages string `json:"site_packages"`
}

// InterpreterQuerier asks the interpreter of a prefix for its version and site-packages directory.
type InterpreterQuerier struct {
	executor ports.Executor
}

// NewInterpreterQuerier creates a querier that runs interpreters through executor.
func NewInterpreterQuerier(executor ports.Executor) *InterpreterQuerier {
	return &InterpreterQuerier{executor: executor}
}

// Query runs the interpreter expected to live in prefix. The locked details are returned
// updated with what the interpreter reports.
func (q *InterpreterQuerier) Query(
	ctx context.Context,
	prefix string,
	expected domain.PythonInfo,
) (domain.PythonInfo, error) {
	python := filepath.Join(prefix, expected.Path)

	var stdout, stderr bytes.Buffer
	err := q.executor.Execute(ctx, ports.Command{
		Path: python,
		Args: []string{"-c", interpreterScript},
		Dir:  prefix,
	}, &stdout, &stderr)
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrInterpreterQueryFailed.Error()), "python", python)
		return domain.PythonInfo{}, zerr.With(err, "stderr", strings.TrimSpace(stderr.String()))
	}

	var facts interpreterFacts
	if err := json.Unmarshal(bytes.TrimSpace(stdout.Bytes()), &facts); err != nil {
		return domain.PythonInfo{}, zerr.With(zerr.Wrap(err, domain.ErrInterpreterQueryFailed.Error()), "python", python)
	}
	if facts.Version == "" {
		return domain.PythonInfo{}, zerr.With(domain.ErrInterpreterQueryFailed, "python", python)
	}

	info := expected
	info.Version = facts.Version
	info.ShortVersion = domain.ShortVersion(facts.Version)
	if facts.SitePackages != "" {
		info.SitePackages = filepath.FromSlash(facts.SitePackages)
	}
	return info, nil
}
