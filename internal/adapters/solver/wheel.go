package solver

import (
	"context"
	"path/filepath"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
)

var _ ports.WheelSolver = (*WheelSolver)(nil)

type requirement struct {
	Requirement string `json:"requirement"`
	Editable    bool   `json:"editable,omitempty"`
}

type indexes struct {
	IndexURL       string   `json:"index_url,omitempty"`
	ExtraIndexURLs []string `json:"extra_index_urls,omitempty"`
	FindLinks      []string `json:"find_links,omitempty"`
}

type buildEnvironment struct {
	Prefix string   `json:"prefix"`
	Python string   `json:"python"`
	Env    []string `json:"env,omitempty"`
}

type wheelRequest struct {
	Requirements     []requirement        `json:"requirements"`
	Indexes          indexes              `json:"indexes"`
	Platform         domain.Platform      `json:"platform"`
	PythonVersion    string               `json:"python_version"`
	Excluded         []domain.PackageName `json:"excluded,omitempty"`
	Locked           []wheel              `json:"locked,omitempty"`
	Build            *buildEnvironment    `json:"build,omitempty"`
	NoBuildIsolation []domain.PackageName `json:"no_build_isolation,omitempty"`
}

type wheelResponse struct {
	Wheels []wheel `json:"wheels"`
	Error  string  `json:"error,omitempty"`
}

func (r *wheelResponse) failure() string { return r.Error }

// WheelSolver solves wheel requirements with an external solver. The solver runs in the
// project root so relative paths resolve the way the manifest spells them.
type WheelSolver struct {
	runner runner
	hasher ports.SourceTreeHasher
}

// NewWheelSolver creates a WheelSolver. Local paths in the solution are hashed with hasher.
func NewWheelSolver(
	command Command,
	executor ports.Executor,
	hasher ports.SourceTreeHasher,
	logger ports.Logger,
) *WheelSolver {
	return &WheelSolver{
		runner: runner{env: WheelSolverEnv, command: command, executor: executor, logger: logger},
		hasher: hasher,
	}
}

// SolveWheels sends the request to the solver and returns the wheels it selected.
// The hash of a local path is always recomputed so the lock file agrees with later
// satisfiability checks.
func (s *WheelSolver) SolveWheels(ctx context.Context, req ports.WheelSolveRequest) ([]domain.LockedWheel, error) {
	payload := wheelRequest{
		Requirements: make([]requirement, len(req.Requirements)),
		Indexes: indexes{
			IndexURL:       req.Indexes.IndexURL,
			ExtraIndexURLs: req.Indexes.ExtraIndexURLs,
			FindLinks:      req.Indexes.FindLinks,
		},
		Platform:         req.Platform,
		PythonVersion:    req.PythonVersion,
		Excluded:         req.Excluded,
		Locked:           encodeWheels(req.Locked),
		NoBuildIsolation: req.NoBuildIsolation,
	}
	for i, r := range req.Requirements {
		payload.Requirements[i] = requirement{Requirement: r.String(), Editable: r.Editable}
	}
	if b := req.Build; b != nil {
		payload.Build = &buildEnvironment{Prefix: b.Prefix, Python: b.PythonPath(), Env: b.Env}
	}

	var resp wheelResponse
	if err := s.runner.call(ctx, req.Root, payload, &resp); err != nil {
		return nil, err
	}

	wheels := make([]domain.LockedWheel, 0, len(resp.Wheels))
	for _, w := range resp.Wheels {
		if w.Name.IsZero() || w.Version == "" || w.Location == "" {
			return nil, protocolError(s.runner.command, "wheel without name, version or location")
		}
		locked := w.decode()
		if locked.Package.IsLocalPath() {
			path := locked.Package.Location
			if !filepath.IsAbs(path) {
				path = filepath.Join(req.Root, path)
			}
			hash, err := s.hasher.HashSourceTree(path)
			if err != nil {
				return nil, err
			}
			locked.Package.Hash = hash
		}
		wheels = append(wheels, locked)
	}
	return wheels, nil
}
