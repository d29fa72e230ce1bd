package solver

import (
	"context"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
)

var _ ports.BinarySolver = (*BinarySolver)(nil)

type virtualPackage struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type binaryRequest struct {
	Specs           []string         `json:"specs"`
	Channels        []string         `json:"channels"`
	VirtualPackages []virtualPackage `json:"virtual_packages,omitempty"`
	Platform        domain.Platform  `json:"platform"`
	Locked          []record         `json:"locked,omitempty"`
}

type binaryResponse struct {
	Records []record `json:"records"`
	Error   string   `json:"error,omitempty"`
}

func (r *binaryResponse) failure() string { return r.Error }

// BinarySolver solves binary requirements with an external solver.
type BinarySolver struct {
	runner runner
}

// NewBinarySolver creates a BinarySolver. An empty command fails every solve with
// domain.ErrSolverNotConfigured.
func NewBinarySolver(command Command, executor ports.Executor, logger ports.Logger) *BinarySolver {
	return &BinarySolver{runner: runner{env: BinarySolverEnv, command: command, executor: executor, logger: logger}}
}

// SolveBinary sends the request to the solver and returns the records it selected.
func (s *BinarySolver) SolveBinary(ctx context.Context, req ports.BinarySolveRequest) ([]domain.LockedRecord, error) {
	payload := binaryRequest{
		Specs:    make([]string, len(req.Specs)),
		Channels: req.Channels,
		Platform: req.Platform,
		Locked:   encodeRecords(req.Locked),
	}
	for i, spec := range req.Specs {
		payload.Specs[i] = spec.String()
	}
	for _, vp := range req.VirtualPackages {
		payload.VirtualPackages = append(payload.VirtualPackages, virtualPackage{Name: vp.Name, Version: vp.Version})
	}

	var resp binaryResponse
	if err := s.runner.call(ctx, "", payload, &resp); err != nil {
		return nil, err
	}

	records := make([]domain.LockedRecord, 0, len(resp.Records))
	for _, r := range resp.Records {
		if r.Name == "" || r.Version == "" {
			return nil, protocolError(s.runner.command, "record without name or version")
		}
		if r.Source == "" && r.URL == "" {
			return nil, protocolError(s.runner.command, "binary record "+r.Name+" has no url")
		}
		records = append(records, r.decode())
	}
	if _, err := domain.RecordsByName(records); err != nil {
		return nil, err
	}
	return records, nil
}
