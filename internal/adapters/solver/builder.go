package solver

import (
	"context"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceBuilder = (*SourceBuilder)(nil)

type buildRequest struct {
	Record   record          `json:"record"`
	Platform domain.Platform `json:"platform"`
}

type buildResponse struct {
	Record *record `json:"record"`
	Error  string  `json:"error,omitempty"`
}

func (r *buildResponse) failure() string { return r.Error }

// SourceBuilder turns source records into binary packages with an external build backend.
type SourceBuilder struct {
	runner runner
}

// NewSourceBuilder creates a SourceBuilder.
func NewSourceBuilder(command Command, executor ports.Executor, logger ports.Logger) *SourceBuilder {
	return &SourceBuilder{runner: runner{env: BuildBackendEnv, command: command, executor: executor, logger: logger}}
}

// Build asks the backend to build rec and returns the binary record of the result. Without a
// configured backend source records cannot be installed.
func (b *SourceBuilder) Build(
	ctx context.Context,
	rec *domain.SourceRecord,
	platform domain.Platform,
) (*domain.BinaryRecord, error) {
	if len(b.runner.command) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrSourceRecordNotBuilt, rec.Source), "env", BuildBackendEnv)
	}

	var resp buildResponse
	if err := b.runner.call(ctx, "", buildRequest{Record: encodeRecord(rec), Platform: platform}, &resp); err != nil {
		return nil, err
	}
	if resp.Record == nil || resp.Record.Source != "" || resp.Record.URL == "" {
		return nil, protocolError(b.runner.command, "build did not return a binary record")
	}
	built := resp.Record.BinaryRecord
	if built.Name != rec.Name {
		return nil, zerr.With(protocolError(b.runner.command, "build returned a different package"), "package", built.Name)
	}
	return &built, nil
}
