// Package conda brings an installation prefix in line with a locked binary package set.
package conda

import (
	"context"
	"slices"
	"strings"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Installer is the ports.PrefixInstaller of the binary ecosystem.
type Installer struct {
	linker  ports.PrefixLinker
	fetcher ports.PackageFetcher
	builder ports.SourceBuilder
	io      ports.IOLimiter
	tracer  ports.Tracer
	logger  ports.Logger
}

// NewInstaller creates an Installer. Source records are rejected until a builder is set.
func NewInstaller(
	linker ports.PrefixLinker,
	fetcher ports.PackageFetcher,
	io ports.IOLimiter,
	tracer ports.Tracer,
	logger ports.Logger,
) *Installer {
	return &Installer{
		linker:  linker,
		fetcher: fetcher,
		io:      io,
		tracer:  tracer,
		logger:  logger,
	}
}

// WithSourceBuilder sets the builder used for source records.
func (i *Installer) WithSourceBuilder(b ports.SourceBuilder) *Installer {
	i.builder = b
	return i
}

// Update installs and removes packages until the prefix holds exactly required.
// Removals and downloads run concurrently; linking starts once every download finished.
func (i *Installer) Update(
	ctx context.Context,
	prefix, group string,
	platform domain.Platform,
	required []domain.LockedRecord,
) (*domain.CondaPrefixUpdated, error) {
	wanted, err := i.binaryRecords(ctx, platform, required)
	if err != nil {
		return nil, err
	}

	installed, err := i.linker.Installed(prefix)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrPrefixReadFailed.Error()), "prefix", prefix)
	}

	result := &domain.CondaPrefixUpdated{
		Group:    group,
		Prefix:   prefix,
		Platform: platform,
		PythonStatus: domain.NewPythonStatus(
			pythonInfo(installed, platform),
			pythonInfo(wanted, platform),
		),
	}

	tx := domain.NewTransaction(installed, wanted)
	if tx.IsEmpty() {
		i.logger.Debug("prefix is up to date", "prefix", prefix, "packages", len(tx.Unchanged))
		result.Records = sortedRecords(tx.Unchanged)
		return result, nil
	}

	i.logger.Info("updating prefix",
		"prefix", prefix,
		"install", len(tx.Install),
		"remove", len(tx.Remove),
		"unchanged", len(tx.Unchanged))

	extracted, err := i.prepare(ctx, prefix, tx)
	if err != nil {
		return nil, err
	}
	if err := i.link(ctx, prefix, tx.Install, extracted); err != nil {
		return nil, err
	}

	result.Records = sortedRecords(append(slices.Clone(tx.Unchanged), tx.Install...))
	result.Changed = true
	return result, nil
}

// binaryRecords resolves source records through the builder.
func (i *Installer) binaryRecords(
	ctx context.Context,
	platform domain.Platform,
	required []domain.LockedRecord,
) ([]*domain.BinaryRecord, error) {
	out := make([]*domain.BinaryRecord, 0, len(required))
	for _, r := range required {
		switch rec := r.(type) {
		case *domain.BinaryRecord:
			out = append(out, rec)
		case *domain.SourceRecord:
			if i.builder == nil {
				return nil, zerr.With(zerr.Wrap(domain.ErrSourceRecordNotBuilt, rec.Source), "package", rec.Name)
			}
			built, err := i.buildSource(ctx, rec, platform)
			if err != nil {
				return nil, err
			}
			out = append(out, built)
		}
	}
	return out, nil
}

func (i *Installer) buildSource(
	ctx context.Context,
	rec *domain.SourceRecord,
	platform domain.Platform,
) (*domain.BinaryRecord, error) {
	ctx, span := i.tracer.Start(ctx, "build "+rec.Name, ports.WithStepKind(domain.StepBuild))
	defer span.End()

	built, err := i.builder.Build(ctx, rec, platform)
	if err != nil {
		span.RecordError(err)
		return nil, zerr.With(err, "package", rec.Name)
	}
	return built, nil
}

// prepare unlinks removed packages and fetches new ones concurrently.
// It returns the extracted directory of every record in tx.Install, by index.
func (i *Installer) prepare(ctx context.Context, prefix string, tx *domain.Transaction) ([]string, error) {
	g, gctx := errgroup.WithContext(ctx)

	for _, rec := range tx.Remove {
		g.Go(func() error {
			return i.io.Do(gctx, func(ctx context.Context) error {
				return i.unlink(ctx, prefix, rec)
			})
		})
	}

	extracted := make([]string, len(tx.Install))
	for idx, rec := range tx.Install {
		g.Go(func() error {
			return i.io.Do(gctx, func(ctx context.Context) error {
				dir, err := i.fetch(ctx, rec)
				extracted[idx] = dir
				return err
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return extracted, nil
}

func (i *Installer) unlink(ctx context.Context, prefix string, rec *domain.BinaryRecord) error {
	ctx, span := i.tracer.Start(ctx, "unlink "+rec.Name, ports.WithStepKind(domain.StepUnlink))
	defer span.End()

	if err := i.linker.Unlink(ctx, prefix, rec); err != nil {
		span.RecordError(err)
		return zerr.With(zerr.With(zerr.Wrap(err, domain.ErrUnlinkFailed.Error()), "package", rec.Name), "prefix", prefix)
	}
	return nil
}

func (i *Installer) fetch(ctx context.Context, rec *domain.BinaryRecord) (string, error) {
	ctx, span := i.tracer.Start(ctx, "download "+rec.DistName(), ports.WithStepKind(domain.StepDownload))
	defer span.End()

	dir, err := i.fetcher.Fetch(ctx, rec)
	if err != nil {
		span.RecordError(err)
		return "", zerr.With(err, "package", rec.Name)
	}
	return dir, nil
}

func (i *Installer) link(ctx context.Context, prefix string, records []*domain.BinaryRecord, extracted []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for idx, rec := range records {
		g.Go(func() error {
			return i.io.Do(gctx, func(ctx context.Context) error {
				ctx, span := i.tracer.Start(ctx, "link "+rec.Name, ports.WithStepKind(domain.StepLink))
				defer span.End()

				if err := i.linker.Link(ctx, prefix, extracted[idx], rec); err != nil {
					span.RecordError(err)
					return zerr.With(zerr.With(zerr.Wrap(err, domain.ErrLinkFailed.Error()), "package", rec.Name), "prefix", prefix)
				}
				return nil
			})
		})
	}
	return g.Wait()
}

func pythonInfo(records []*domain.BinaryRecord, platform domain.Platform) *domain.PythonInfo {
	for _, r := range records {
		if r.Name == domain.PythonRecordName {
			info := domain.NewPythonInfo(r.Version, platform)
			return &info
		}
	}
	return nil
}

func sortedRecords(records []*domain.BinaryRecord) []*domain.BinaryRecord {
	slices.SortFunc(records, func(a, b *domain.BinaryRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
	return records
}
