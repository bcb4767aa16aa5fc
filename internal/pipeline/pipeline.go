// Package pipeline runs one full, stateless table build: fetch the license
// document, build the license table, fetch the exception document, build the
// exception table, and attach the curated alias table.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/StinkyLord/spdx-update/internal/builder"
	"github.com/StinkyLord/spdx-update/internal/document"
	"github.com/StinkyLord/spdx-update/internal/model"
)

// Source provides the two registry documents for a ref.
type Source interface {
	Licenses(ctx context.Context, ref string) (document.Object, error)
	Exceptions(ctx context.Context, ref string) (document.Object, error)
}

// Pipeline builds an artifact from a Source and a curated alias table.
type Pipeline struct {
	Source  Source
	Builder *builder.Builder
	Aliases model.AliasTable
	Logger  *zap.Logger
}

// New creates a Pipeline. A nil logger discards output.
func New(src Source, aliases model.AliasTable, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		Source:  src,
		Builder: builder.New(logger),
		Aliases: aliases,
		Logger:  logger,
	}
}

// Run builds the artifact for ref. Steps run strictly in order and the first
// failure aborts the run; no partial artifact is returned.
func (p *Pipeline) Run(ctx context.Context, ref string) (*model.Artifact, error) {
	licDoc, err := p.Source.Licenses(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("license list: %w", err)
	}
	licenses, err := p.Builder.Licenses(licDoc)
	if err != nil {
		return nil, fmt.Errorf("license list: %w", err)
	}
	p.Logger.Info("license table built",
		zap.String("version", licenses.Version),
		zap.Int("records", len(licenses.Records)))

	excDoc, err := p.Source.Exceptions(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("exception list: %w", err)
	}
	exceptions, err := p.Builder.Exceptions(excDoc)
	if err != nil {
		return nil, fmt.Errorf("exception list: %w", err)
	}
	p.Logger.Info("exception table built", zap.Int("records", len(exceptions.Records)))

	a := &model.Artifact{
		Ref:        ref,
		Licenses:   licenses,
		Aliases:    p.Aliases,
		Exceptions: exceptions,
	}
	p.checkAliases(a)
	return a, nil
}

// checkAliases warns about canonical values naming identifiers absent from
// the freshly built tables. The alias table is curated separately, so this
// never fails the run.
func (p *Pipeline) checkAliases(a *model.Artifact) {
	for _, e := range a.Aliases.Entries {
		for _, id := range e.Identifiers() {
			if _, ok := a.Licenses.Lookup(id); ok {
				continue
			}
			if _, ok := a.Exceptions.Lookup(id); ok {
				continue
			}
			p.Logger.Warn("alias points at an unknown identifier",
				zap.String("alias", e.Invalid),
				zap.String("canonical", e.Canonical),
				zap.String("identifier", id))
		}
	}
}
