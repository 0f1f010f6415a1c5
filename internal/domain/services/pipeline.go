package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
)

// Pipeline produces one ContentUnit per run: select a novel subject, then
// gather facts and media concurrently and compose a description.
type Pipeline struct {
	history     ports.HistoryStore
	reference   ports.ReferenceSource
	selector    *CandidateSelector
	facts       *FactGenerator
	media       *MediaResolver
	description *DescriptionComposer
	now         func() time.Time
	logger      *zap.Logger
}

// PipelineDeps bundles the collaborators of a Pipeline. Reference is optional.
type PipelineDeps struct {
	History     ports.HistoryStore
	Reference   ports.ReferenceSource
	Selector    *CandidateSelector
	Facts       *FactGenerator
	Media       *MediaResolver
	Description *DescriptionComposer
	Now         func() time.Time
	Logger      *zap.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		history:     deps.History,
		reference:   deps.Reference,
		selector:    deps.Selector,
		facts:       deps.Facts,
		media:       deps.Media,
		description: deps.Description,
		now:         deps.Now,
		logger:      deps.Logger,
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.Named("pipeline")
	return p
}

func (p *Pipeline) check() error {
	switch {
	case p.history == nil:
		return fmt.Errorf("pipeline: history store is nil: %w", entities.ErrConfiguration)
	case p.selector == nil:
		return fmt.Errorf("pipeline: selector is nil: %w", entities.ErrConfiguration)
	case p.facts == nil:
		return fmt.Errorf("pipeline: fact generator is nil: %w", entities.ErrConfiguration)
	case p.media == nil:
		return fmt.Errorf("pipeline: media resolver is nil: %w", entities.ErrConfiguration)
	case p.description == nil:
		return fmt.Errorf("pipeline: description composer is nil: %w", entities.ErrConfiguration)
	}
	return nil
}

// Run produces a ContentUnit. Known names are re-read from the store on
// every run. Every collaborator failure degrades to a fallback; only
// configuration errors and cancellation are returned.
func (p *Pipeline) Run(ctx context.Context) (*entities.ContentUnit, error) {
	if err := p.check(); err != nil {
		return nil, err
	}

	existing := p.knownNames(ctx)

	sel, err := p.selector.Select(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("selecting candidate: %w", err)
	}
	subject := sel.Subject

	var (
		factSet entities.FactSet
		media   MediaResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var ferr error
		factSet, ferr = p.facts.Generate(gctx, subject, p.contextText(gctx, subject))
		return ferr
	})
	g.Go(func() error {
		media = p.media.Resolve(gctx, subject)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("gathering content for %s: %w", subject.Name, err)
	}

	desc := p.description.Compose(ctx, subject, factSet.Facts)

	unit := &entities.ContentUnit{
		Subject:             subject,
		Description:         desc.Text,
		Facts:               factSet.Facts,
		GeneratedByFallback: sel.Tier == entities.TierExhausted || factSet.IsFallback() || desc.Fallback,
		CandidateTier:       sel.Tier,
		Repeated:            sel.Repeated,
		SuggestionID:        sel.SuggestionID,
		MediaSource:         media.Source,
		FactSource:          factSet.Source,
		CreatedAt:           p.now(),
	}
	if media.Found() {
		u := media.URL
		unit.ImageURL = &u
	}

	p.logger.Info("content unit assembled",
		zap.String("subject", subject.Name),
		zap.String("tier", string(sel.Tier)),
		zap.String("media", string(media.Source)),
		zap.String("facts", string(factSet.Source)),
		zap.Bool("fallback", unit.GeneratedByFallback))
	return unit, nil
}

func (p *Pipeline) knownNames(ctx context.Context) *entities.NameSet {
	names, err := p.history.KnownNames(ctx)
	if err != nil {
		p.logger.Warn("reading known names failed, continuing with an empty set", zap.Error(err))
		return entities.NewNameSet()
	}
	return entities.NewNameSet(names...)
}

// contextText returns the reference extract used to ground fact generation.
func (p *Pipeline) contextText(ctx context.Context, subject entities.Subject) string {
	if p.reference == nil {
		return ""
	}
	page, err := p.reference.Lookup(ctx, subject.Name)
	if err != nil {
		p.logger.Debug("reference lookup failed", zap.String("subject", subject.Name), zap.Error(err))
		return ""
	}
	if page == nil || page.Disambiguation {
		return ""
	}
	return page.Extract
}
