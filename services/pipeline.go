package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"annonces-abidjan/models"
	"annonces-abidjan/storage"
	"annonces-abidjan/utils"
)

// Source is anything that yields raw listings: a live site scraper or the
// generator.
type Source interface {
	Name() string
	Scrape(ctx context.Context) ([]*models.RawListing, error)
}

// ErrNoListings is returned by Run when every source came back empty.
var ErrNoListings = errors.New("pipeline: no listings scraped")

// Pipeline drives one scrape run: sources → raw CSV archive → cleaner →
// listing store.
type Pipeline struct {
	sources []Source
	archive storage.RawListingWriter
	cleaner *Cleaner
	store   storage.ListingStore
	logger  *utils.Logger
}

// NewPipeline wires a pipeline. archive may be nil to skip the CSV copy.
func NewPipeline(logger *utils.Logger, store storage.ListingStore, archive storage.RawListingWriter,
	cleaner *Cleaner, sources ...Source) *Pipeline {
	return &Pipeline{
		sources: sources,
		archive: archive,
		cleaner: cleaner,
		store:   store,
		logger:  logger,
	}
}

// Run executes one scrape run and returns how many new listings were
// stored. A failing source is logged and skipped; the run fails only when
// nothing was scraped or the store rejects the batch.
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	var raw []*models.RawListing
	var failed int

	for _, src := range p.sources {
		listings, err := src.Scrape(ctx)
		if err != nil {
			failed++
			p.logger.Error("[pipeline] Source %s failed: %v", src.Name(), err)
		}
		p.logger.Info("[pipeline] Source %s returned %d raw listings", src.Name(), len(listings))
		raw = append(raw, listings...)
	}

	if len(raw) == 0 {
		if failed > 0 {
			return 0, fmt.Errorf("%w (%d source(s) failed)", ErrNoListings, failed)
		}
		return 0, ErrNoListings
	}

	if p.archive != nil {
		if err := p.archive.WriteRaw(raw); err != nil {
			p.logger.Error("[pipeline] CSV write failed: %v", err)
		}
	}

	cleaned := p.cleaner.Clean(raw)
	if len(cleaned) == 0 {
		p.logger.Warn("[pipeline] All %d listings were dropped during cleaning", len(raw))
		return 0, nil
	}

	inserted, err := p.store.Save(ctx, cleaned)
	if err != nil {
		return 0, fmt.Errorf("pipeline: save: %w", err)
	}
	p.logger.Info("[pipeline] Stored %d new listings (%d already known)", inserted, len(cleaned)-inserted)
	return inserted, nil
}

// Schedule runs the pipeline until ctx is cancelled: immediately when
// runOnStart is set, then again after interval, or after backoff when the
// previous run failed.
func (p *Pipeline) Schedule(ctx context.Context, interval, backoff time.Duration, runOnStart bool) {
	wait := interval
	if runOnStart {
		wait = 0
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("[pipeline] Scheduler stopped")
			return
		case <-time.After(wait):
		}

		if _, err := p.Run(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Error("[pipeline] Run failed, retrying in %v: %v", backoff, err)
			wait = backoff
			continue
		}
		p.logger.Info("[pipeline] Next run in %v", interval)
		wait = interval
	}
}
