package classifier

import (
	"context"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
)

// CatalogLoader loads the authoritative catalog from the store.
type CatalogLoader interface {
	LoadAll(ctx context.Context) ([]models.MediaSource, error)
}

// Hydrator fills the classifier from the best available catalog source:
// the store first, then the YAML seed file, then the compiled-in seed.
// A source whose result is smaller than minEntries falls through to the
// next one, so a half-migrated database cannot hollow out the classifier.
type Hydrator struct {
	loader     CatalogLoader
	seedFile   string
	minEntries int
	log        logger.Logger
}

// NewHydrator creates a hydrator. The loader may be nil when the store is
// not configured; seedFile may be empty.
func NewHydrator(loader CatalogLoader, seedFile string, minEntries int, log logger.Logger) *Hydrator {
	return &Hydrator{
		loader:     loader,
		seedFile:   seedFile,
		minEntries: minEntries,
		log:        log,
	}
}

// Load returns the catalog snapshot and the name of the source that
// provided it.
func (h *Hydrator) Load(ctx context.Context) ([]models.MediaSource, string) {
	if h.loader != nil {
		sources, err := h.loader.LoadAll(ctx)
		switch {
		case err != nil:
			h.log.Warn("catalog store unavailable, falling back to seed", logger.Error(err))
		case len(sources) < h.minEntries:
			h.log.Warn("catalog store below minimum size, falling back to seed",
				logger.Int("entries", len(sources)),
				logger.Int("min_entries", h.minEntries),
			)
		default:
			return sources, "store"
		}
	}

	if h.seedFile != "" {
		sources, err := LoadSeedFile(h.seedFile)
		switch {
		case err != nil:
			h.log.Warn("seed file unavailable, falling back to builtin seed", logger.Error(err))
		case len(sources) < h.minEntries:
			h.log.Warn("seed file below minimum size, falling back to builtin seed",
				logger.Int("entries", len(sources)),
				logger.Int("min_entries", h.minEntries),
			)
		default:
			return sources, "seed_file"
		}
	}

	return BuiltinSeed(), "builtin"
}

// Hydrate loads the best snapshot into the classifier and reports which
// source won.
func (h *Hydrator) Hydrate(ctx context.Context, c *Classifier) string {
	sources, origin := h.Load(ctx)
	c.Replace(sources)
	h.log.Info("classifier hydrated",
		logger.String("origin", origin),
		logger.Int("entries", len(sources)),
	)
	return origin
}
