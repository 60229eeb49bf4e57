// Package classifier assigns authority tiers to domains by matching them
// against the source catalog.
package classifier

import (
	"sort"
	"sync"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/urlutil"
)

// Classifier matches normalized domains against an in-memory catalog
// snapshot. The snapshot is replaced wholesale on rehydration; reads take
// the read lock only.
type Classifier struct {
	mu       sync.RWMutex
	sources  []models.MediaSource
	byDomain map[string]int
	log      logger.Logger
}

// New creates a classifier over an initial catalog snapshot.
func New(sources []models.MediaSource, log logger.Logger) *Classifier {
	c := &Classifier{log: log}
	c.Replace(sources)
	return c
}

// Replace swaps in a new catalog snapshot. Sources are indexed by exact
// domain and kept sorted by domain length so subdomain scans prefer the
// shortest (most canonical) parent.
func (c *Classifier) Replace(sources []models.MediaSource) {
	snapshot := make([]models.MediaSource, len(sources))
	copy(snapshot, sources)
	sort.SliceStable(snapshot, func(i, j int) bool {
		if len(snapshot[i].Domain) != len(snapshot[j].Domain) {
			return len(snapshot[i].Domain) < len(snapshot[j].Domain)
		}
		return snapshot[i].Domain < snapshot[j].Domain
	})

	byDomain := make(map[string]int, len(snapshot))
	for i, source := range snapshot {
		if _, exists := byDomain[source.Domain]; !exists {
			byDomain[source.Domain] = i
		}
	}

	c.mu.Lock()
	c.sources = snapshot
	c.byDomain = byDomain
	c.mu.Unlock()
}

// Match classifies a raw domain or URL. Exact catalog matches win; failing
// that, the domain matches the shortest catalog entry it is a subdomain
// of, so edition.cnn.com inherits cnn.com's tier. Unmatched domains get
// TierUnknown and a nil source.
func (c *Classifier) Match(rawDomain string) (*models.MediaSource, models.Tier) {
	domain, err := urlutil.Normalize(rawDomain)
	if err != nil {
		return nil, models.TierUnknown
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if i, ok := c.byDomain[domain]; ok {
		source := c.sources[i]
		return &source, source.Tier
	}
	for i := range c.sources {
		if urlutil.IsSubdomainOf(domain, c.sources[i].Domain) {
			source := c.sources[i]
			return &source, source.Tier
		}
	}
	return nil, models.TierUnknown
}

// Size returns the number of catalog entries in the current snapshot.
func (c *Classifier) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sources)
}

// Overrides extracts a domain->country map from catalog entries with a
// resolved country, feeding the geo override strategy.
func (c *Classifier) Overrides() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	overrides := make(map[string]string)
	for i := range c.sources {
		if code := c.sources[i].CountryCode; code != "" && code != "UNK" {
			overrides[c.sources[i].Domain] = code
		}
	}
	return overrides
}
